package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/quaerolabs/quaero/core"
)

// Key prefixes for different data types
const (
	contributionPrefix         = "contrec"
	contributionApprovalPrefix = "contreca"
	contributionHashPrefix     = "contrech"
	contributionIDSeq          = "contrecseq"
)

// makeContributionKey generates a key for a contribution by ID.
func makeContributionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", contributionPrefix, id))
}

// makeApprovalKey generates a composite key for the approval-state index.
// Format: prefix:state:id
func makeApprovalKey(state core.ApprovalState, id core.ID) []byte {
	prefix := contributionApprovalPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 9 // 1 byte for state + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	buf[offset] = byte(state)
	offset++
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialApprovalKey generates a partial key for approval-state scans.
// Format: prefix:state
func makePartialApprovalKey(state core.ApprovalState) []byte {
	prefix := contributionApprovalPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+1)
	offset := copy(buf, prefixBytes)
	buf[offset] = byte(state)
	return buf
}

// makeContentHashKey generates a composite key for the content-hash index.
// Multiple contributions may share a hash, so the ID disambiguates.
// Format: prefix:hash:id
func makeContentHashKey(hash string, id core.ID) []byte {
	prefix := contributionHashPrefix + ":" + hash + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialContentHashKey generates a partial key for hash lookups.
// Format: prefix:hash:
func makePartialContentHashKey(hash string) []byte {
	return []byte(contributionHashPrefix + ":" + hash + ":")
}
