package vectorindex

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/mus-format/mus-go/varint"
	"github.com/quaerolabs/quaero/core"
)

// On-disk layout (MUS varint encoding throughout):
//
//	index file:    count, dim, then count*dim float32 values as IEEE-754 bits
//	metadata file: count, then count ChunkMUS records
//
// Both files are written to a temp file in the destination directory and
// renamed into place, so readers never observe a partial write.

// Save persists the index to path.
func (ix *Index) Save(path string) error {
	size := varint.Int.Size(len(ix.vectors)) + varint.Int.Size(ix.dim)
	for _, vector := range ix.vectors {
		for _, v := range vector {
			size += varint.Uint32.Size(math.Float32bits(v))
		}
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(len(ix.vectors), bs)
	n += varint.Int.Marshal(ix.dim, bs[n:])
	for _, vector := range ix.vectors {
		for _, v := range vector {
			n += varint.Uint32.Marshal(math.Float32bits(v), bs[n:])
		}
	}

	return writeAtomic(path, bs)
}

// Load reads a persisted index from path.
// Returns ErrIndexNotFound if no file exists there.
func Load(path string) (*Index, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, err
	}

	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	dim, n1, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	n += n1
	if count < 0 || dim < 0 {
		return nil, fmt.Errorf("%w: negative count or dimension", ErrCorruptIndex)
	}

	ix := New(dim)
	ix.vectors = make([][]float32, count)
	for i := 0; i < count; i++ {
		vector := make([]float32, dim)
		for j := 0; j < dim; j++ {
			bits, n1, err := varint.Uint32.Unmarshal(bs[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
			}
			n += n1
			vector[j] = math.Float32frombits(bits)
		}
		ix.vectors[i] = vector
	}

	return ix, nil
}

// SaveMetadata persists the chunk metadata sequence to path, in index order.
func SaveMetadata(path string, chunks []core.Chunk) error {
	size := varint.Int.Size(len(chunks))
	for _, chunk := range chunks {
		size += core.ChunkMUS.Size(chunk)
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(len(chunks), bs)
	for _, chunk := range chunks {
		n += core.ChunkMUS.Marshal(chunk, bs[n:])
	}

	return writeAtomic(path, bs)
}

// LoadMetadata reads the chunk metadata sequence from path.
// Returns ErrIndexNotFound if no file exists there.
func LoadMetadata(path string) ([]core.Chunk, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, err
	}

	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count", ErrCorruptIndex)
	}

	chunks := make([]core.Chunk, count)
	for i := 0; i < count; i++ {
		chunk, n1, err := core.ChunkMUS.Unmarshal(bs[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		n += n1
		chunks[i] = chunk
	}

	return chunks, nil
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
