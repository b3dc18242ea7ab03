package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash generates a hex-encoded BLAKE2b digest of the normalized text.
// Used as an advisory duplicate marker on contributions; it is computed on
// save but not enforced as a uniqueness constraint.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(NormalizeText(text)))
	return hex.EncodeToString(h.Sum(nil))
}

// ApprovalState tracks the moderation status of a contribution.
// New contributions start pending; approval and rejection are terminal.
type ApprovalState int

const (
	// ApprovalPending means the contribution awaits moderation.
	ApprovalPending ApprovalState = iota + 1
	// ApprovalApproved means a moderator accepted the contribution.
	ApprovalApproved
	// ApprovalRejected means a moderator rejected the contribution.
	ApprovalRejected
)

// String returns the lowercase name of the approval state.
func (s ApprovalState) String() string {
	switch s {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Contribution is a moderated user-submitted question/answer record usable
// as retrieval evidence. Only approved contributions appear in search results.
type Contribution struct {
	Id               ID
	Question         string
	OriginalQuestion string // The original training question, if this refines one
	Answer           string
	QuestionType     string
	UserId           string
	UserEmail        string
	ImprovementType  string   // enhancement, correction, clarification
	Rating           float64  // 0.0 to 5.0
	UsageCount       int64    // Times this record backed a retrieval result
	Keywords         []string // Stop-word-filtered keywords from the question (populated on create)
	ContentHash      string   // Advisory duplicate marker, computed from the normalized question
	Approval         ApprovalState
	SubmittedAt      time.Time
	UpdatedAt        time.Time
}

// Chunk is a bounded substring of a source document, the unit of vector
// indexing. Its ordinal in the metadata sequence is aligned one-to-one with
// the row of the same ordinal in the vector index.
type Chunk struct {
	SourceDocument string
	ChunkIndex     int64
	Text           string
	CharCount      int64
}

// DocumentHit is a document chunk matched by vector search.
type DocumentHit struct {
	Chunk      Chunk
	Similarity float64
}

// ContributionHit is a contribution matched by lexical search.
type ContributionHit struct {
	Contribution *Contribution
	Similarity   float64
}

// RenderMode selects how the composed context labels its evidence.
type RenderMode int

const (
	// ModeStandard renders contributions and documents with neutral labels.
	ModeStandard RenderMode = iota + 1
	// ModeEmphasized labels contributions as primary evidence, hinting the
	// downstream consumer to weight them more heavily.
	ModeEmphasized
)

// String returns the lowercase name of the render mode.
func (m RenderMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeEmphasized:
		return "emphasized"
	default:
		return "unknown"
	}
}

// SourceRef describes one evidence source backing a retrieval result.
type SourceRef struct {
	Filename       string
	SourceType     string // "original_document" or "user_contribution"
	Similarity     float64
	ContributionId ID      // Zero for document sources
	Rating         float64 // Zero for document sources
	UsageCount     int64   // Zero for document sources
	TextPreview    string
}

// QualityScore holds the per-source quality assessment for one request.
// Scores are heuristic, request-scoped, and never persisted.
type QualityScore struct {
	VectorQuality       float64
	ContributionQuality float64
}

// ComposedContext is the rendered context handed to the answer-generation
// collaborator, plus the structured source records behind it.
type ComposedContext struct {
	Text    string
	Mode    RenderMode
	Sources []SourceRef
}

// RetrievalMetadata summarizes a retrieval for the caller.
type RetrievalMetadata struct {
	DocumentCount       int
	ContributionCount   int
	TotalSources        int
	VectorQuality       float64
	ContributionQuality float64
	Mode                RenderMode
	Message             string // Explanatory note about result coverage
}

// RetrievalResult is the complete outcome of one retrieve call.
// Empty result sets are a success, not an error; Metadata.Message explains them.
type RetrievalResult struct {
	VectorResults       []DocumentHit
	ContributionResults []ContributionHit
	CombinedContext     string
	Context             ComposedContext
	Metadata            RetrievalMetadata
}
