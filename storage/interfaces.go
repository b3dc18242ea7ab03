package storage

import (
	"context"

	"github.com/quaerolabs/quaero/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ContributionRepository provides operations for managing moderated
// user contributions.
type ContributionRepository interface {
	Repository
	// Create adds a contribution to storage in the pending state.
	// Generates an ID from sequence when Id is zero, derives Keywords and
	// ContentHash from the question, and sets SubmittedAt/UpdatedAt.
	// Returns the contribution with generated fields populated.
	Create(ctx context.Context, contribution *core.Contribution) (*core.Contribution, error)

	// Get retrieves a single contribution by ID.
	// Returns ErrNotFound if the contribution doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Contribution, error)

	// ListByApproval retrieves all contributions in the given approval state,
	// ordered by rating descending, then usage count descending.
	ListByApproval(ctx context.Context, state core.ApprovalState) ([]*core.Contribution, error)

	// UpdateApproval transitions a contribution to a new approval state.
	// Only pending contributions may transition; approved and rejected are
	// terminal. Returns core.ErrInvalidTransition for illegal transitions
	// and ErrNotFound if the contribution doesn't exist.
	UpdateApproval(ctx context.Context, id core.ID, state core.ApprovalState) (*core.Contribution, error)

	// ApproveAllPending transitions every pending contribution to approved.
	// Returns the number of contributions approved.
	ApproveAllPending(ctx context.Context) (int, error)

	// IncrementUsage atomically increments a contribution's usage count by one.
	// Returns ErrNotFound if the contribution doesn't exist.
	IncrementUsage(ctx context.Context, id core.ID) error

	// TopContributions retrieves the highest-ranked approved contributions,
	// ordered by rating descending, then usage count descending, up to limit.
	TopContributions(ctx context.Context, limit int) ([]*core.Contribution, error)

	// FindByContentHash retrieves contributions whose content hash matches.
	// Duplicates are advisory; multiple matches are possible.
	// Returns an empty slice when nothing matches.
	FindByContentHash(ctx context.Context, hash string) ([]*core.Contribution, error)
}

// FullTextSearcher is an optional capability some repositories provide.
// Callers discover it by type assertion on a ContributionRepository.
type FullTextSearcher interface {
	// SearchText retrieves approved contributions whose question or answer
	// contains the query text, up to limit results.
	SearchText(ctx context.Context, query string, limit int) ([]*core.Contribution, error)
}
