package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/storage"
)

// storedKeywordLimit caps how many keywords are derived from a question
// at create time.
const storedKeywordLimit = 10

// ContributionRepository implements storage.ContributionRepository for BadgerDB.
type ContributionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ContributionRepository = (*ContributionRepository)(nil)
var _ storage.FullTextSearcher = (*ContributionRepository)(nil)

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(backend *Backend) (*ContributionRepository, error) {
	idSeq, err := backend.GetSequence(contributionIDSeq)
	if err != nil {
		return nil, err
	}

	return &ContributionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ContributionRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ContributionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Create adds a contribution to storage in the pending state.
func (r *ContributionRepository) Create(ctx context.Context, contribution *core.Contribution) (*core.Contribution, error) {
	if err := core.ValidateContribution(contribution); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if contribution.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			contribution.Id = core.ID(nextID)
		}

		contribution.Approval = core.ApprovalPending
		contribution.Keywords = core.ExtractKeywords(contribution.Question, storedKeywordLimit)
		contribution.ContentHash = core.ContentHash(contribution.Question)
		contribution.SubmittedAt = time.Now().UTC()
		contribution.UpdatedAt = contribution.SubmittedAt

		// Store primary record
		key := makeContributionKey(contribution.Id)
		value := storage.MarshalContribution(contribution)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update approval-state index
		approvalKey := makeApprovalKey(contribution.Approval, contribution.Id)
		if err := tx.Set(approvalKey, storage.MarshalID(contribution.Id)); err != nil {
			return err
		}

		// Update content-hash index
		hashKey := makeContentHashKey(contribution.ContentHash, contribution.Id)
		if err := tx.Set(hashKey, storage.MarshalID(contribution.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return contribution, err
}

// Get retrieves a single contribution by ID.
func (r *ContributionRepository) Get(ctx context.Context, id core.ID) (*core.Contribution, error) {
	var result *core.Contribution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContributionKey(id)
		var err error
		result, err = r.readContribution(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListByApproval retrieves all contributions in the given approval state,
// ordered by rating descending, then usage count descending.
func (r *ContributionRepository) ListByApproval(ctx context.Context, state core.ApprovalState) ([]*core.Contribution, error) {
	if err := core.ValidateApprovalState(state); err != nil {
		return nil, err
	}

	var results []*core.Contribution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = r.collectByApproval(tx, state)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	sortRanked(results)
	return results, nil
}

// UpdateApproval transitions a contribution to a new approval state.
// Pending contributions may become approved or rejected; approved and
// rejected are terminal.
func (r *ContributionRepository) UpdateApproval(ctx context.Context, id core.ID, state core.ApprovalState) (*core.Contribution, error) {
	var result *core.Contribution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.transition(tx, id, state)
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApproveAllPending transitions every pending contribution to approved.
func (r *ContributionRepository) ApproveAllPending(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		pending, err := r.collectByApproval(tx, core.ApprovalPending)
		if err != nil {
			return err
		}
		for _, contribution := range pending {
			if _, err := r.transition(tx, contribution.Id, core.ApprovalApproved); err != nil {
				return err
			}
			count++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementUsage atomically increments a contribution's usage count by one.
// The read and write share one transaction, so concurrent increments
// serialize through badger's conflict detection.
func (r *ContributionRepository) IncrementUsage(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContributionKey(id)
		contribution, err := r.readContribution(tx, key)
		if err != nil {
			return err
		}
		if contribution == nil {
			return storage.ErrNotFound
		}

		contribution.UsageCount++
		contribution.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalContribution(contribution)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// TopContributions retrieves the highest-ranked approved contributions.
func (r *ContributionRepository) TopContributions(ctx context.Context, limit int) ([]*core.Contribution, error) {
	results, err := r.ListByApproval(ctx, core.ApprovalApproved)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindByContentHash retrieves contributions whose content hash matches.
func (r *ContributionRepository) FindByContentHash(ctx context.Context, hash string) ([]*core.Contribution, error) {
	var results []*core.Contribution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialContentHashKey(hash)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			contribution, err := r.readContribution(tx, makeContributionKey(id))
			if err != nil {
				return err
			}
			if contribution != nil {
				results = append(results, contribution)
			}
		}
		return nil
	}, false)

	return results, err
}

// SearchText retrieves approved contributions whose question or answer
// contains the query text. Implements storage.FullTextSearcher.
func (r *ContributionRepository) SearchText(ctx context.Context, query string, limit int) ([]*core.Contribution, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Contribution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		approved, err := r.collectByApproval(tx, core.ApprovalApproved)
		if err != nil {
			return err
		}
		for _, contribution := range approved {
			if limit > 0 && len(results) >= limit {
				break
			}
			if strings.Contains(strings.ToLower(contribution.Question), needle) ||
				strings.Contains(strings.ToLower(contribution.Answer), needle) {
				results = append(results, contribution)
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// readContribution reads a contribution from the transaction.
// Returns nil without error when the key is absent.
func (r *ContributionRepository) readContribution(tx *badger.Txn, key []byte) (*core.Contribution, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var contribution *core.Contribution
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		contribution, unmarshalErr = storage.UnmarshalContribution(val)
		return unmarshalErr
	})
	return contribution, err
}

// collectByApproval scans the approval-state index and loads every
// contribution in the given state, in index order.
func (r *ContributionRepository) collectByApproval(tx *badger.Txn, state core.ApprovalState) ([]*core.Contribution, error) {
	var results []*core.Contribution

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialApprovalKey(state)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}

		contribution, err := r.readContribution(tx, makeContributionKey(id))
		if err != nil {
			return nil, err
		}
		if contribution != nil {
			results = append(results, contribution)
		}
	}
	return results, nil
}

// transition moves one contribution to a new approval state and keeps the
// approval index aligned. Does not commit.
func (r *ContributionRepository) transition(tx *badger.Txn, id core.ID, state core.ApprovalState) (*core.Contribution, error) {
	if err := core.ValidateApprovalState(state); err != nil {
		return nil, err
	}

	key := makeContributionKey(id)
	contribution, err := r.readContribution(tx, key)
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, storage.ErrNotFound
	}

	if err := core.ValidateTransition(contribution.Approval, state); err != nil {
		return nil, err
	}

	oldKey := makeApprovalKey(contribution.Approval, id)
	if err := tx.Delete(oldKey); err != nil {
		return nil, err
	}

	contribution.Approval = state
	contribution.UpdatedAt = time.Now().UTC()

	if err := tx.Set(key, storage.MarshalContribution(contribution)); err != nil {
		return nil, err
	}
	if err := tx.Set(makeApprovalKey(state, id), storage.MarshalID(id)); err != nil {
		return nil, err
	}
	return contribution, nil
}

// sortRanked orders contributions by rating descending, then usage count
// descending.
func sortRanked(contributions []*core.Contribution) {
	slices.SortStableFunc(contributions, func(a, b *core.Contribution) int {
		if a.Rating != b.Rating {
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		}
		if a.UsageCount != b.UsageCount {
			if a.UsageCount > b.UsageCount {
				return -1
			}
			return 1
		}
		return 0
	})
}
