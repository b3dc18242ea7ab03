package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/storage"
)

const (
	// queryKeywordLimit caps how many keywords are extracted from a query
	// for the keyword-overlap strategy.
	queryKeywordLimit = 15

	// acceptThreshold is the minimum score a candidate needs from the
	// similarity or keyword strategies.
	acceptThreshold = 0.05

	// fullTextScore is the fixed score assigned to results found only by
	// the store's full-text fallback.
	fullTextScore = 0.5

	// usageIncrementTop is how many of the returned results get their
	// usage count bumped as a retrieval side effect.
	usageIncrementTop = 3
)

// ContributionSearcher finds approved contributions lexically similar to a
// query. Pending and rejected contributions are never returned.
type ContributionSearcher struct {
	repository storage.ContributionRepository
	logger     *slog.Logger
}

// NewContributionSearcher creates a searcher over the given repository.
func NewContributionSearcher(repository storage.ContributionRepository, logger *slog.Logger) (*ContributionSearcher, error) {
	if repository == nil {
		return nil, ErrContributionRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContributionSearcher{
		repository: repository,
		logger:     logger,
	}, nil
}

// Search collects up to limit approved contributions through three ordered
// strategies: direct text similarity, keyword overlap over not-yet-seen
// candidates, and the store's full-text capability when it offers one.
// Results are deduplicated by id, sorted by (similarity, rating, usage)
// descending, and the top results get a best-effort usage-count increment.
func (s *ContributionSearcher) Search(ctx context.Context, query string, limit int) ([]core.ContributionHit, error) {
	normalizedQuery := core.NormalizeText(query)
	if normalizedQuery == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		return []core.ContributionHit{}, nil
	}

	approved, err := s.repository.ListByApproval(ctx, core.ApprovalApproved)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scanning approved contributions", "count", len(approved), "query", query)

	results := make([]core.ContributionHit, 0, limit)
	seen := make(map[core.ID]bool)

	// Strategy 1: direct similarity against question and answer text.
	for _, contribution := range approved {
		if len(results) >= limit {
			break
		}
		questionSim := TextSimilarity(query, contribution.Question)
		answerSim := TextSimilarity(query, contribution.Answer)
		similarity := max(questionSim, answerSim)
		if similarity > acceptThreshold {
			results = append(results, core.ContributionHit{
				Contribution: contribution,
				Similarity:   similarity,
			})
			seen[contribution.Id] = true
		}
	}

	// Strategy 2: keyword overlap over candidates the first pass skipped.
	if len(results) < limit {
		keywords := core.ExtractKeywords(query, queryKeywordLimit)
		if len(keywords) > 0 {
			for _, contribution := range approved {
				if len(results) >= limit {
					break
				}
				if seen[contribution.Id] {
					continue
				}
				text := core.NormalizeText(contribution.Question + " " + contribution.Answer)
				matches := 0
				for _, keyword := range keywords {
					if strings.Contains(text, keyword) {
						matches++
					}
				}
				ratio := float64(matches) / float64(len(keywords))
				if ratio > acceptThreshold {
					results = append(results, core.ContributionHit{
						Contribution: contribution,
						Similarity:   ratio,
					})
					seen[contribution.Id] = true
				}
			}
		}
	}

	// Strategy 3: full-text fallback when the store supports it.
	if len(results) < limit {
		if searcher, ok := s.repository.(storage.FullTextSearcher); ok {
			found, err := searcher.SearchText(ctx, query, limit-len(results))
			if err != nil {
				s.logger.Warn("full-text search unavailable", "err", err)
			} else {
				for _, contribution := range found {
					if seen[contribution.Id] {
						continue
					}
					results = append(results, core.ContributionHit{
						Contribution: contribution,
						Similarity:   fullTextScore,
					})
					seen[contribution.Id] = true
				}
			}
		}
	}

	slices.SortStableFunc(results, func(a, b core.ContributionHit) int {
		if a.Similarity != b.Similarity {
			if a.Similarity > b.Similarity {
				return -1
			}
			return 1
		}
		if a.Contribution.Rating != b.Contribution.Rating {
			if a.Contribution.Rating > b.Contribution.Rating {
				return -1
			}
			return 1
		}
		if a.Contribution.UsageCount != b.Contribution.UsageCount {
			if a.Contribution.UsageCount > b.Contribution.UsageCount {
				return -1
			}
			return 1
		}
		return 0
	})
	if len(results) > limit {
		results = results[:limit]
	}

	// Best-effort usage bump for the top results. A failed increment never
	// fails the search.
	for i := 0; i < len(results) && i < usageIncrementTop; i++ {
		id := results[i].Contribution.Id
		if err := s.repository.IncrementUsage(ctx, id); err != nil {
			s.logger.Warn("failed to increment usage", "id", id, "err", err)
		}
	}

	return results, nil
}
