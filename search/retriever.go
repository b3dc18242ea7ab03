package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quaerolabs/quaero/ai"
	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/storage"
	"github.com/quaerolabs/quaero/vectorindex"
)

const (
	defaultTopK              = 5
	defaultContributionLimit = 5
	defaultTimeout           = 30 * time.Second
)

// Retriever answers questions by running vector search over the document
// index and lexical search over the contribution store, then blending both
// result sets into one composed context.
type Retriever struct {
	index         *vectorindex.Index
	metadata      []core.Chunk
	embedder      ai.Embedder
	contributions *ContributionSearcher
	logger        *slog.Logger
	timeout       time.Duration
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithTimeout bounds the embedding call and the lexical scan for one
// request. Default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Retriever) error {
		if timeout > 0 {
			r.timeout = timeout
		}
		return nil
	}
}

// NewRetriever creates a retriever over a loaded index, its aligned chunk
// metadata, an embedding provider, and the contribution repository.
func NewRetriever(
	index *vectorindex.Index,
	metadata []core.Chunk,
	provider ai.Provider,
	repository storage.ContributionRepository,
	opts ...Option,
) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if repository == nil {
		return nil, ErrContributionRepositoryRequired
	}

	contributions, err := NewContributionSearcher(repository, nil)
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		index:         index,
		metadata:      metadata,
		embedder:      provider.Embedder(),
		contributions: contributions,
		logger:        slog.Default(),
		timeout:       defaultTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.contributions.logger = r.logger

	return r, nil
}

// Retrieve answers a question with the combined evidence of both sources.
// Finding nothing above threshold is a success with empty result sets and
// an explanatory message, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int, similarityThreshold float64, contributionLimit int) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, question, k, similarityThreshold, contributionLimit, nil)
}

// RetrieveWithMonitor is Retrieve with observation hooks at each stage.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, question string, k int, similarityThreshold float64, contributionLimit int, monitor RetrievalMonitor) (*core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if core.NormalizeText(question) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = defaultTopK
	}
	if contributionLimit <= 0 {
		contributionLimit = defaultContributionLimit
	}

	monitor.Start(question)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Both arms are independent read paths over disjoint stores, so they
	// run concurrently and join before quality assessment.
	var (
		wg               sync.WaitGroup
		documents        []core.DocumentHit
		vectorErr        error
		contributionHits []core.ContributionHit
		contributionErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		documents, vectorErr = r.searchDocuments(ctx, question, k, similarityThreshold)
	}()
	go func() {
		defer wg.Done()
		contributionHits, contributionErr = r.contributions.Search(ctx, question, contributionLimit)
	}()
	wg.Wait()

	if vectorErr != nil {
		r.logger.Error("vector search failed", "question", question, "err", vectorErr)
		return nil, vectorErr
	}
	if contributionErr != nil {
		// A broken contribution store degrades the answer but does not
		// fail the request.
		r.logger.Error("contribution search failed", "question", question, "err", contributionErr)
		contributionHits = nil
	}

	monitor.AfterVectorSearch(documents)
	monitor.AfterContributionSearch(contributionHits)

	quality := AssessQuality(documents, contributionHits)
	monitor.AfterQualityAssessment(quality)

	mode := ChooseMode(quality, len(contributionHits))
	composed := Compose(documents, contributionHits, mode)

	result := &core.RetrievalResult{
		VectorResults:       documents,
		ContributionResults: contributionHits,
		CombinedContext:     composed.Text,
		Context:             composed,
		Metadata: core.RetrievalMetadata{
			DocumentCount:       len(documents),
			ContributionCount:   len(contributionHits),
			TotalSources:        len(documents) + len(contributionHits),
			VectorQuality:       quality.VectorQuality,
			ContributionQuality: quality.ContributionQuality,
			Mode:                mode,
			Message:             coverageMessage(len(documents), len(contributionHits)),
		},
	}

	r.logger.Info("retrieval completed",
		"documents", len(documents),
		"contributions", len(contributionHits),
		"mode", mode.String(),
		"vectorQuality", quality.VectorQuality,
		"contributionQuality", quality.ContributionQuality)
	monitor.Finish(result)

	return result, nil
}

// searchDocuments embeds the question, normalizes the query vector, and
// collects index hits at or above the similarity threshold.
func (r *Retriever) searchDocuments(ctx context.Context, question string, k int, threshold float64) ([]core.DocumentHit, error) {
	embedding, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}
	vectorindex.NormalizeVector(embedding)

	scores, ids, err := r.index.Search(embedding, k)
	if err != nil {
		return nil, err
	}

	hits := make([]core.DocumentHit, 0, len(ids))
	for i, id := range ids {
		// A hit outside the metadata range means the index and metadata
		// files are out of sync; never dereference it.
		if id >= len(r.metadata) {
			r.logger.Warn("discarding index hit beyond metadata range", "id", id, "metadataLen", len(r.metadata))
			continue
		}
		similarity := float64(scores[i])
		if similarity < threshold {
			continue
		}
		hits = append(hits, core.DocumentHit{
			Chunk:      r.metadata[id],
			Similarity: similarity,
		})
	}
	return hits, nil
}

// coverageMessage explains what the search found, mirroring the guidance
// shown to end users.
func coverageMessage(documentCount, contributionCount int) string {
	switch {
	case documentCount == 0 && contributionCount == 0:
		return "No relevant information found. Consider rephrasing your question or adding more specific keywords."
	case documentCount > 0 && contributionCount > 0:
		return "Found both original documentation and user contributions for comprehensive answers."
	case documentCount > 0:
		return "Found relevant information in the original documentation."
	default:
		return "Found user contributions that may help answer your question."
	}
}
