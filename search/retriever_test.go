package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaerolabs/quaero/ai/mock"
	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/storage"
	"github.com/quaerolabs/quaero/storage/badger"
	"github.com/quaerolabs/quaero/vectorindex"
)

// testProvider returns a provider whose embedder always produces vec.
func testProvider(vec []float32) *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.Dim = len(vec)
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	}
	return mock.NewMockProviderWithEmbedder(embedder).(*mock.MockProvider)
}

func testIndex(t *testing.T, vectors [][]float32) *vectorindex.Index {
	t.Helper()
	index := vectorindex.New(len(vectors[0]))
	require.NoError(t, index.Add(vectors))
	return index
}

func testRepo(t *testing.T) storage.ContributionRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestNewRetriever(t *testing.T) {
	repo := testRepo(t)
	provider := testProvider([]float32{1, 0, 0, 0})
	index := testIndex(t, [][]float32{{1, 0, 0, 0}})
	metadata := []core.Chunk{{SourceDocument: "a.md", Text: "text"}}

	t.Run("valid configuration", func(t *testing.T) {
		retriever, err := NewRetriever(index, metadata, provider, repo)
		require.NoError(t, err)
		assert.NotNil(t, retriever)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewRetriever(nil, metadata, provider, repo)
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewRetriever(index, metadata, nil, repo)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewRetriever(index, metadata, provider, nil)
		assert.Equal(t, ErrContributionRepositoryRequired, err)
	})
}

func TestRetrieveEmptyQuery(t *testing.T) {
	retriever, err := NewRetriever(
		testIndex(t, [][]float32{{1, 0, 0, 0}}),
		[]core.Chunk{{SourceDocument: "a.md", Text: "text"}},
		testProvider([]float32{1, 0, 0, 0}),
		testRepo(t),
	)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "  ?!  ", 5, 0.5, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveDocumentsAndContributions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &core.Contribution{
		Question: "how to steam milk",
		Answer:   "Use the steam wand at an angle.",
		Rating:   4.5,
	})
	require.NoError(t, err)
	_, err = repo.UpdateApproval(ctx, created.Id, core.ApprovalApproved)
	require.NoError(t, err)

	index := testIndex(t, [][]float32{
		{1, 0, 0, 0},
		{0.6, 0.8, 0, 0},
	})
	metadata := []core.Chunk{
		{SourceDocument: "milk.md", ChunkIndex: 0, Text: "Milk steaming basics."},
		{SourceDocument: "espresso.md", ChunkIndex: 0, Text: "Espresso extraction."},
	}

	retriever, err := NewRetriever(index, metadata, testProvider([]float32{1, 0, 0, 0}), repo)
	require.NoError(t, err)

	result, err := retriever.Retrieve(ctx, "how to steam milk", 5, 0.5, 5)
	require.NoError(t, err)

	require.Len(t, result.VectorResults, 2)
	assert.InDelta(t, 1.0, result.VectorResults[0].Similarity, 1e-5)
	assert.Equal(t, "milk.md", result.VectorResults[0].Chunk.SourceDocument)
	assert.InDelta(t, 0.6, result.VectorResults[1].Similarity, 1e-5)

	require.Len(t, result.ContributionResults, 1)

	assert.Equal(t, 2, result.Metadata.DocumentCount)
	assert.Equal(t, 1, result.Metadata.ContributionCount)
	assert.Equal(t, 3, result.Metadata.TotalSources)
	assert.Contains(t, result.Metadata.Message, "both original documentation and user contributions")

	// avg(1.0, 0.6) + 0.2 caps at 1.0, so documents win and the mode
	// stays standard
	assert.Equal(t, 1.0, result.Metadata.VectorQuality)
	assert.Equal(t, core.ModeStandard, result.Metadata.Mode)
	assert.Contains(t, result.CombinedContext, "ORIGINAL KNOWLEDGE BASE:")
	assert.Contains(t, result.CombinedContext, "USER CONTRIBUTIONS AND ENHANCEMENTS:")
	assert.Equal(t, result.CombinedContext, result.Context.Text)
	assert.Len(t, result.Context.Sources, 3)
}

func TestRetrieveThresholdFiltering(t *testing.T) {
	index := testIndex(t, [][]float32{
		{1, 0, 0, 0},
		{0.6, 0.8, 0, 0},
	})
	metadata := []core.Chunk{
		{SourceDocument: "a.md", Text: "first"},
		{SourceDocument: "b.md", Text: "second"},
	}

	retriever, err := NewRetriever(index, metadata, testProvider([]float32{1, 0, 0, 0}), testRepo(t))
	require.NoError(t, err)

	result, err := retriever.Retrieve(context.Background(), "any question", 5, 0.9, 5)
	require.NoError(t, err)

	require.Len(t, result.VectorResults, 1)
	assert.Equal(t, "a.md", result.VectorResults[0].Chunk.SourceDocument)
}

func TestRetrieveNoResults(t *testing.T) {
	index := vectorindex.New(4)
	retriever, err := NewRetriever(index, nil, testProvider([]float32{1, 0, 0, 0}), testRepo(t))
	require.NoError(t, err)

	result, err := retriever.Retrieve(context.Background(), "anything at all", 5, 0.5, 5)
	require.NoError(t, err)

	assert.Empty(t, result.VectorResults)
	assert.Empty(t, result.ContributionResults)
	assert.Equal(t, "", result.CombinedContext)
	assert.Equal(t, 0, result.Metadata.TotalSources)
	assert.Equal(t, 0.0, result.Metadata.VectorQuality)
	assert.Equal(t, 0.0, result.Metadata.ContributionQuality)
	assert.Equal(t, core.ModeStandard, result.Metadata.Mode)
	assert.Contains(t, result.Metadata.Message, "No relevant information found")
}

func TestRetrieveEmphasizedMode(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &core.Contribution{
		Question: "how to steam milk",
		Answer:   "Use the wand.",
		Rating:   4.5,
	})
	require.NoError(t, err)
	_, err = repo.UpdateApproval(ctx, created.Id, core.ApprovalApproved)
	require.NoError(t, err)

	// No documents clear the threshold, so contributions carry the answer
	index := testIndex(t, [][]float32{{0, 1, 0, 0}})
	metadata := []core.Chunk{{SourceDocument: "a.md", Text: "unrelated"}}

	retriever, err := NewRetriever(index, metadata, testProvider([]float32{1, 0, 0, 0}), repo)
	require.NoError(t, err)

	result, err := retriever.Retrieve(ctx, "how to steam milk", 5, 0.5, 5)
	require.NoError(t, err)

	assert.Empty(t, result.VectorResults)
	require.Len(t, result.ContributionResults, 1)
	assert.Equal(t, core.ModeEmphasized, result.Metadata.Mode)
	assert.Contains(t, result.CombinedContext, "HIGHLY RELEVANT USER CONTRIBUTION #1:")
	assert.Contains(t, result.Metadata.Message, "user contributions")
}

func TestRetrieveDiscardsMisalignedIds(t *testing.T) {
	// Two vectors in the index but only one metadata record: the second
	// hit must be discarded, not dereferenced.
	index := testIndex(t, [][]float32{
		{1, 0, 0, 0},
		{1, 0, 0, 0},
	})
	metadata := []core.Chunk{{SourceDocument: "only.md", Text: "sole chunk"}}

	retriever, err := NewRetriever(index, metadata, testProvider([]float32{1, 0, 0, 0}), testRepo(t))
	require.NoError(t, err)

	result, err := retriever.Retrieve(context.Background(), "some question", 5, 0.0, 5)
	require.NoError(t, err)

	require.Len(t, result.VectorResults, 1)
	assert.Equal(t, "only.md", result.VectorResults[0].Chunk.SourceDocument)
}

type recordingMonitor struct {
	started       bool
	vectorHits    int
	contribHits   int
	qualitySeen   bool
	finishedTotal int
}

var _ RetrievalMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(_ string)                              { m.started = true }
func (m *recordingMonitor) AfterVectorSearch(hits []core.DocumentHit)   { m.vectorHits = len(hits) }
func (m *recordingMonitor) AfterContributionSearch(hits []core.ContributionHit) {
	m.contribHits = len(hits)
}
func (m *recordingMonitor) AfterQualityAssessment(_ core.QualityScore) { m.qualitySeen = true }
func (m *recordingMonitor) Finish(result *core.RetrievalResult) {
	m.finishedTotal = result.Metadata.TotalSources
}

func TestRetrieveWithMonitor(t *testing.T) {
	index := testIndex(t, [][]float32{{1, 0, 0, 0}})
	metadata := []core.Chunk{{SourceDocument: "a.md", Text: "text"}}

	retriever, err := NewRetriever(index, metadata, testProvider([]float32{1, 0, 0, 0}), testRepo(t))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := retriever.RetrieveWithMonitor(context.Background(), "a question", 5, 0.5, 5, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 1, monitor.vectorHits)
	assert.Equal(t, 0, monitor.contribHits)
	assert.True(t, monitor.qualitySeen)
	assert.Equal(t, result.Metadata.TotalSources, monitor.finishedTotal)
}
