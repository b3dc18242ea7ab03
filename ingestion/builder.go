package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"github.com/quaerolabs/quaero/ai"
	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/vectorindex"
)

const (
	defaultChunkSize      = 500
	defaultOverlap        = 100
	defaultBatchSize      = 100
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// Builder runs the batch indexing pipeline over a directory of source
// documents.
type Builder struct {
	embedder       ai.Embedder
	pool           *ants.Pool
	logger         *slog.Logger
	progressWriter io.Writer
	chunkSize      int
	overlap        int
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithChunking sets the chunk window size and overlap in runes.
// Defaults are 500 and 100.
func WithChunking(chunkSize, overlap int) Option {
	return func(b *Builder) error {
		if chunkSize <= 0 {
			return ErrInvalidChunkSize
		}
		b.chunkSize = chunkSize
		b.overlap = overlap
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per call. The batch size
// only bounds memory; normalization still happens once over the whole
// corpus. Default is 100.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry configures retries around embedding calls.
// Defaults are 3 attempts with a one-second base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = maxAttempts
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgressWriter directs embedding progress output.
// Default is io.Discard.
func WithProgressWriter(w io.Writer) Option {
	return func(b *Builder) error {
		if w == nil {
			w = io.Discard
		}
		b.progressWriter = w
		return nil
	}
}

// NewBuilder creates an index builder around an embedding provider.
func NewBuilder(provider ai.Provider, opts ...Option) (*Builder, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		embedder:       provider.Embedder(),
		pool:           pool,
		logger:         slog.Default(),
		progressWriter: io.Discard,
		chunkSize:      defaultChunkSize,
		overlap:        defaultOverlap,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}

	return b, nil
}

// Release releases the worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// BuildResult summarizes one index build.
type BuildResult struct {
	Documents        int // Documents successfully extracted
	SkippedDocuments int // Documents dropped by extraction failures
	Chunks           int
	Dimension        int
	Rebuilt          bool // False when an existing index was kept
	Elapsed          time.Duration
}

// Build extracts, chunks, embeds, indexes, and persists the documents under
// sourceDir. An existing index at indexPath is kept untouched unless force
// is set. Per-document extraction failures are skipped; extracting nothing
// at all fails with ErrNoContentExtracted.
func (b *Builder) Build(ctx context.Context, sourceDir, indexPath, metadataPath string, force bool) (*BuildResult, error) {
	started := time.Now()

	if !force {
		if _, err := os.Stat(indexPath); err == nil {
			b.logger.Info("index already exists, skipping build", "path", indexPath)
			return &BuildResult{Rebuilt: false, Elapsed: time.Since(started)}, nil
		}
	}

	chunks, documents, skipped, err := b.extractChunks(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoContentExtracted
	}
	b.logger.Info("extracted chunks", "documents", documents, "skipped", skipped, "chunks", len(chunks))

	vectors, err := b.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	// One normalization pass over the whole corpus keeps similarity scales
	// consistent across batches.
	vectorindex.NormalizeVectors(vectors)

	dim := len(vectors[0])
	index := vectorindex.New(dim)
	if err := index.Add(vectors); err != nil {
		return nil, err
	}

	if err := index.Save(indexPath); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}
	if err := vectorindex.SaveMetadata(metadataPath, chunks); err != nil {
		return nil, fmt.Errorf("persisting metadata: %w", err)
	}

	result := &BuildResult{
		Documents:        documents,
		SkippedDocuments: skipped,
		Chunks:           len(chunks),
		Dimension:        dim,
		Rebuilt:          true,
		Elapsed:          time.Since(started),
	}
	b.logger.Info("index build completed",
		"chunks", result.Chunks, "dim", result.Dimension, "elapsed", result.Elapsed)
	return result, nil
}

// extractChunks walks the source documents and chunks each one, skipping
// documents whose extraction fails.
func (b *Builder) extractChunks(sourceDir string) ([]core.Chunk, int, int, error) {
	paths, err := ListDocuments(sourceDir)
	if err != nil {
		return nil, 0, 0, err
	}

	var chunks []core.Chunk
	documents, skipped := 0, 0
	for _, path := range paths {
		text, err := ExtractText(path)
		if err != nil {
			b.logger.Warn("skipping document", "path", path, "err", err)
			skipped++
			continue
		}

		pieces, err := ChunkText(text, b.chunkSize, b.overlap)
		if err != nil {
			return nil, 0, 0, err
		}

		name := filepath.Base(path)
		for i, piece := range pieces {
			chunks = append(chunks, core.Chunk{
				SourceDocument: name,
				ChunkIndex:     int64(i),
				Text:           piece,
				CharCount:      int64(utf8.RuneCountInString(piece)),
			})
		}
		documents++
	}
	return chunks, documents, skipped, nil
}

// embedChunks embeds all chunks in bounded batches on the worker pool,
// preserving chunk order in the returned vectors.
func (b *Builder) embedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	progress := NewProgressTracker(b.progressWriter, len(chunks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for offset := 0; offset < len(chunks); offset += b.batchSize {
		end := offset + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-offset)
		for i := offset; i < end; i++ {
			texts[i-offset] = chunks[i].Text
		}
		batchStart := offset

		wg.Add(1)
		task := func() {
			defer wg.Done()

			var embeddings [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				embeddings, err = b.embedder.EmbedTexts(ctx, texts)
				return err
			}, b.maxRetries, b.retryBaseDelay)
			if err != nil {
				record(fmt.Errorf("embedding batch at %d: %w", batchStart, err))
				return
			}
			if len(embeddings) != len(texts) {
				record(fmt.Errorf("embedding batch at %d: %w", batchStart, ai.ErrShapeMismatch))
				return
			}

			for i, embedding := range embeddings {
				vectors[batchStart+i] = embedding
			}
			progress.Advance(len(embeddings))
		}
		if err := b.pool.Submit(task); err != nil {
			wg.Done()
			record(err)
			break
		}
	}

	wg.Wait()
	progress.Finish()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
