// Copyright 2025 Quaero Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/quaerolabs/quaero/ai"
	"github.com/quaerolabs/quaero/ai/openai"
	"github.com/quaerolabs/quaero/core"
	"github.com/quaerolabs/quaero/ingestion"
	"github.com/quaerolabs/quaero/search"
	"github.com/quaerolabs/quaero/storage"
	"github.com/quaerolabs/quaero/storage/badger"
	"github.com/quaerolabs/quaero/vectorindex"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quaero",
		Usage: "Hybrid document and contribution retrieval system",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Build the vector index from a directory of source documents",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Directory containing source documents (.txt, .md)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Path to write the vector index",
						Value: "index.bin",
					},
					&cli.StringFlag{
						Name:  "metadata",
						Usage: "Path to write the chunk metadata",
						Value: "metadata.bin",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk window size in characters",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Characters shared by consecutive chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even when an index already exists",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Retrieve blended context for a question",
				Action:    askCommand,
				ArgsUsage: "QUESTION",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Path to the vector index",
						Value: "index.bin",
					},
					&cli.StringFlag{
						Name:  "metadata",
						Usage: "Path to the chunk metadata",
						Value: "metadata.bin",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of document chunks to retrieve",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity for document chunks",
						Value: 0.3,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of contributions to retrieve",
						Value: 5,
					},
				},
			},
			{
				Name:   "contribute",
				Usage:  "Submit a question/answer contribution for moderation",
				Action: contributeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "The question this contribution answers",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "answer",
						Aliases:  []string{"a"},
						Usage:    "The contributed answer",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "original-question",
						Usage: "The original question this contribution refines, if any",
					},
					&cli.StringFlag{
						Name:  "improvement-type",
						Usage: "Kind of contribution (enhancement, correction, clarification)",
						Value: "enhancement",
					},
					&cli.Float64Flag{
						Name:  "rating",
						Usage: "Initial quality rating (0.0 to 5.0)",
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Submitting user identifier",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Submitting user email",
					},
				},
			},
			{
				Name:   "moderate",
				Usage:  "Review and resolve pending contributions",
				Action: moderateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:  "approve",
						Usage: "Approve the contribution with this ID",
					},
					&cli.Uint64Flag{
						Name:  "reject",
						Usage: "Reject the contribution with this ID",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Approve every pending contribution",
					},
				},
			},
			{
				Name:   "top",
				Usage:  "List the highest-rated approved contributions",
				Action: topCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of contributions to list",
						Value: 10,
					},
				},
			},
		},
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	builder, err := ingestion.NewBuilder(provider,
		ingestion.WithChunking(c.Int("chunk-size"), c.Int("overlap")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}
	defer builder.Release()

	fmt.Fprintf(os.Stderr, "Source: %s\n", c.String("source"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	result, err := builder.Build(ctx, c.String("source"),
		c.String("index"), c.String("metadata"), c.Bool("force"))
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if !result.Rebuilt {
		fmt.Fprintf(os.Stderr, "Index already exists at %s, use --force to rebuild\n", c.String("index"))
		return nil
	}
	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %d documents (%d skipped) in %s\n",
		result.Chunks, result.Documents, result.SkippedDocuments, result.Elapsed.Round(time.Millisecond))
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	backend, repo, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	index, err := vectorindex.Load(c.String("index"))
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	metadata, err := vectorindex.LoadMetadata(c.String("metadata"))
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	retriever, err := search.NewRetriever(index, metadata, provider, repo)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	result, err := retriever.Retrieve(ctx, question,
		c.Int("top-k"), c.Float64("threshold"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	printRetrievalResult(result)
	return nil
}

func contributeCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, repo, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	created, err := repo.Create(ctx, &core.Contribution{
		Question:         c.String("question"),
		OriginalQuestion: c.String("original-question"),
		Answer:           c.String("answer"),
		ImprovementType:  c.String("improvement-type"),
		Rating:           c.Float64("rating"),
		UserId:           c.String("user"),
		UserEmail:        c.String("email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	fmt.Printf("Created contribution %d (%s)\n", created.Id, created.Approval)

	// Warn when the same question was already contributed.
	matches, err := repo.FindByContentHash(ctx, created.ContentHash)
	if err == nil && len(matches) > 1 {
		fmt.Printf("Note: %d existing contributions share this question\n", len(matches)-1)
	}
	return nil
}

func moderateCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, repo, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	switch {
	case c.Bool("all"):
		count, err := repo.ApproveAllPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to approve pending contributions: %w", err)
		}
		fmt.Printf("Approved %d contributions\n", count)
		return nil

	case c.Uint64("approve") != 0:
		id := core.ID(c.Uint64("approve"))
		updated, err := repo.UpdateApproval(ctx, id, core.ApprovalApproved)
		if err != nil {
			return fmt.Errorf("failed to approve contribution %d: %w", id, err)
		}
		fmt.Printf("Contribution %d is now %s\n", updated.Id, updated.Approval)
		return nil

	case c.Uint64("reject") != 0:
		id := core.ID(c.Uint64("reject"))
		updated, err := repo.UpdateApproval(ctx, id, core.ApprovalRejected)
		if err != nil {
			return fmt.Errorf("failed to reject contribution %d: %w", id, err)
		}
		fmt.Printf("Contribution %d is now %s\n", updated.Id, updated.Approval)
		return nil

	default:
		// No action flag: list the moderation queue.
		pending, err := repo.ListByApproval(ctx, core.ApprovalPending)
		if err != nil {
			return fmt.Errorf("failed to list pending contributions: %w", err)
		}
		if len(pending) == 0 {
			fmt.Println("No pending contributions")
			return nil
		}
		for _, contribution := range pending {
			fmt.Printf("#%d [%.1f/5.0] %s\n", contribution.Id, contribution.Rating, contribution.Question)
		}
		return nil
	}
}

func topCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, repo, err := openRepository(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	top, err := repo.TopContributions(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list top contributions: %w", err)
	}

	if len(top) == 0 {
		fmt.Println("No approved contributions")
		return nil
	}
	for i, contribution := range top {
		fmt.Printf("%d. #%d [%.1f/5.0, used %d times] %s\n",
			i+1, contribution.Id, contribution.Rating, contribution.UsageCount, contribution.Question)
	}
	return nil
}

func openRepository(dbPath string) (*badger.Backend, storage.ContributionRepository, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo, err := badger.NewContributionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return backend, repo, nil
}

func printRetrievalResult(result *core.RetrievalResult) {
	meta := result.Metadata
	fmt.Printf("Mode: %s\n", meta.Mode)
	fmt.Printf("Sources: %d documents, %d contributions\n", meta.DocumentCount, meta.ContributionCount)
	fmt.Printf("Quality: vector %.2f, contribution %.2f\n", meta.VectorQuality, meta.ContributionQuality)
	fmt.Printf("%s\n\n", meta.Message)

	if result.CombinedContext == "" {
		return
	}
	fmt.Println(result.CombinedContext)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
