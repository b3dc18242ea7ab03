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


package quaero

import (
	"log/slog"

	"github.com/quaerolabs/quaero/ai"
	"github.com/quaerolabs/quaero/ai/openai"
	"github.com/quaerolabs/quaero/ingestion"
	"github.com/quaerolabs/quaero/search"
	"github.com/quaerolabs/quaero/storage"
	"github.com/quaerolabs/quaero/storage/badger"
	"github.com/quaerolabs/quaero/vectorindex"
)

// Engine bundles the contribution store and AI provider, and hands out
// configured pipelines for indexing and retrieval.
type Engine struct {
	backend       *badger.Backend
	contributions storage.ContributionRepository
	provider      ai.Provider
	logger        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create contribution repository
	contributions, err := badger.NewContributionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		contributions.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:       backend,
		contributions: contributions,
		provider:      provider,
		logger:        slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	// Close repository
	if err := e.contributions.Close(); err != nil {
		e.logger.Error("error closing contribution repository", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) ContributionRepository() storage.ContributionRepository {
	return e.contributions
}

func (e *Engine) NewBuilder(opts ...ingestion.Option) (*ingestion.Builder, error) {
	return ingestion.NewBuilder(e.provider, opts...)
}

// NewRetriever loads the persisted index and chunk metadata and wires them
// to the contribution store for hybrid retrieval.
func (e *Engine) NewRetriever(indexPath, metadataPath string, opts ...search.Option) (*search.Retriever, error) {
	index, err := vectorindex.Load(indexPath)
	if err != nil {
		return nil, err
	}
	metadata, err := vectorindex.LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	if len(metadata) != index.Len() {
		e.logger.Warn("index and metadata disagree on chunk count",
			"vectors", index.Len(), "chunks", len(metadata))
	}
	return search.NewRetriever(index, metadata, e.provider, e.contributions, opts...)
}
