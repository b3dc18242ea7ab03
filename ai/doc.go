// Package ai defines the embedding service abstraction used by the indexing
// and retrieval pipelines.
//
// The Embedder interface is the only AI collaborator this system consumes:
// answer generation is handled by a downstream service outside this module.
// Concrete implementations live in subpackages (openai for OpenAI-compatible
// APIs, mock for tests), and are injected into pipelines at construction
// time rather than reached through shared globals.
package ai
