// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder produces deterministic vectors derived from text hashes,
// so tests get stable similarity orderings without a running model service.
// Behavior can be overridden per test via function fields.
package mock
