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

// Package search provides hybrid retrieval over a vector-indexed document
// corpus and a moderated contribution store.
//
// The Retriever type runs two independent arms per question:
//   - Vector search using query embeddings over the document index
//   - Lexical matching over approved user contributions, combining
//     token-overlap, substring, and phrase-containment signals
//
// Both result sets are quality-scored, a rendering mode is chosen, and the
// composer assembles a single context string plus structured source records
// for the downstream answer-generation consumer.
package search
