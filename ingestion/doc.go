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

// Package ingestion builds the document vector index.
//
// The Builder runs a linear batch pipeline: extract text from a directory of
// source documents, chunk it into overlapping windows, embed the chunks in
// bounded batches, normalize the full corpus once, and persist the index
// together with its positionally aligned chunk metadata. Per-document
// extraction failures are logged and skipped; a build that extracts nothing
// fails as a whole.
//
// Builds are all-or-nothing: an existing persisted index is left untouched
// unless the force flag is set, and both output files are written with
// atomic rename so a crash never leaves them inconsistent with each other.
package ingestion
