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


// Package vectorindex implements a flat inner-product nearest-neighbor index
// over L2-normalized embedding vectors, plus its durable persistence.
//
// Row i of the index corresponds exactly to entry i of the chunk metadata
// sequence persisted alongside it; the two files are written together with
// write-then-rename so a crash cannot leave them inconsistent with each
// other. The index is rebuilt wholesale by the ingestion pipeline and is
// immutable while serving, so concurrent searches need no locking.
package vectorindex
