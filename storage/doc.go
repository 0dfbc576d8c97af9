// Copyright 2025 Poiesic Systems
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
// Package storage provides the storage abstraction for the embedding cache.
//
// The matching engine keeps its catalogue in memory. What is worth keeping
// across restarts is the output of the embedding model: re-embedding an
// unchanged catalogue on every start is slow against a remote service. A
// VectorRepository stores those vectors keyed by model and text and satisfies
// ai.VectorCache, so it can be placed behind ai.NewCachedEmbedder.
//
// # Constructor Return Type Pattern
//
// Public constructors return the VectorRepository interface:
//
//	repo, err := badger.NewVectorRepository(backend) // returns storage.VectorRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/soundbite/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo, err := badger.NewVectorRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	embedder := ai.NewCachedEmbedder(provider.Embedder(), repo, provider.ModelName())
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryVectorRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
