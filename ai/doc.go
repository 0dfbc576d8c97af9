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


// Package ai provides the embedding abstraction used by soundbite.
//
// The matching engine only needs one capability from a model: turn a text
// into a fixed-length vector. This package defines that capability and the
// decorators that compose around it:
//
//   - Embedder: generates vector embeddings from text
//   - Provider: owns an Embedder together with its model name
//   - VectorCache: persistent store of previously computed vectors
//   - WithRetry: retries transient failures with exponential backoff
//   - NewCachedEmbedder: serves repeated texts from a VectorCache
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles with injectable behavior and call counts
//
// Public constructors in ai/openai return INTERFACE types. Test constructors in
// ai/mock return CONCRETE types so tests can inspect call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	embedder := ai.NewCachedEmbedder(provider.Embedder(), cache, provider.ModelName())
//	vec, err := embedder.EmbedText(ctx, "hello there")
package ai
