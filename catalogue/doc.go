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
// Package catalogue holds the in-memory set of audio clips and their
// embeddings.
//
// Each clip is described by one or more phrases. On load and insert the store
// computes one embedding per phrase and one embedding of all phrases joined
// with single spaces, in the order the phrases were given. The matching engine
// reads an ordered snapshot of the clips and scores queries against it.
//
// # Sources
//
// A catalogue source is a JSON or YAML document mapping clip identifiers to
// lists of phrases:
//
//	{
//	  "greet.ogg": ["hello there", "hi"],
//	  "bye.ogg": ["goodbye", "see you"]
//	}
//
// LoadFile reads such a document and, when the file does not exist yet,
// writes a single placeholder entry to that path so the system is usable on
// first run.
//
// # Concurrency
//
// Store is safe for concurrent use. Load embeds clips on a worker pool and
// commits the whole catalogue at once. Insert computes embeddings before it
// takes the write lock and swaps the clip in a single step, so readers never
// observe a partially updated clip.
package catalogue
