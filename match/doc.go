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
// Package match implements the matching engine: it embeds a query, scores it
// against every clip in a catalogue and decides whether the best clip is good
// enough to play.
//
// # Strategies
//
// Four strategies are available, selected by core.Method:
//
//   - individual: a clip scores the highest cosine similarity between the
//     query and any one of its phrases
//   - combined: a clip scores the similarity between the query and the
//     embedding of all its phrases joined with spaces
//   - hybrid: 0.7 * individual + 0.3 * combined, per clip
//   - max: runs individual and combined, applies the threshold to both and
//     keeps the better decision
//
// Individual and combined only consider clips with a positive score and keep
// the earlier clip on ties. Scores are plain cosine similarities and are not
// clamped.
//
// # Decisions
//
// Every query yields a core.Decision whose Result is core.Success when the
// best clip reaches the threshold, core.NoMatch when it does not and
// core.Failure when the query could not be scored (blank text, embedding
// failure). Match returns an error only for an unknown method.
//
// # Usage
//
//	engine, err := match.NewEngine(store, embedder,
//	    match.WithThreshold(0.7),
//	    match.WithModelName(provider.ModelName()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	decision, err := engine.Match(ctx, "hello", core.MethodHybrid)
package match
