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


package core

import (
	"fmt"
	"strings"
)

// Clip is one audio entry in the catalogue.
// A Clip is never mutated once stored; replacing a clip swaps the pointer.
type Clip struct {
	ID       string      // Filename-like identifier, e.g. "greet.ogg"
	Phrases  []string    // Descriptive phrases, at least one
	Vectors  [][]float32 // One embedding per phrase, same order as Phrases
	Combined []float32   // Embedding of CombinedText()
}

// CombinedText returns the phrases joined with single spaces.
func (c *Clip) CombinedText() string {
	return CombineText(c.Phrases)
}

// Dim returns the embedding dimension of the clip, or 0 if it has no vectors.
func (c *Clip) Dim() int {
	return len(c.Combined)
}

// CombineText joins phrases with single spaces.
func CombineText(phrases []string) string {
	return strings.Join(phrases, " ")
}

// Method selects a scoring strategy.
type Method string

const (
	MethodIndividual Method = "individual"
	MethodCombined   Method = "combined"
	MethodHybrid     Method = "hybrid"
	MethodMax        Method = "max"
)

// DefaultMethod is used when a caller does not name a method.
const DefaultMethod = MethodHybrid

// Methods lists every valid method in declaration order.
var Methods = []Method{MethodIndividual, MethodCombined, MethodHybrid, MethodMax}

// Validate returns ErrUnknownMethod if m is not one of Methods.
func (m Method) Validate() error {
	for _, valid := range Methods {
		if m == valid {
			return nil
		}
	}
	names := make([]string, len(Methods))
	for i, valid := range Methods {
		names[i] = string(valid)
	}
	return fmt.Errorf("%w: %q. valid options: %s", ErrUnknownMethod, string(m), strings.Join(names, ", "))
}

// ParseMethod converts a method name into a Method.
// An empty name selects DefaultMethod.
func ParseMethod(name string) (Method, error) {
	if name == "" {
		return DefaultMethod, nil
	}
	m := Method(name)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// CandidateScore is the similarity of the query to one clip.
type CandidateScore struct {
	ClipID string
	Score  float64
}

// ScoreTable holds one score per clip in catalogue order.
// Scores are cosine similarities and are not clamped.
type ScoreTable []CandidateScore

// Get returns the score for id.
func (t ScoreTable) Get(id string) (float64, bool) {
	for _, cs := range t {
		if cs.ClipID == id {
			return cs.Score, true
		}
	}
	return 0, false
}

// Map returns the table as a map keyed by clip id.
func (t ScoreTable) Map() map[string]float64 {
	m := make(map[string]float64, len(t))
	for _, cs := range t {
		m[cs.ClipID] = cs.Score
	}
	return m
}

// PhraseScores is the per-phrase breakdown of an individual match for one clip.
type PhraseScores struct {
	Phrases    []string
	Scores     []float64
	MaxScore   float64
	BestPhrase int // Index into Phrases of the highest score
}

// Stats summarises an engine for the admin surface.
type Stats struct {
	Count     int
	Model     string
	Threshold float64
	ClipIDs   []string
}
