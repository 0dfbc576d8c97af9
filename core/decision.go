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

// Status is the coarse outcome tag of a Decision.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoMatch Status = "no_match"
	StatusError   Status = "error"
)

// Result is the outcome of a query. It is one of Success, NoMatch or Failure.
// Callers switch on the concrete type instead of comparing sentinel strings.
type Result interface {
	status() Status
}

// Success carries the accepted clip.
type Success struct {
	ClipID string
}

// NoMatch carries the best candidate that failed the threshold, if any.
type NoMatch struct {
	BestGuess string // Empty when the catalogue produced no candidate
}

// Failure carries the reason a query could not be scored.
type Failure struct {
	Reason string
}

func (Success) status() Status { return StatusSuccess }
func (NoMatch) status() Status { return StatusNoMatch }
func (Failure) status() Status { return StatusError }

// Comparison records the losing score of a max decision.
// Exactly one field is set.
type Comparison struct {
	IndividualScore *float64
	CombinedScore   *float64
}

// HybridBreakdown is the verbose detail of a hybrid decision.
type HybridBreakdown struct {
	Individual       ScoreTable
	Combined         ScoreTable
	IndividualWeight float64
	CombinedWeight   float64
}

// Details holds method-specific diagnostics. At most one field is set.
type Details struct {
	Individual map[string]PhraseScores
	Hybrid     *HybridBreakdown
}

// Decision is the result of one query.
type Decision struct {
	Result     Result
	Confidence float64
	Method     Method
	Message    string

	// Set by the max strategy only.
	MethodUsed   string
	ComparedWith *Comparison

	// Set only when the engine runs verbose.
	Scores  ScoreTable
	Details *Details
}

// Status returns the tag of the decision's Result.
func (d *Decision) Status() Status {
	if d == nil || d.Result == nil {
		return StatusError
	}
	return d.Result.status()
}

// Matched returns the accepted clip id.
func (d *Decision) Matched() (string, bool) {
	if d == nil {
		return "", false
	}
	s, ok := d.Result.(Success)
	return s.ClipID, ok
}

// BestCandidate returns the rejected best guess of a no-match decision.
func (d *Decision) BestCandidate() (string, bool) {
	if d == nil {
		return "", false
	}
	nm, ok := d.Result.(NoMatch)
	if !ok || nm.BestGuess == "" {
		return "", false
	}
	return nm.BestGuess, true
}

// FailureReason returns the reason of an error decision.
func (d *Decision) FailureReason() (string, bool) {
	if d == nil {
		return "", false
	}
	f, ok := d.Result.(Failure)
	return f.Reason, ok
}
