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
	"math"
	"strings"
)

// NormalizePhrases trims every phrase and drops the blank ones.
//
// Validation rules:
//   - at least one phrase must remain after trimming
//
// The returned slice is a new slice; phrases is not modified.
func NormalizePhrases(phrases []string) ([]string, error) {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty description is required", ErrInvalidDescription)
	}
	return out, nil
}

// ValidateClipID checks that id is not blank.
func ValidateClipID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyClipID
	}
	return nil
}

// ValidateThreshold checks that v lies in [0, 1].
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %v must be between 0.0 and 1.0", ErrInvalidThreshold, v)
	}
	return nil
}

// ValidateClip checks the structural invariants of a stored clip.
func ValidateClip(clip *Clip) error {
	if clip == nil {
		return fmt.Errorf("%w: clip is nil", ErrInvalidDescription)
	}
	if err := ValidateClipID(clip.ID); err != nil {
		return err
	}
	if len(clip.Phrases) == 0 {
		return fmt.Errorf("%w: clip %q has no phrases", ErrInvalidDescription, clip.ID)
	}
	if len(clip.Phrases) != len(clip.Vectors) {
		return fmt.Errorf("%w: clip %q has %d phrases and %d vectors",
			ErrDimensionMismatch, clip.ID, len(clip.Phrases), len(clip.Vectors))
	}
	dim := len(clip.Combined)
	for i, v := range clip.Vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: clip %q phrase %d has dimension %d, combined has %d",
				ErrDimensionMismatch, clip.ID, i, len(v), dim)
		}
	}
	return nil
}
