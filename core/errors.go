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

import "errors"

// Domain errors
var (
	// ErrEmptyQuery indicates a query with no text after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrUnknownMethod indicates an unrecognized matching method name.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrCatalogueLoad indicates the catalogue source could not be parsed
	// or embedded.
	ErrCatalogueLoad = errors.New("catalogue load failed")

	// ErrInvalidDescription indicates a clip insert without usable phrases.
	ErrInvalidDescription = errors.New("invalid description")

	// ErrEmptyClipID indicates a clip identifier that is blank.
	ErrEmptyClipID = errors.New("clip id cannot be empty")

	// ErrInvalidThreshold indicates a threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrEmbeddingFailure indicates the embedding provider failed.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrDimensionMismatch indicates vectors of different lengths were mixed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
