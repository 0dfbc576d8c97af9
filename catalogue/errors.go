package catalogue

import "errors"

var (
	// ErrEmbedderRequired is returned when a store is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSourceNotFound is returned when the catalogue file does not exist.
	ErrSourceNotFound = errors.New("catalogue source not found")

	// ErrDuplicateClip is returned when a source names the same clip twice.
	ErrDuplicateClip = errors.New("duplicate clip identifier")
)
