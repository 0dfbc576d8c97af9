package storage

import (
	"context"

	"github.com/poiesic/soundbite/ai"
)

// VectorRepository persists embeddings keyed by model and text.
// Implementations must be thread-safe and support concurrent access.
type VectorRepository interface {
	ai.VectorCache

	// Count returns the number of stored vectors for model.
	// An empty model counts every stored vector.
	Count(ctx context.Context, model string) (int, error)

	// Purge removes every stored vector for model and returns how many were
	// removed. An empty model removes everything.
	Purge(ctx context.Context, model string) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
