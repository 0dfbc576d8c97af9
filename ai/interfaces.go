package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use and return vectors of
// one fixed dimension for a given model.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the embedding service with the identity of its model.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ModelName identifies the embedding model, e.g. for stats output and
	// cache keys.
	ModelName() string

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

// VectorCache stores embeddings keyed by model and text.
// Implementations must be thread-safe.
type VectorCache interface {
	// GetVector returns the cached embedding, or ok=false on a miss.
	GetVector(ctx context.Context, model, text string) (vector []float32, ok bool, err error)

	// PutVector stores an embedding.
	PutVector(ctx context.Context, model, text string, vector []float32) error
}
