// Package mock provides test double implementations of the ai interfaces.
//
// The mocks let tests run without an embedding service and give exact control
// over the vectors the matching engine sees.
//
// # Usage in Tests
//
//	// Deterministic hash-based vectors
//	provider := mock.NewMockProvider()
//	vec, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Hand-picked vectors
//	embedder := mock.NewTableEmbedder(map[string][]float32{
//	    "hello": {1, 0},
//	    "bye":   {0, 1},
//	})
//
//	// One orthogonal unit vector per distinct text
//	embedder := mock.NewOrthogonalEmbedder(16)
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors based on text hash
//   - MockProvider: wraps a MockEmbedder and reports a fixed model name
package mock
