package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// CachedEmbedder serves embeddings from a VectorCache and falls back to the
// wrapped Embedder on a miss. Cache failures are logged and never fail a call.
type CachedEmbedder struct {
	next   Embedder
	cache  VectorCache
	model  string
	logger *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps next with cache. Vectors are keyed by model and the
// exact input text. A nil cache returns next unchanged.
func NewCachedEmbedder(next Embedder, cache VectorCache, model string) Embedder {
	if cache == nil {
		return next
	}
	return &CachedEmbedder{
		next:   next,
		cache:  cache,
		model:  model,
		logger: slog.Default().With("component", "embedding-cache"),
	}
}

// EmbedText returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(ctx, text); ok {
		return vec, nil
	}
	vec, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, text, vec)
	return vec, nil
}

// EmbedTexts resolves cached vectors and sends only the misses to the wrapped
// Embedder in one batch.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.lookup(ctx, text); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	c.logger.Debug("embedding cache misses", "hits", len(texts)-len(missTexts), "misses", len(missTexts))
	vecs, err := c.next.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(missTexts), len(vecs))
	}
	for j, vec := range vecs {
		out[missIdx[j]] = vec
		c.store(ctx, missTexts[j], vec)
	}
	return out, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) ([]float32, bool) {
	vec, ok, err := c.cache.GetVector(ctx, c.model, text)
	if err != nil {
		c.logger.Warn("error reading embedding cache", "err", err)
		return nil, false
	}
	return vec, ok
}

func (c *CachedEmbedder) store(ctx context.Context, text string, vec []float32) {
	if err := c.cache.PutVector(ctx, c.model, text, vec); err != nil {
		c.logger.Warn("error writing embedding cache", "err", err)
	}
}
