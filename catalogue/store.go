package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/soundbite/ai"
	"github.com/poiesic/soundbite/core"
)

// Entry is one clip in a catalogue source: an identifier and its phrases.
type Entry struct {
	ID      string
	Phrases []string
}

// Store holds the catalogue of clips and their embeddings.
type Store struct {
	mu    sync.RWMutex
	order []string
	clips map[string]*core.Clip
	dim   int

	embedder ai.Embedder
	pool     *ants.Pool
	progress *ProgressTracker
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize sets the number of clips embedded concurrently during Load.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithProgress reports Load progress to tracker.
func WithProgress(tracker *ProgressTracker) Option {
	return func(s *Store) error {
		s.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty store that embeds phrases with embedder.
func NewStore(embedder ai.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		clips:    make(map[string]*core.Clip),
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	s.logger = s.logger.With("component", "catalogue")
	return s, nil
}

// Load replaces the catalogue with entries. Every phrase and the combined text
// of every clip are embedded before anything is committed; on failure the
// store keeps its previous contents and the error wraps core.ErrCatalogueLoad.
func (s *Store) Load(ctx context.Context, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	prepared := make([]Entry, len(entries))
	for i, entry := range entries {
		if err := core.ValidateClipID(entry.ID); err != nil {
			return fmt.Errorf("%w: entry %d: %w", core.ErrCatalogueLoad, i, err)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("%w: %w: %q", core.ErrCatalogueLoad, ErrDuplicateClip, entry.ID)
		}
		seen[entry.ID] = struct{}{}

		phrases, err := core.NormalizePhrases(entry.Phrases)
		if err != nil {
			return fmt.Errorf("%w: clip %q: %w", core.ErrCatalogueLoad, entry.ID, err)
		}
		prepared[i] = Entry{ID: entry.ID, Phrases: phrases}
	}

	s.logger.Info("embedding catalogue", "clips", len(prepared))
	clips := make([]*core.Clip, len(prepared))
	errs := make([]error, len(prepared))
	s.progress.Start(len(prepared))
	var wg sync.WaitGroup
	for i, entry := range prepared {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			clips[i], errs[i] = s.embedClip(ctx, entry.ID, entry.Phrases)
			if errs[i] == nil {
				s.progress.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	s.progress.Finish()

	dim := 0
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("%w: clip %q: %w", core.ErrCatalogueLoad, prepared[i].ID, err)
		}
		if dim == 0 {
			dim = clips[i].Dim()
		} else if clips[i].Dim() != dim {
			return fmt.Errorf("%w: %w: clip %q has dimension %d, expected %d",
				core.ErrCatalogueLoad, core.ErrDimensionMismatch, clips[i].ID, clips[i].Dim(), dim)
		}
	}

	order := make([]string, len(clips))
	byID := make(map[string]*core.Clip, len(clips))
	for i, clip := range clips {
		order[i] = clip.ID
		byID[clip.ID] = clip
	}

	s.mu.Lock()
	s.order = order
	s.clips = byID
	s.dim = dim
	s.mu.Unlock()

	s.logger.Info("catalogue loaded", "clips", len(order), "dimension", dim)
	return nil
}

// Insert adds the clip id or fully replaces an existing one. Phrases are
// trimmed and blank ones dropped; if none remain the insert fails with
// core.ErrInvalidDescription. On any failure the prior entry is kept.
func (s *Store) Insert(ctx context.Context, id string, phrases []string) error {
	if err := core.ValidateClipID(id); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidDescription, err)
	}
	normalized, err := core.NormalizePhrases(phrases)
	if err != nil {
		return err
	}

	clip, err := s.embedClip(ctx, id, normalized)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.clips[id]
	others := len(s.clips)
	if exists {
		others--
	}
	if others > 0 && clip.Dim() != s.dim {
		return fmt.Errorf("%w: clip %q has dimension %d, catalogue has %d",
			core.ErrDimensionMismatch, id, clip.Dim(), s.dim)
	}

	if !exists {
		s.order = append(s.order, id)
	}
	s.clips[id] = clip
	s.dim = clip.Dim()

	s.logger.Info("clip stored", "clip", id, "phrases", len(normalized), "replaced", exists)
	return nil
}

// embedClip computes the per-phrase and combined embeddings for one clip.
func (s *Store) embedClip(ctx context.Context, id string, phrases []string) (*core.Clip, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, phrases)
	if err != nil {
		s.logger.Error("error embedding phrases", "clip", id, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(phrases) {
		return nil, fmt.Errorf("%w: embedding result mismatch. expected %d, received %d",
			core.ErrEmbeddingFailure, len(phrases), len(vectors))
	}

	combined, err := s.embedder.EmbedText(ctx, core.CombineText(phrases))
	if err != nil {
		s.logger.Error("error embedding combined text", "clip", id, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingFailure, err)
	}
	if len(combined) == 0 {
		return nil, fmt.Errorf("%w: empty vector for clip %q", core.ErrEmbeddingFailure, id)
	}

	clip := &core.Clip{
		ID:       id,
		Phrases:  append([]string(nil), phrases...),
		Vectors:  vectors,
		Combined: combined,
	}
	if err := core.ValidateClip(clip); err != nil {
		return nil, err
	}
	return clip, nil
}

// IDs returns the clip identifiers in catalogue order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of clips.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Dim returns the embedding dimension shared by all clips, or 0 when empty.
func (s *Store) Dim() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Get returns the clip stored under id.
func (s *Store) Get(id string) (*core.Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clip, ok := s.clips[id]
	return clip, ok
}

// Snapshot returns the clips in catalogue order. Clips are immutable, so the
// snapshot stays consistent while later inserts replace entries.
func (s *Store) Snapshot() []*core.Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Clip, len(s.order))
	for i, id := range s.order {
		out[i] = s.clips[id]
	}
	return out
}

// Entries returns the catalogue as a source, e.g. for writing it back to disk.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.order))
	for i, id := range s.order {
		clip := s.clips[id]
		out[i] = Entry{ID: id, Phrases: append([]string(nil), clip.Phrases...)}
	}
	return out
}

// Release releases the worker pool. The store must not be loaded again
// afterwards.
func (s *Store) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
