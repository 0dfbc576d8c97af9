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
package soundbite

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/soundbite/ai"
	"github.com/poiesic/soundbite/ai/openai"
	"github.com/poiesic/soundbite/catalogue"
	"github.com/poiesic/soundbite/match"
	"github.com/poiesic/soundbite/server"
	"github.com/poiesic/soundbite/storage"
	"github.com/poiesic/soundbite/storage/badger"
)

// System wires the embedding provider, the optional embedding cache, the
// catalogue and the matching engine. It is built once at process start.
type System struct {
	config   *Config
	provider ai.Provider
	cache    storage.VectorRepository
	store    *catalogue.Store
	engine   *match.Engine
	seeded   bool
	base     *slog.Logger
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	provider ai.Provider
	monitor  match.Monitor
	progress io.Writer
	logger   *slog.Logger
}

// WithProvider uses provider instead of building one from Config.AI.
// The System takes ownership and closes it.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithMonitor installs query hooks on the engine.
func WithMonitor(monitor match.Monitor) SystemOption {
	return func(o *systemOptions) {
		o.monitor = monitor
	}
}

// WithLoadProgress writes catalogue embedding progress to w.
func WithLoadProgress(w io.Writer) SystemOption {
	return func(o *systemOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger for every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// NewSystem validates config, loads the catalogue and returns a ready System.
// A missing catalogue file is seeded with the default catalogue.
func NewSystem(ctx context.Context, config *Config, opts ...SystemOption) (*System, error) {
	options := &systemOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		if options.provider != nil {
			options.provider.Close()
		}
		return nil, err
	}

	s := &System{
		config:   config,
		provider: options.provider,
		base:     options.logger,
		logger:   options.logger.With("component", "system"),
	}
	if err := s.init(ctx, options); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *System) init(ctx context.Context, options *systemOptions) error {
	if s.provider == nil {
		provider, err := openai.NewProvider(s.config.AI)
		if err != nil {
			return fmt.Errorf("creating embedding provider: %w", err)
		}
		s.provider = provider
	}
	model := s.provider.ModelName()
	embedder := s.provider.Embedder()

	if s.config.CacheDir != "" {
		cache, err := badger.OpenVectorRepository(s.config.CacheDir)
		if err != nil {
			return fmt.Errorf("opening embedding cache: %w", err)
		}
		s.cache = cache
		embedder = ai.NewCachedEmbedder(embedder, cache, model)
	}

	storeOpts := []catalogue.Option{catalogue.WithLogger(options.logger)}
	if s.config.PoolSize > 0 {
		storeOpts = append(storeOpts, catalogue.WithPoolSize(s.config.PoolSize))
	}
	if options.progress != nil {
		storeOpts = append(storeOpts, catalogue.WithProgress(catalogue.NewProgressTracker(options.progress, 10)))
	}
	store, err := catalogue.NewStore(embedder, storeOpts...)
	if err != nil {
		return err
	}
	s.store = store

	entries, seeded, err := catalogue.LoadFile(s.config.CataloguePath)
	if err != nil {
		return err
	}
	s.seeded = seeded
	if err := store.Load(ctx, entries); err != nil {
		return err
	}

	engine, err := match.NewEngine(store, embedder,
		match.WithThreshold(s.config.Threshold),
		match.WithVerbose(s.config.Debug),
		match.WithModelName(model),
		match.WithMonitor(options.monitor),
		match.WithLogger(options.logger))
	if err != nil {
		return err
	}
	s.engine = engine

	s.logger.Info("system initialized",
		"catalogue", s.config.CataloguePath,
		"clips", store.Len(),
		"model", model,
		"threshold", s.config.Threshold,
		"cache", s.config.CacheDir != "")
	return nil
}

// Close releases the worker pool, the cache and the provider.
func (s *System) Close() error {
	if s.store != nil {
		s.store.Release()
	}

	var firstErr error
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("error closing embedding cache", "err", err)
			firstErr = err
		}
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing embedding provider", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *System) Config() *Config {
	return s.config
}

func (s *System) Engine() *match.Engine {
	return s.engine
}

func (s *System) Store() *catalogue.Store {
	return s.store
}

// Cache returns the embedding cache, or nil when caching is disabled.
func (s *System) Cache() storage.VectorRepository {
	return s.cache
}

// Seeded reports whether the catalogue file was created at startup.
func (s *System) Seeded() bool {
	return s.seeded
}

// NewServer returns an HTTP server bound to the engine.
func (s *System) NewServer(opts ...server.Option) (*server.Server, error) {
	base := []server.Option{
		server.WithMaxDescriptions(s.config.MaxDescriptions),
		server.WithLogger(s.base),
	}
	return server.New(s.engine, append(base, opts...)...)
}
