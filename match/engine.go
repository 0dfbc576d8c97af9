package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/soundbite/ai"
	"github.com/poiesic/soundbite/core"
)

// Catalogue is the clip store the engine scores against.
type Catalogue interface {
	// Snapshot returns the clips in catalogue order.
	Snapshot() []*core.Clip

	// Insert adds or fully replaces a clip.
	Insert(ctx context.Context, id string, phrases []string) error
}

// Engine answers queries against a catalogue. It is safe for concurrent use.
type Engine struct {
	catalogue Catalogue
	embedder  ai.Embedder
	threshold *Threshold
	model     string
	verbose   bool
	monitor   Monitor
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithThreshold sets the initial acceptance threshold.
// Default is DefaultThreshold.
func WithThreshold(value float64) Option {
	return func(e *Engine) error {
		return e.threshold.Set(value)
	}
}

// WithVerbose attaches score tables and per-method diagnostics to every
// decision.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) error {
		e.verbose = verbose
		return nil
	}
}

// WithModelName sets the model name reported by Stats.
func WithModelName(model string) Option {
	return func(e *Engine) error {
		e.model = model
		return nil
	}
}

// WithMonitor installs hooks that observe every query.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine over catalogue that embeds queries with embedder.
func NewEngine(catalogue Catalogue, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if catalogue == nil {
		return nil, ErrCatalogueRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		catalogue: catalogue,
		embedder:  embedder,
		threshold: &Threshold{value: DefaultThreshold},
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "match-engine")
	return e, nil
}

// Match scores text with method and returns the decision. An empty method
// selects core.DefaultMethod. The only error is core.ErrUnknownMethod, returned
// before any work is done; every other failure is reported as a decision whose
// Result is core.Failure.
func (e *Engine) Match(ctx context.Context, text string, method core.Method) (*core.Decision, error) {
	if method == "" {
		method = core.DefaultMethod
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}
	return e.query(ctx, text, method), nil
}

func (e *Engine) query(ctx context.Context, text string, method core.Method) (decision *core.Decision) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovered from panic while matching", "method", method, "panic", r)
			reason := fmt.Sprint(r)
			decision = failure(method, "internal error: "+reason, reason)
		}
		e.monitor.Decided(decision)
	}()

	e.monitor.Start(text, method)

	text = strings.TrimSpace(text)
	if text == "" {
		return failure(method, EmptyQueryMessage, core.ErrEmptyQuery.Error())
	}

	vector, err := e.embedQuery(ctx, text)
	if err != nil {
		e.logger.Error("error embedding query", "method", method, "err", err)
		return failure(method, "internal error: "+err.Error(), err.Error())
	}
	e.monitor.AfterEmbedding(vector)

	clips := e.catalogue.Snapshot()
	for _, clip := range clips {
		if clip.Dim() != len(vector) {
			err := fmt.Errorf("%w: query has dimension %d, clip %q has %d",
				core.ErrDimensionMismatch, len(vector), clip.ID, clip.Dim())
			e.logger.Error("error scoring query", "err", err)
			return failure(method, "internal error: "+err.Error(), err.Error())
		}
	}

	threshold := e.threshold.Get()
	if method == core.MethodMax {
		ind := e.score(core.MethodIndividual, vector, clips)
		comb := e.score(core.MethodCombined, vector, clips)
		decision = formatMax(ind, comb, threshold, e.verbose)
	} else {
		decision = format(e.score(method, vector, clips), threshold, e.verbose)
	}

	e.logger.Debug("query decided",
		"method", method,
		"status", decision.Status(),
		"confidence", decision.Confidence,
		"threshold", threshold,
		"clips", len(clips))
	return decision
}

func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingFailure, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty vector", core.ErrEmbeddingFailure)
	}
	return vector, nil
}

func (e *Engine) score(method core.Method, vector []float32, clips []*core.Clip) candidate {
	c := scorers[method].score(vector, clips)
	e.monitor.Scored(method, c.scores)
	return c
}

// InsertClip adds or replaces a clip and reports whether it was stored.
// Rejected inserts leave the catalogue unchanged.
func (e *Engine) InsertClip(ctx context.Context, id string, phrases []string) bool {
	if err := e.catalogue.Insert(ctx, id, phrases); err != nil {
		e.logger.Warn("clip rejected", "clip", id, "err", err)
		return false
	}
	return true
}

// SetThreshold replaces the acceptance threshold and reports whether the
// value was in [0, 1]. Invalid values leave the threshold unchanged.
func (e *Engine) SetThreshold(value float64) bool {
	if err := e.threshold.Set(value); err != nil {
		e.logger.Warn("threshold rejected", "value", value, "err", err)
		return false
	}
	e.logger.Info("threshold updated", "value", value)
	return true
}

// Threshold returns the current acceptance threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold.Get()
}

// Verbose reports whether decisions carry score tables.
func (e *Engine) Verbose() bool {
	return e.verbose
}

// Stats summarises the catalogue and configuration.
func (e *Engine) Stats() core.Stats {
	clips := e.catalogue.Snapshot()
	ids := make([]string, len(clips))
	for i, clip := range clips {
		ids[i] = clip.ID
	}
	return core.Stats{
		Count:     len(clips),
		Model:     e.model,
		Threshold: e.threshold.Get(),
		ClipIDs:   ids,
	}
}
