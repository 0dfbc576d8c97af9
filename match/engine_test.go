package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/soundbite/ai/mock"
	"github.com/poiesic/soundbite/catalogue"
	"github.com/poiesic/soundbite/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticCatalogue serves hand-built clips.
type staticCatalogue struct {
	mu    sync.Mutex
	clips []*core.Clip
}

func (s *staticCatalogue) Snapshot() []*core.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*core.Clip(nil), s.clips...)
}

func (s *staticCatalogue) Insert(_ context.Context, id string, phrases []string) error {
	normalized, err := core.NormalizePhrases(phrases)
	if err != nil {
		return err
	}
	vectors := make([][]float32, len(normalized))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips, &core.Clip{ID: id, Phrases: normalized, Vectors: vectors, Combined: []float32{1, 0}})
	return nil
}

func clip(id string, combined []float32, vectors ...[]float32) *core.Clip {
	phrases := make([]string, len(vectors))
	for i := range vectors {
		phrases[i] = fmt.Sprintf("%s phrase %d", id, i)
	}
	return &core.Clip{ID: id, Phrases: phrases, Vectors: vectors, Combined: combined}
}

// queryEmbedder returns the same vector for every text.
func queryEmbedder(vec []float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return core.CloneVector(vec), nil
	}
	return m
}

func newEngine(t *testing.T, cat Catalogue, embedder *mock.MockEmbedder, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(cat, embedder, opts...)
	require.NoError(t, err)
	return engine
}

func mustMatch(t *testing.T, e *Engine, text string, method core.Method) *core.Decision {
	t.Helper()
	d, err := e.Match(context.Background(), text, method)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

// loadStore builds a catalogue.Store from entries.
func loadStore(t *testing.T, embedder *mock.MockEmbedder, entries []catalogue.Entry) *catalogue.Store {
	t.Helper()
	store, err := catalogue.NewStore(embedder, catalogue.WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(store.Release)
	require.NoError(t, store.Load(context.Background(), entries))
	return store
}

func TestNewEngine(t *testing.T) {
	t.Run("requires catalogue", func(t *testing.T) {
		_, err := NewEngine(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrCatalogueRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewEngine(&staticCatalogue{}, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		e := newEngine(t, &staticCatalogue{}, mock.NewMockEmbedder())
		assert.Equal(t, DefaultThreshold, e.Threshold())
		assert.False(t, e.Verbose())
	})

	t.Run("invalid initial threshold", func(t *testing.T) {
		_, err := NewEngine(&staticCatalogue{}, mock.NewMockEmbedder(), WithThreshold(2))
		assert.ErrorIs(t, err, core.ErrInvalidThreshold)
	})
}

func TestMatch_BlankQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{1, 0}, []float32{1, 0})}}
	e := newEngine(t, cat, embedder, WithVerbose(true))

	for _, method := range core.Methods {
		for _, text := range []string{"", " ", "\t\n  "} {
			t.Run(fmt.Sprintf("%s/%q", method, text), func(t *testing.T) {
				d := mustMatch(t, e, text, method)
				assert.Equal(t, core.StatusError, d.Status())
				assert.Zero(t, d.Confidence)
				assert.Equal(t, method, d.Method)
				assert.Equal(t, EmptyQueryMessage, d.Message)
				reason, ok := d.FailureReason()
				assert.True(t, ok)
				assert.Equal(t, core.ErrEmptyQuery.Error(), reason)
				assert.Nil(t, d.Scores)
			})
		}
	}
	assert.Equal(t, 0, embedder.CallCount(), "blank queries never reach the embedder")
}

func TestMatch_UnknownMethod(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	e := newEngine(t, &staticCatalogue{}, embedder)

	d, err := e.Match(context.Background(), "hello", core.Method("fuzzy"))
	require.Error(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
	assert.Contains(t, err.Error(), "individual, combined, hybrid, max")
	assert.Equal(t, 0, embedder.CallCount())
}

func TestMatch_EmptyMethodIsHybrid(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{1, 0}, []float32{1, 0})}}
	e := newEngine(t, cat, queryEmbedder([]float32{1, 0}))

	d := mustMatch(t, e, "hello", "")
	assert.Equal(t, core.MethodHybrid, d.Method)
}

func TestMatch_GreetByeScenario(t *testing.T) {
	embedder := mock.NewTableEmbedder(map[string][]float32{
		"hello":           {1, 0, 0},
		"hello there":     {1, 0, 0},
		"hi":              {0.8, 0.6, 0},
		"hello there hi":  {0.8, 0.6, 0},
		"goodbye":         {0, 0, 1},
		"see you":         {0, 0.6, 0.8},
		"goodbye see you": {0, 0.6, 0.8},
	})
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "greet.ogg", Phrases: []string{"hello there", "hi"}},
		{ID: "bye.ogg", Phrases: []string{"goodbye", "see you"}},
	})
	e := newEngine(t, store, embedder, WithThreshold(0.7), WithVerbose(true))

	d := mustMatch(t, e, "hello", core.MethodIndividual)
	assert.Equal(t, core.StatusSuccess, d.Status())
	id, ok := d.Matched()
	require.True(t, ok)
	assert.Equal(t, "greet.ogg", id)
	assert.InDelta(t, 1.0, d.Confidence, 1e-9)
	assert.Equal(t, "match found with confidence 1.000 using method individual", d.Message)
	_, hasBest := d.BestCandidate()
	assert.False(t, hasBest, "success does not expose a best candidate hint")

	bye, ok := d.Scores.Get("bye.ogg")
	require.True(t, ok)
	assert.InDelta(t, 0.0, bye, 1e-9)

	greet := d.Details.Individual["greet.ogg"]
	assert.Equal(t, []string{"hello there", "hi"}, greet.Phrases)
	assert.Equal(t, 0, greet.BestPhrase)
	assert.InDelta(t, 0.8, greet.Scores[1], 1e-6)

	combined := mustMatch(t, e, "hello", core.MethodCombined)
	assert.Equal(t, core.StatusSuccess, combined.Status())
	assert.InDelta(t, 0.8, combined.Confidence, 1e-6)
}

func TestMatch_OrthogonalScenario(t *testing.T) {
	embedder := mock.NewOrthogonalEmbedder(16)
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "greet.ogg", Phrases: []string{"hello there", "hi"}},
		{ID: "bye.ogg", Phrases: []string{"goodbye", "see you"}},
	})
	e := newEngine(t, store, embedder, WithThreshold(0.7), WithVerbose(true))

	ind := mustMatch(t, e, "hi", core.MethodIndividual)
	score, ok := ind.Scores.Get("greet.ogg")
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)
	id, _ := ind.Matched()
	assert.Equal(t, "greet.ogg", id)

	comb := mustMatch(t, e, "hi", core.MethodCombined)
	score, ok = comb.Scores.Get("greet.ogg")
	require.True(t, ok)
	assert.Less(t, score, 1.0)
	assert.Equal(t, core.StatusNoMatch, comb.Status())
}

func TestIndividualScoreIsMaxOfPhraseScores(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "a.ogg", Phrases: []string{"alpha", "beta", "gamma"}},
		{ID: "b.ogg", Phrases: []string{"delta"}},
		{ID: "c.ogg", Phrases: []string{"epsilon", "zeta"}},
	})
	e := newEngine(t, store, embedder, WithVerbose(true))

	for _, query := range []string{"alpha", "something else", "zeta delta"} {
		d := mustMatch(t, e, query, core.MethodIndividual)
		for _, cs := range d.Scores {
			detail := d.Details.Individual[cs.ClipID]
			require.NotEmpty(t, detail.Scores)
			maxScore := math.Inf(-1)
			for _, s := range detail.Scores {
				assert.LessOrEqual(t, s, cs.Score)
				maxScore = math.Max(maxScore, s)
			}
			assert.Equal(t, maxScore, cs.Score)
			assert.Equal(t, maxScore, detail.MaxScore)
			assert.Equal(t, maxScore, detail.Scores[detail.BestPhrase])
		}
	}
}

func TestHybridScoreIsWeightedBlend(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "a.ogg", Phrases: []string{"alpha", "beta"}},
		{ID: "b.ogg", Phrases: []string{"gamma"}},
		{ID: "c.ogg", Phrases: []string{"delta", "epsilon", "zeta"}},
	})
	e := newEngine(t, store, embedder, WithVerbose(true))

	for _, query := range []string{"alpha", "gamma ray", "nothing alike"} {
		d := mustMatch(t, e, query, core.MethodHybrid)
		require.NotNil(t, d.Details)
		require.NotNil(t, d.Details.Hybrid)
		breakdown := d.Details.Hybrid
		assert.Equal(t, 0.7, breakdown.IndividualWeight)
		assert.Equal(t, 0.3, breakdown.CombinedWeight)

		ind := mustMatch(t, e, query, core.MethodIndividual)
		comb := mustMatch(t, e, query, core.MethodCombined)
		require.Len(t, d.Scores, 3)
		for _, cs := range d.Scores {
			i, ok := ind.Scores.Get(cs.ClipID)
			require.True(t, ok)
			c, ok := comb.Scores.Get(cs.ClipID)
			require.True(t, ok)
			assert.InDelta(t, 0.7*i+0.3*c, cs.Score, 1e-6)

			bi, _ := breakdown.Individual.Get(cs.ClipID)
			bc, _ := breakdown.Combined.Get(cs.ClipID)
			assert.Equal(t, i, bi)
			assert.Equal(t, c, bc)
		}
	}
}

func TestMatch_EmptyCatalogue(t *testing.T) {
	e := newEngine(t, &staticCatalogue{}, queryEmbedder([]float32{1, 0}), WithThreshold(0), WithVerbose(true))

	for _, method := range core.Methods {
		t.Run(string(method), func(t *testing.T) {
			d := mustMatch(t, e, "hello", method)
			assert.Equal(t, core.StatusNoMatch, d.Status())
			assert.Zero(t, d.Confidence)
			_, ok := d.BestCandidate()
			assert.False(t, ok)
			assert.Empty(t, d.Scores)
		})
	}
}

func TestMatch_TiesKeepFirstClip(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{
		clip("first.ogg", []float32{1, 0}, []float32{1, 0}),
		clip("second.ogg", []float32{1, 0}, []float32{1, 0}),
	}}
	e := newEngine(t, cat, queryEmbedder([]float32{1, 0}))

	for _, method := range core.Methods {
		t.Run(string(method), func(t *testing.T) {
			id, ok := mustMatch(t, e, "q", method).Matched()
			require.True(t, ok)
			assert.Equal(t, "first.ogg", id)
		})
	}
}

func TestMatch_NonPositiveScores(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{
		clip("opposite.ogg", []float32{-1, 0}, []float32{-1, 0}),
		clip("orthogonal.ogg", []float32{0, 1}, []float32{0, 1}),
	}}
	e := newEngine(t, cat, queryEmbedder([]float32{1, 0}), WithThreshold(0), WithVerbose(true))

	t.Run("individual has no candidate", func(t *testing.T) {
		d := mustMatch(t, e, "q", core.MethodIndividual)
		assert.Equal(t, core.StatusNoMatch, d.Status())
		_, ok := d.BestCandidate()
		assert.False(t, ok)
		score, _ := d.Scores.Get("opposite.ogg")
		assert.InDelta(t, -1.0, score, 1e-9, "scores are not clamped")
	})

	t.Run("combined has no candidate", func(t *testing.T) {
		d := mustMatch(t, e, "q", core.MethodCombined)
		assert.Equal(t, core.StatusNoMatch, d.Status())
	})

	t.Run("hybrid keeps its best clip", func(t *testing.T) {
		d := mustMatch(t, e, "q", core.MethodHybrid)
		id, ok := d.Matched()
		require.True(t, ok, "zero reaches a zero threshold")
		assert.Equal(t, "orthogonal.ogg", id)
	})
}

func TestMatch_Max(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		clip       *core.Clip
		wantStatus core.Status
		wantUsed   string
		wantInd    *float64
		wantComb   *float64
		wantConf   float64
	}{
		{
			name:       "individual only valid",
			threshold:  0.7,
			clip:       clip("a.ogg", []float32{0, 1}, []float32{1, 0}, []float32{0, 1}),
			wantStatus: core.StatusSuccess,
			wantUsed:   UsedIndividualOnly,
			wantComb:   ptr(0),
			wantConf:   1,
		},
		{
			name:       "combined only valid",
			threshold:  0.7,
			clip:       clip("a.ogg", []float32{1, 0}, []float32{0, 1}, []float32{0, 1}),
			wantStatus: core.StatusSuccess,
			wantUsed:   UsedCombinedOnly,
			wantInd:    ptr(0),
			wantConf:   1,
		},
		{
			name:       "individual better",
			threshold:  0.7,
			clip:       clip("a.ogg", []float32{0.8, 0.6}, []float32{1, 0}),
			wantStatus: core.StatusSuccess,
			wantUsed:   UsedIndividualBetter,
			wantComb:   ptr(0.8),
			wantConf:   1,
		},
		{
			name:       "combined better with both rejected",
			threshold:  0.9,
			clip:       clip("a.ogg", []float32{0.8, 0.6}, []float32{0.6, 0.8}),
			wantStatus: core.StatusNoMatch,
			wantUsed:   UsedCombinedBetter,
			wantInd:    ptr(0.6),
			wantConf:   0.8,
		},
		{
			name:       "tie goes to individual",
			threshold:  0.5,
			clip:       clip("a.ogg", []float32{1, 0}, []float32{1, 0}),
			wantStatus: core.StatusSuccess,
			wantUsed:   UsedIndividualBetter,
			wantComb:   ptr(1),
			wantConf:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &staticCatalogue{clips: []*core.Clip{tt.clip}}
			e := newEngine(t, cat, queryEmbedder([]float32{1, 0}), WithThreshold(tt.threshold))

			d := mustMatch(t, e, "q", core.MethodMax)
			assert.Equal(t, tt.wantStatus, d.Status())
			assert.Equal(t, core.MethodMax, d.Method)
			assert.Equal(t, tt.wantUsed, d.MethodUsed)
			assert.InDelta(t, tt.wantConf, d.Confidence, 1e-6)
			require.NotNil(t, d.ComparedWith)
			if tt.wantInd != nil {
				require.NotNil(t, d.ComparedWith.IndividualScore)
				assert.Nil(t, d.ComparedWith.CombinedScore)
				assert.InDelta(t, *tt.wantInd, *d.ComparedWith.IndividualScore, 1e-6)
			}
			if tt.wantComb != nil {
				require.NotNil(t, d.ComparedWith.CombinedScore)
				assert.Nil(t, d.ComparedWith.IndividualScore)
				assert.InDelta(t, *tt.wantComb, *d.ComparedWith.CombinedScore, 1e-6)
			}
		})
	}
}

func ptr(v float64) *float64 { return &v }

func TestMaxNeverRejectsWhenASubStrategyAccepts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "a.ogg", Phrases: []string{"alpha", "beta"}},
		{ID: "b.ogg", Phrases: []string{"gamma", "delta"}},
	})

	for _, threshold := range []float64{0, 0.25, 0.5, 0.75, 0.8, 0.9, 1} {
		e := newEngine(t, store, embedder, WithThreshold(threshold))
		for _, query := range []string{"alpha", "gamma", "alpha beta", "unrelated text"} {
			ind := mustMatch(t, e, query, core.MethodIndividual)
			comb := mustMatch(t, e, query, core.MethodCombined)
			best := mustMatch(t, e, query, core.MethodMax)
			if ind.Status() == core.StatusSuccess || comb.Status() == core.StatusSuccess {
				assert.Equal(t, core.StatusSuccess, best.Status(), "threshold %v query %q", threshold, query)
			}
		}
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "a.ogg", Phrases: []string{"alpha", "beta"}},
		{ID: "b.ogg", Phrases: []string{"gamma"}},
	})
	e := newEngine(t, store, embedder)

	for _, method := range core.Methods {
		for _, query := range []string{"alpha", "gamma", "other"} {
			rejected := false
			for _, threshold := range []float64{0, 0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 0.95, 1} {
				require.True(t, e.SetThreshold(threshold))
				d := mustMatch(t, e, query, method)
				if rejected {
					assert.Equal(t, core.StatusNoMatch, d.Status(), "%s %q at %v", method, query, threshold)
				}
				if d.Status() == core.StatusNoMatch {
					rejected = true
				}
			}
		}
	}
}

func TestSetThreshold(t *testing.T) {
	e := newEngine(t, &staticCatalogue{}, mock.NewMockEmbedder(), WithThreshold(0.6))

	for _, v := range []float64{1.5, -0.1, math.NaN(), math.Inf(1)} {
		assert.False(t, e.SetThreshold(v), "value %v", v)
		assert.Equal(t, 0.6, e.Threshold())
	}

	assert.True(t, e.SetThreshold(0))
	assert.Equal(t, 0.0, e.Threshold())
	assert.True(t, e.SetThreshold(1))
	assert.Equal(t, 1.0, e.Threshold())
}

func TestSetThresholdAffectsNextQuery(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{0.8, 0.6}, []float32{0.8, 0.6})}}
	e := newEngine(t, cat, queryEmbedder([]float32{1, 0}), WithThreshold(0.9))

	d := mustMatch(t, e, "q", core.MethodIndividual)
	assert.Equal(t, core.StatusNoMatch, d.Status())
	best, ok := d.BestCandidate()
	require.True(t, ok)
	assert.Equal(t, "a.ogg", best)
	assert.Equal(t, "no sufficiently good match. best score: 0.800 with method individual", d.Message)

	require.True(t, e.SetThreshold(0.5))
	d = mustMatch(t, e, "q", core.MethodIndividual)
	assert.Equal(t, core.StatusSuccess, d.Status())
}

func TestInsertClip(t *testing.T) {
	embedder := mock.NewOrthogonalEmbedder(16)
	store := loadStore(t, embedder, []catalogue.Entry{{ID: "greet.ogg", Phrases: []string{"hello"}}})
	e := newEngine(t, store, embedder, WithVerbose(true))

	assert.False(t, e.InsertClip(context.Background(), "bye.ogg", []string{"", "  "}))
	assert.False(t, e.InsertClip(context.Background(), "bye.ogg", nil))
	assert.Equal(t, []string{"greet.ogg"}, e.Stats().ClipIDs)

	require.True(t, e.InsertClip(context.Background(), "bye.ogg", []string{" goodbye "}))
	d := mustMatch(t, e, "goodbye", core.MethodIndividual)
	id, ok := d.Matched()
	require.True(t, ok)
	assert.Equal(t, "bye.ogg", id)
}

func TestStats(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{
		clip("a.ogg", []float32{1, 0}, []float32{1, 0}),
		clip("b.ogg", []float32{0, 1}, []float32{0, 1}),
	}}
	e := newEngine(t, cat, mock.NewMockEmbedder(), WithModelName("all-minilm"), WithThreshold(0.55))

	stats := e.Stats()
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, "all-minilm", stats.Model)
	assert.Equal(t, 0.55, stats.Threshold)
	assert.Equal(t, []string{"a.ogg", "b.ogg"}, stats.ClipIDs)
}

func TestVerbosity(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{1, 0}, []float32{1, 0})}}

	quiet := newEngine(t, cat, queryEmbedder([]float32{1, 0}))
	loud := newEngine(t, cat, queryEmbedder([]float32{1, 0}), WithVerbose(true))

	for _, method := range core.Methods {
		t.Run(string(method), func(t *testing.T) {
			q := mustMatch(t, quiet, "q", method)
			assert.Nil(t, q.Scores)
			assert.Nil(t, q.Details)

			l := mustMatch(t, loud, "q", method)
			assert.Len(t, l.Scores, 1)
			assert.Equal(t, q.Confidence, l.Confidence)
			assert.Equal(t, q.Result, l.Result)
		})
	}

	assert.Nil(t, mustMatch(t, loud, "q", core.MethodCombined).Details, "combined has no diagnostics")
	assert.NotNil(t, mustMatch(t, loud, "q", core.MethodIndividual).Details.Individual)
	assert.NotNil(t, mustMatch(t, loud, "q", core.MethodHybrid).Details.Hybrid)
}

func TestMatch_Failures(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{1, 0}, []float32{1, 0})}}

	t.Run("embedding failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("connection refused")
		}
		e := newEngine(t, cat, embedder)

		d := mustMatch(t, e, "hello", core.MethodHybrid)
		assert.Equal(t, core.StatusError, d.Status())
		assert.Zero(t, d.Confidence)
		assert.Contains(t, d.Message, "internal error: ")
		reason, ok := d.FailureReason()
		require.True(t, ok)
		assert.Contains(t, reason, "connection refused")
	})

	t.Run("empty vector", func(t *testing.T) {
		e := newEngine(t, cat, queryEmbedder([]float32{}))
		d := mustMatch(t, e, "hello", core.MethodIndividual)
		assert.Equal(t, core.StatusError, d.Status())
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		e := newEngine(t, cat, queryEmbedder([]float32{1, 0, 0}))
		d := mustMatch(t, e, "hello", core.MethodCombined)
		assert.Equal(t, core.StatusError, d.Status())
		reason, _ := d.FailureReason()
		assert.Contains(t, reason, core.ErrDimensionMismatch.Error())
	})

	t.Run("panic is recovered", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			panic("provider exploded")
		}
		e := newEngine(t, cat, embedder)

		d := mustMatch(t, e, "hello", core.MethodMax)
		assert.Equal(t, core.StatusError, d.Status())
		assert.Equal(t, core.MethodMax, d.Method)
		assert.Equal(t, "internal error: provider exploded", d.Message)
	})
}

type recordingMonitor struct {
	mu       sync.Mutex
	events   []string
	decision *core.Decision
}

func (r *recordingMonitor) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingMonitor) Start(query string, method core.Method) {
	r.add("start:" + query + ":" + string(method))
}

func (r *recordingMonitor) AfterEmbedding(vector []float32) {
	r.add(fmt.Sprintf("embedding:%d", len(vector)))
}

func (r *recordingMonitor) Scored(method core.Method, scores core.ScoreTable) {
	r.add(fmt.Sprintf("scored:%s:%d", method, len(scores)))
}

func (r *recordingMonitor) Decided(decision *core.Decision) {
	r.add("decided:" + string(decision.Status()))
	r.mu.Lock()
	r.decision = decision
	r.mu.Unlock()
}

func TestMonitor(t *testing.T) {
	cat := &staticCatalogue{clips: []*core.Clip{clip("a.ogg", []float32{1, 0}, []float32{1, 0})}}
	monitor := &recordingMonitor{}
	e := newEngine(t, cat, queryEmbedder([]float32{1, 0}), WithMonitor(monitor))

	d := mustMatch(t, e, "q", core.MethodMax)
	assert.Equal(t, []string{
		"start:q:max",
		"embedding:2",
		"scored:individual:1",
		"scored:combined:1",
		"decided:success",
	}, monitor.events)
	assert.Same(t, d, monitor.decision)

	monitor.events = nil
	mustMatch(t, e, " ", core.MethodHybrid)
	assert.Equal(t, []string{"start: :hybrid", "decided:error"}, monitor.events)
}

func TestConcurrentQueriesAndUpdates(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := loadStore(t, embedder, []catalogue.Entry{
		{ID: "a.ogg", Phrases: []string{"alpha"}},
		{ID: "b.ogg", Phrases: []string{"beta"}},
	})
	e := newEngine(t, store, embedder)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			d, err := e.Match(context.Background(), "alpha", core.Methods[i%len(core.Methods)])
			assert.NoError(t, err)
			assert.NotEqual(t, core.StatusError, d.Status())
		}()
		go func() {
			defer wg.Done()
			assert.True(t, e.SetThreshold(float64(i)/10))
		}()
		go func() {
			defer wg.Done()
			assert.True(t, e.InsertClip(context.Background(), fmt.Sprintf("clip-%d.ogg", i), []string{"phrase"}))
		}()
	}
	wg.Wait()
	assert.Equal(t, 12, e.Stats().Count)
}
