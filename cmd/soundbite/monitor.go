package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/soundbite/core"
	"github.com/poiesic/soundbite/match"
)

// traceMonitor prints each stage of a query with the time elapsed since Start.
// It traces one query at a time: Start resets the clock, so a monitor shared
// by concurrent queries would interleave their timings. The match command
// builds one per invocation.
type traceMonitor struct {
	mu      sync.Mutex
	w       io.Writer
	started time.Time
}

var _ match.Monitor = (*traceMonitor)(nil)

func newTraceMonitor(w io.Writer) *traceMonitor {
	return &traceMonitor{w: w}
}

func (m *traceMonitor) Start(query string, method core.Method) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = time.Now()
	fmt.Fprintf(m.w, "[trace] query %q method %s\n", query, method)
}

func (m *traceMonitor) AfterEmbedding(vector []float32) {
	m.printf("embedded query (dimension %d)", len(vector))
}

func (m *traceMonitor) Scored(method core.Method, scores core.ScoreTable) {
	m.printf("%s scored %d clips", method, len(scores))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cs := range scores {
		fmt.Fprintf(m.w, "[trace]   %-30s %0.4f\n", cs.ClipID, cs.Score)
	}
}

func (m *traceMonitor) Decided(decision *core.Decision) {
	m.printf("decided %s (confidence %.4f)", decision.Status(), decision.Confidence)
}

func (m *traceMonitor) printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	elapsed := time.Since(m.started).Round(time.Microsecond)
	fmt.Fprintf(m.w, "[trace] +%s "+format+"\n", append([]any{elapsed}, args...)...)
}
