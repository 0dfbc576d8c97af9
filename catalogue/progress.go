package catalogue

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many clips of a Load have been embedded.
// A nil tracker is valid and reports nothing.
type ProgressTracker struct {
	mu             sync.Mutex
	writer         io.Writer
	reportInterval int
	total          int
	current        int
	lastReported   int
	startTime      time.Time
	started        bool
}

// NewProgressTracker creates a tracker that writes to w every reportInterval
// clips.
func NewProgressTracker(w io.Writer, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         w,
		reportInterval: reportInterval,
	}
}

// Start resets the tracker for a load of total clips.
func (p *ProgressTracker) Start(total int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.lastReported = 0
	p.startTime = time.Now()
	p.started = true
}

// Increment records delta more clips as embedded. Progress never exceeds the
// total.
func (p *ProgressTracker) Increment(delta int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = min(p.current+delta, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final line. The count is left as is so a failed load
// shows how far it got.
func (p *ProgressTracker) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rEmbedded %d/%d clips (%.1f%%) - %.1f clips/s",
		p.current, p.total, percentage, rate)
}
