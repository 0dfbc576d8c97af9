package match

import (
	"sync"

	"github.com/poiesic/soundbite/core"
)

// DefaultThreshold is the minimum confidence for a successful match.
const DefaultThreshold = 0.7

// Threshold holds the acceptance threshold shared by all queries.
// It is safe for concurrent use.
type Threshold struct {
	mu    sync.RWMutex
	value float64
}

// NewThreshold creates a holder with an initial value in [0, 1].
func NewThreshold(value float64) (*Threshold, error) {
	if err := core.ValidateThreshold(value); err != nil {
		return nil, err
	}
	return &Threshold{value: value}, nil
}

// Get returns the current threshold.
func (t *Threshold) Get() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set replaces the threshold. Values outside [0, 1] are rejected with
// core.ErrInvalidThreshold and the prior value is kept.
func (t *Threshold) Set(value float64) error {
	if err := core.ValidateThreshold(value); err != nil {
		return err
	}
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
	return nil
}
