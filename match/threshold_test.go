package match

import (
	"math"
	"sync"
	"testing"

	"github.com/poiesic/soundbite/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThreshold(t *testing.T) {
	th, err := NewThreshold(0.7)
	require.NoError(t, err)
	assert.Equal(t, 0.7, th.Get())

	_, err = NewThreshold(1.01)
	assert.ErrorIs(t, err, core.ErrInvalidThreshold)
}

func TestThresholdSet(t *testing.T) {
	th, err := NewThreshold(0.7)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"above range", 1.5, false},
		{"below range", -0.1, false},
		{"nan", math.NaN(), false},
		{"lower bound", 0, true},
		{"upper bound", 1, true},
		{"inside", 0.42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := th.Get()
			err := th.Set(tt.value)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.value, th.Get())
				return
			}
			assert.ErrorIs(t, err, core.ErrInvalidThreshold)
			assert.Equal(t, before, th.Get(), "rejected values leave the threshold unchanged")
		})
	}
}

func TestThresholdConcurrentAccess(t *testing.T) {
	th, err := NewThreshold(0.5)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = th.Set(float64(i%10) / 10)
		}()
		go func() {
			defer wg.Done()
			v := th.Get()
			assert.True(t, v >= 0 && v <= 1)
		}()
	}
	wg.Wait()
}
