package catalogue

import (
	"bytes"
	"context"
	"testing"

	"github.com/poiesic/soundbite/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_Increment(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2)

	tracker.Start(4)
	tracker.Increment(1)
	assert.Empty(t, buf.String(), "below the interval nothing is reported")

	tracker.Increment(1)
	assert.Contains(t, buf.String(), "2/4")
	assert.Contains(t, buf.String(), "50.0%")

	tracker.Increment(2)
	tracker.Finish()
	assert.Contains(t, buf.String(), "4/4")
	assert.Contains(t, buf.String(), "100.0%")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1)

	tracker.Start(2)
	tracker.Increment(5)
	assert.Contains(t, buf.String(), "2/2")
	assert.NotContains(t, buf.String(), "5/2")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10)

	tracker.Start(0)
	tracker.Finish()
	assert.Contains(t, buf.String(), "0/0")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1)

	tracker.Increment(3)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_NilIsNoop(t *testing.T) {
	var tracker *ProgressTracker
	assert.NotPanics(t, func() {
		tracker.Start(3)
		tracker.Increment(1)
		tracker.Finish()
		_ = tracker.Elapsed()
	})
}

func TestStore_LoadReportsProgress(t *testing.T) {
	var buf bytes.Buffer
	store, err := NewStore(mock.NewMockEmbedder(),
		WithPoolSize(2),
		WithProgress(NewProgressTracker(&buf, 1)))
	require.NoError(t, err)
	defer store.Release()

	require.NoError(t, store.Load(context.Background(), []Entry{
		{ID: "a.ogg", Phrases: []string{"one"}},
		{ID: "b.ogg", Phrases: []string{"two"}},
		{ID: "c.ogg", Phrases: []string{"three"}},
	}))
	assert.Contains(t, buf.String(), "Embedded 3/3 clips")
}
