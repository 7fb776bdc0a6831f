package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerLifecycle(t *testing.T) {
	s := NewSpinner("working")
	s.Start()
	s.Stop()
	// Stopping an already stopped spinner is a no-op, which the run
	// command relies on when the progress bar takes over mid-run.
	assert.NotPanics(t, func() { s.Stop() })
}

func TestProgressBar(t *testing.T) {
	bar := NewProgressBar(3, "Processing")
	bar.Set(1)
	bar.Set(3)
	assert.NotPanics(t, func() { bar.Finish() })
}
