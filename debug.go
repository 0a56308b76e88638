package flipbook

import (
	"fmt"
	"os"
)

// TickStats holds the counters of one Engine.Update.
type TickStats struct {
	Phase      Phase
	Cursor     float64
	Lookups    int  // cache lookups
	Draws      int  // frames composited
	Skipped    int  // lookups that found no decoded frame
	Culled     bool // container outside the viewport, no work done
	NoGeometry bool // container not laid out yet
}

// SetDebugMode enables or disables debug mode. When enabled, per-tick stats
// and phase changes are printed to stderr and Draw renders the debug overlay.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// debugLog prints tick stats to stderr.
func (e *Engine) debugLog(stats TickStats) {
	if !e.debug {
		return
	}
	st := e.cache.State()
	switch {
	case stats.NoGeometry:
		_, _ = fmt.Fprintf(os.Stderr, "[flipbook] %s | waiting for layout | loaded %d/%d\n",
			stats.Phase, st.Loaded, st.Total)
	case stats.Culled:
		_, _ = fmt.Fprintf(os.Stderr, "[flipbook] %s | culled | loaded %d/%d\n",
			stats.Phase, st.Loaded, st.Total)
	default:
		_, _ = fmt.Fprintf(os.Stderr,
			"[flipbook] %s | cursor: %.3f | lookups: %d | draws: %d | skipped: %d | loaded %d/%d\n",
			stats.Phase, stats.Cursor, stats.Lookups, stats.Draws, stats.Skipped, st.Loaded, st.Total)
	}
}
