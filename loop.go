package flipbook

import (
	"context"
	"time"
)

// DefaultTickInterval is the RunLoop cadence when none is given.
const DefaultTickInterval = time.Second / 60

// RunLoop ticks a mounted engine every interval until ctx is done or the
// engine is unmounted, for hosts that have no ebiten game loop. The before
// hooks run at the start of every tick on the loop goroutine, which makes
// them the place to move a ScrollView or step a TestRunner. The liveness
// flag is checked before and after the hooks, so no tick starts after
// Unmount returns. It returns ctx.Err() on cancellation and nil on unmount.
func RunLoop(ctx context.Context, e *Engine, interval time.Duration, before ...func()) error {
	if !e.Alive() {
		return nil
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	stop := e.done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			if !e.Alive() {
				return nil
			}
			for _, fn := range before {
				fn()
			}
			if !e.Alive() {
				return nil
			}
			if err := e.Update(); err != nil {
				return err
			}
			e.flushScreenshots()
		}
	}
}
