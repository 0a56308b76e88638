package flipbook

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// DrawDebugOverlay prints FPS, TPS, phase, cursor and load progress in the
// top-left corner of screen. Draw calls it when debug mode is on.
func (e *Engine) DrawDebugOverlay(screen *ebiten.Image) {
	st := e.cache.State()
	last := -1
	if e.comp != nil {
		last = e.comp.Last()
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nTPS: %.1f\nphase: %s\ncursor: %.2f (frame %d)\nloaded: %d%%",
		ebiten.ActualFPS(), ebiten.ActualTPS(), e.Phase(), e.Cursor(), last, st.Percent()))
}
