package flipbook

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	barTweenSeconds    = 0.3
	defaultRevealDelay = 0.4
)

var (
	overlayBackground = color.RGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}
	overlayTrack      = color.RGBA{R: 0x14, G: 0x14, B: 0x14, A: 0xff}
	overlayBar        = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

// LoadingOverlay is a full-screen progress bar shown while frames load. The
// bar eases toward the load percentage; once loading is done the overlay
// fades out over RevealDelay seconds.
type LoadingOverlay struct {
	// RevealDelay is the fade-out length in seconds.
	RevealDelay float32

	state   LoadState
	shown   float32
	barTw   *gween.Tween
	fadeTw  *gween.Tween
	alpha   float32
	visible bool
}

// NewLoadingOverlay creates a visible overlay at 0%.
func NewLoadingOverlay() *LoadingOverlay {
	return &LoadingOverlay{RevealDelay: defaultRevealDelay, alpha: 1, visible: true}
}

// Visible reports whether the overlay still covers the screen.
func (o *LoadingOverlay) Visible() bool {
	return o.visible
}

// Alpha returns the current overlay opacity in [0, 1].
func (o *LoadingOverlay) Alpha() float32 {
	return o.alpha
}

// Shown returns the percentage the bar currently displays.
func (o *LoadingOverlay) Shown() float32 {
	return o.shown
}

// Update advances the overlay by dt seconds toward st.
func (o *LoadingOverlay) Update(st LoadState, dt float32) {
	if !o.visible {
		return
	}
	if st.Percent() != o.state.Percent() {
		o.barTw = gween.New(o.shown, float32(st.Percent()), barTweenSeconds, ease.OutQuad)
	}
	o.state = st
	if o.barTw != nil {
		v, finished := o.barTw.Update(dt)
		o.shown = v
		if finished {
			o.barTw = nil
		}
	}

	if !st.Done() {
		return
	}
	if o.fadeTw == nil {
		if o.RevealDelay <= 0 {
			o.alpha, o.visible = 0, false
			return
		}
		o.fadeTw = gween.New(1, 0, o.RevealDelay, ease.Linear)
	}
	v, finished := o.fadeTw.Update(dt)
	o.alpha = v
	if finished {
		o.alpha, o.visible = 0, false
	}
}

// Draw paints the overlay over screen.
func (o *LoadingOverlay) Draw(screen *ebiten.Image) {
	if !o.visible {
		return
	}
	b := screen.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	vector.FillRect(screen, 0, 0, w, h, fade(overlayBackground, o.alpha), false)

	barW := min(w*0.6, 320)
	x, y := (w-barW)/2, h/2
	vector.FillRect(screen, x, y, barW, 2, fade(overlayTrack, o.alpha), false)
	vector.FillRect(screen, x, y, barW*o.shown/100, 2, fade(overlayBar, o.alpha), false)
	if o.alpha == 1 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("LOADING  %d%%", o.state.Percent()), int(x), int(y)+12)
	}
}

func fade(c color.RGBA, alpha float32) color.RGBA {
	a := func(v uint8) uint8 { return uint8(float32(v) * alpha) }
	return color.RGBA{R: a(c.R), G: a(c.G), B: a(c.B), A: a(c.A)}
}
