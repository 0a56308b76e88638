package flipbook

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultWheelStep = 100.0
	defaultArrowStep = 12.0
	defaultSmoothing = 0.05
	settleDistance   = 0.5
)

// ScrollView is a virtual scrolling page hosting one scroll-linked
// container. It turns wheel, keyboard and touch input into a scroll offset
// and reports the container's viewport-relative geometry, making it a
// GeometrySource for Engine and ScrubController.
//
// The page is laid out as ContainerTop pixels of content, the container
// (ContainerViewports viewport heights tall), then TrailingHeight pixels.
type ScrollView struct {
	ContainerTop       float64
	ContainerViewports float64
	TrailingHeight     float64

	// Smoothing is the fraction of the remaining distance the rendered
	// offset covers per tick. 1 disables smoothing.
	Smoothing float64
	// WheelStep is the scroll distance of one wheel notch in pixels.
	WheelStep float64
	// ArrowStep is the scroll distance per tick while an arrow key is held.
	ArrowStep float64
	// ManualInput stops Update from reading ebiten input. Scrolling then
	// happens only through ScrollBy, ScrollTo, Jump and injected events.
	ManualInput bool

	viewportW, viewportH float64

	target, current float64

	tween *gween.Tween

	injectQueue []float64

	touchID     ebiten.TouchID
	touching    bool
	lastTouchY  int
	touchIDsBuf []ebiten.TouchID
}

// NewScrollView creates a page whose container starts at containerTop and is
// containerViewports viewport heights tall.
func NewScrollView(containerTop, containerViewports float64) *ScrollView {
	return &ScrollView{
		ContainerTop:       containerTop,
		ContainerViewports: containerViewports,
		Smoothing:          defaultSmoothing,
		WheelStep:          defaultWheelStep,
		ArrowStep:          defaultArrowStep,
	}
}

// SetViewport records the viewport size in logical pixels.
func (v *ScrollView) SetViewport(w, h float64) {
	v.viewportW, v.viewportH = w, h
	v.target = v.clampOffset(v.target)
	v.current = v.clampOffset(v.current)
}

// ContainerHeight returns the rendered container height.
func (v *ScrollView) ContainerHeight() float64 {
	return v.ContainerViewports * v.viewportH
}

// ContentHeight returns the full page height.
func (v *ScrollView) ContentHeight() float64 {
	return v.ContainerTop + v.ContainerHeight() + v.TrailingHeight
}

// MaxOffset returns the largest valid scroll offset.
func (v *ScrollView) MaxOffset() float64 {
	return math.Max(0, v.ContentHeight()-v.viewportH)
}

// Offset returns the rendered scroll offset.
func (v *ScrollView) Offset() float64 {
	return v.current
}

// Geometry implements GeometrySource. It is not ok until a viewport is set.
func (v *ScrollView) Geometry() (Geometry, float64, bool) {
	if v.viewportH <= 0 {
		return Geometry{}, 0, false
	}
	top := v.ContainerTop - v.current
	h := v.ContainerHeight()
	return Geometry{Top: top, Bottom: top + h, Height: h}, v.viewportH, true
}

// PageProgress returns how far the whole page is scrolled, in [0, 1].
func (v *ScrollView) PageProgress() float64 {
	maxOff := v.MaxOffset()
	if maxOff <= 0 {
		return 0
	}
	return clamp(v.current/maxOff, 0, 1)
}

// ScrollBy moves the scroll target by dy pixels and cancels any ScrollTo.
func (v *ScrollView) ScrollBy(dy float64) {
	v.tween = nil
	v.target = v.clampOffset(v.target + dy)
}

// ScrollTo animates the offset to y over duration seconds. A nil fn means
// outCubic.
func (v *ScrollView) ScrollTo(y float64, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.OutCubic
	}
	y = v.clampOffset(y)
	if duration <= 0 {
		v.Jump(y)
		return
	}
	v.tween = gween.New(float32(v.current), float32(y), duration, fn)
	v.target = y
}

// Jump moves the offset to y immediately, without smoothing.
func (v *ScrollView) Jump(y float64) {
	v.tween = nil
	v.target = v.clampOffset(y)
	v.current = v.target
}

// Update reads input (unless ManualInput) and advances smoothing by one
// tick of 1/TPS seconds.
func (v *ScrollView) Update() {
	if !v.ManualInput {
		v.readInput()
	}
	v.advance(float32(1.0 / float64(ebiten.TPS())))
}

// advance consumes one injected event, steps a running ScrollTo, then moves
// the rendered offset toward the target.
func (v *ScrollView) advance(dt float32) {
	v.processInjected()

	if v.tween != nil {
		val, finished := v.tween.Update(dt)
		v.current = v.clampOffset(float64(val))
		if finished {
			v.tween = nil
			v.current = v.target
		}
		return
	}

	alpha := v.Smoothing
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	diff := v.target - v.current
	if math.Abs(diff) < settleDistance {
		v.current = v.target
		return
	}
	v.current += diff * alpha
}

func (v *ScrollView) readInput() {
	_, wy := ebiten.Wheel()
	if wy != 0 {
		v.ScrollBy(-wy * v.WheelStep)
	}

	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		v.ScrollBy(v.ArrowStep)
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		v.ScrollBy(-v.ArrowStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.ScrollBy(v.viewportH * 0.9)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		v.ScrollBy(-v.viewportH * 0.9)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		v.ScrollTo(0, 0.6, ease.OutCubic)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		v.ScrollTo(v.MaxOffset(), 0.6, ease.OutCubic)
	}

	v.readTouch()
}

// readTouch follows the first active touch; dragging up scrolls down.
func (v *ScrollView) readTouch() {
	v.touchIDsBuf = ebiten.AppendTouchIDs(v.touchIDsBuf[:0])
	if v.touching {
		for _, id := range v.touchIDsBuf {
			if id == v.touchID {
				_, y := ebiten.TouchPosition(id)
				v.ScrollBy(float64(v.lastTouchY - y))
				v.lastTouchY = y
				return
			}
		}
		v.touching = false
	}
	if len(v.touchIDsBuf) > 0 {
		v.touchID = v.touchIDsBuf[0]
		_, v.lastTouchY = ebiten.TouchPosition(v.touchID)
		v.touching = true
	}
}

func (v *ScrollView) clampOffset(y float64) float64 {
	return clamp(y, 0, v.MaxOffset())
}
