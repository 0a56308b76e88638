package flipbook

import (
	"image"
	"math"
	"time"
)

// Geometry is the scroll-linked container's box relative to the viewport.
// Top and Bottom are viewport-space Y coordinates; Height is the rendered
// container height. Geometry is read fresh every tick and never cached.
type Geometry struct {
	Top, Bottom, Height float64
}

// Visible reports whether any part of the container overlaps a viewport of
// the given height. A container touching the viewport edge only is hidden.
func (g Geometry) Visible(viewportHeight float64) bool {
	return g.Bottom > 0 && g.Top < viewportHeight
}

// GeometrySource supplies the container geometry and viewport height for the
// current tick. ok is false while the container has not been laid out yet.
type GeometrySource interface {
	Geometry() (g Geometry, viewportHeight float64, ok bool)
}

// StaticGeometry is a GeometrySource that always reports the same layout.
// Useful for fixed-size hosts and for driving an engine by hand.
type StaticGeometry struct {
	G              Geometry
	ViewportHeight float64
}

// Geometry implements GeometrySource.
func (s *StaticGeometry) Geometry() (Geometry, float64, bool) {
	if s.ViewportHeight <= 0 {
		return Geometry{}, 0, false
	}
	return s.G, s.ViewportHeight, true
}

// Phase is the playback phase of one mount.
type Phase uint8

const (
	PhasePriming      Phase = iota // frames still loading; frame 0 only, no scroll sampling
	PhaseIntroPlaying              // one-shot eased reveal toward frame 0
	PhaseScrollLinked              // scroll position drives the frame (terminal)
)

func (p Phase) String() string {
	switch p {
	case PhasePriming:
		return "priming"
	case PhaseIntroPlaying:
		return "intro"
	case PhaseScrollLinked:
		return "scroll"
	default:
		return "unknown"
	}
}

// Placement is where a frame lands on a surface, in surface pixels. X and Y
// may be negative when the frame is cropped.
type Placement struct {
	X, Y, W, H float64
}

// Rect returns the placement rounded to an integer rectangle.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(p.X)), int(math.Round(p.Y)),
		int(math.Round(p.X+p.W)), int(math.Round(p.Y+p.H)),
	)
}

// Clock supplies tick timestamps. The intro timeline reads it once per tick.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observer receives load progress and phase changes on the tick goroutine.
type Observer interface {
	OnProgress(state LoadState)
	OnPhase(phase Phase)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
