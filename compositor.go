package flipbook

import "math"

// CoverFit places a frame of fw×fh on a surface of sw×sh so that it covers
// the whole surface with its aspect ratio preserved. When the surface is
// relatively wider the frame is scaled to the surface width and cropped
// equally top and bottom; otherwise it is scaled to the surface height and
// cropped equally left and right. Never letterboxed.
func CoverFit(sw, sh, fw, fh int) Placement {
	if sw <= 0 || sh <= 0 || fw <= 0 || fh <= 0 {
		return Placement{}
	}
	surfaceRatio := float64(sw) / float64(sh)
	frameRatio := float64(fw) / float64(fh)

	if surfaceRatio > frameRatio {
		w := float64(sw)
		h := w / frameRatio
		return Placement{X: 0, Y: (float64(sh) - h) / 2, W: w, H: h}
	}
	h := float64(sh)
	w := h * frameRatio
	return Placement{X: (float64(sw) - w) / 2, Y: 0, W: w, H: h}
}

// Compositor draws frames onto a Surface. It remembers the last index it
// drew and skips repeats, so a skipped or failed draw leaves the previous
// frame on screen.
type Compositor struct {
	surface Surface
	last    int
}

// NewCompositor creates a compositor for s with nothing drawn yet.
func NewCompositor(s Surface) *Compositor {
	return &Compositor{surface: s, last: -1}
}

// Last returns the index drawn most recently, or -1.
func (c *Compositor) Last() int {
	return c.last
}

// Drawn reports whether index is what the surface currently shows.
func (c *Compositor) Drawn(index int) bool {
	return c.last == index
}

// Invalidate forgets the last drawn index so the next Draw repaints, e.g.
// after the surface was reallocated.
func (c *Compositor) Invalidate() {
	c.last = -1
}

// Draw cover-fits f onto the surface and reports whether pixels were
// written. It returns false when index is already shown or f has no image.
func (c *Compositor) Draw(index int, f *Frame) bool {
	if index == c.last || f == nil || f.Image == nil {
		return false
	}
	w, h := c.surface.Size()
	if w <= 0 || h <= 0 {
		return false
	}
	c.surface.Clear()
	c.surface.DrawFrame(f, CoverFit(w, h, f.Width, f.Height))
	c.last = index
	return true
}

// BackingSize returns the surface resolution for a viewport: the viewport
// size times the device scale, with the scale capped at maxScale.
func BackingSize(vw, vh int, deviceScale, maxScale float64) (int, int) {
	scale := deviceScale
	if scale <= 0 {
		scale = 1
	}
	if maxScale > 0 {
		scale = math.Min(scale, maxScale)
	}
	return int(math.Round(float64(vw) * scale)), int(math.Round(float64(vh) * scale))
}

// Resizer reallocates a surface when its backing width changes, either from
// a viewport width change or a device scale change. Height-only changes
// (mobile browser chrome sliding in and out) are ignored, and so are empty
// viewports such as a minimized window.
type Resizer struct {
	MaxScale float64

	backingWidth int
	applied      bool
}

// Apply resizes s for a vw×vh viewport at deviceScale. It reports whether the
// surface was reallocated.
func (r *Resizer) Apply(s Surface, vw, vh int, deviceScale float64) (bool, error) {
	w, h := BackingSize(vw, vh, deviceScale, r.MaxScale)
	if w <= 0 || h <= 0 {
		return false, nil
	}
	if r.applied && w == r.backingWidth {
		return false, nil
	}
	if err := s.Resize(w, h); err != nil {
		return false, err
	}
	r.backingWidth = w
	r.applied = true
	return true, nil
}
