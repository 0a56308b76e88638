package flipbook

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// Surface is a drawing target owned exclusively by one engine.
type Surface interface {
	// Size returns the backing resolution in pixels.
	Size() (w, h int)
	// Resize reallocates the backing store. Contents are lost.
	Resize(w, h int) error
	// Clear fills the surface with transparent black.
	Clear()
	// DrawFrame draws f scaled into p. Parts of p outside the surface are
	// clipped.
	DrawFrame(f *Frame, p Placement)
}

// Snapshotter is implemented by surfaces that can export their pixels as a
// straight-alpha image.
type Snapshotter interface {
	Snapshot() image.Image
}

// EbitenSurface is a persistent offscreen canvas on the GPU. Frames are
// uploaded to textures on first draw and reused afterwards.
type EbitenSurface struct {
	image *ebiten.Image
	w, h  int
}

// NewEbitenSurface creates a surface of the given size. A zero size defers
// allocation to the first Resize.
func NewEbitenSurface(w, h int) *EbitenSurface {
	s := &EbitenSurface{}
	if w > 0 && h > 0 {
		s.image = ebiten.NewImage(w, h)
		s.w, s.h = w, h
	}
	return s
}

// Image returns the underlying *ebiten.Image, or nil before allocation.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.image
}

// Size implements Surface.
func (s *EbitenSurface) Size() (int, int) {
	return s.w, s.h
}

// Resize implements Surface.
func (s *EbitenSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrSurfaceUnavailable, w, h)
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(w, h)
	s.w, s.h = w, h
	return nil
}

// Clear implements Surface.
func (s *EbitenSurface) Clear() {
	if s.image != nil {
		s.image.Clear()
	}
}

// DrawFrame implements Surface.
func (s *EbitenSurface) DrawFrame(f *Frame, p Placement) {
	if s.image == nil || f.Width == 0 || f.Height == 0 {
		return
	}
	if f.texture == nil {
		f.texture = ebiten.NewImageFromImage(f.Image)
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(p.W/float64(f.Width), p.H/float64(f.Height))
	op.GeoM.Translate(p.X, p.Y)
	op.Filter = ebiten.FilterLinear
	s.image.DrawImage(f.texture, &op)
}

// CoverGeoM returns the transform that draws a srcW×srcH image over a
// dstW×dstH target with one uniform scale, cropping whatever overflows.
func CoverGeoM(dstW, dstH, srcW, srcH int) ebiten.GeoM {
	var g ebiten.GeoM
	if srcW <= 0 || srcH <= 0 {
		return g
	}
	p := CoverFit(dstW, dstH, srcW, srcH)
	g.Scale(p.W/float64(srcW), p.H/float64(srcH))
	g.Translate(p.X, p.Y)
	return g
}

// Snapshot implements Snapshotter. It must be called from the game loop.
func (s *EbitenSurface) Snapshot() image.Image {
	if s.image == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	pixels := make([]byte, 4*s.w*s.h)
	s.image.ReadPixels(pixels)
	return unpremultiply(pixels, s.w, s.h)
}

// RasterSurface renders on the CPU into an *image.RGBA. It needs no GPU and
// backs headless rendering and tests.
type RasterSurface struct {
	// Scaler resamples frames. Defaults to Catmull-Rom.
	Scaler xdraw.Scaler

	img *image.RGBA
}

// NewRasterSurface creates a w×h raster surface.
func NewRasterSurface(w, h int) *RasterSurface {
	return &RasterSurface{img: image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))}
}

// RGBA returns the backing image.
func (s *RasterSurface) RGBA() *image.RGBA {
	return s.img
}

// Size implements Surface.
func (s *RasterSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements Surface.
func (s *RasterSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrSurfaceUnavailable, w, h)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

// Clear implements Surface.
func (s *RasterSurface) Clear() {
	clear(s.img.Pix)
}

// DrawFrame implements Surface.
func (s *RasterSurface) DrawFrame(f *Frame, p Placement) {
	scaler := s.Scaler
	if scaler == nil {
		scaler = xdraw.CatmullRom
	}
	scaler.Scale(s.img, p.Rect(), f.Image, f.Image.Bounds(), draw.Src, nil)
}

// Snapshot implements Snapshotter.
func (s *RasterSurface) Snapshot() image.Image {
	b := s.img.Bounds()
	return unpremultiply(s.img.Pix, b.Dx(), b.Dy())
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}
