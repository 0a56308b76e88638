package flipbook

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var discardLogger = log.New(io.Discard, "", 0)

// fakeClock is a Clock moved by hand.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// solid returns a w×h image filled with c.
func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// countingLoader serves 4×3 images and counts calls. URLs listed in fail
// return an error.
type countingLoader struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (l *countingLoader) Load(ctx context.Context, url string) (image.Image, error) {
	l.calls.Add(1)
	if l.fail[url] {
		return nil, fmt.Errorf("corrupt %s", url)
	}
	return solid(4, 3, color.RGBA{R: 200, A: 255}), nil
}

// recordingSurface records draws without rendering.
type recordingSurface struct {
	mu      sync.Mutex
	w, h    int
	drawn   []int
	clears  int
	resizes int
	last    Placement
	failing bool
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Resize(w, h int) error {
	if s.failing {
		return ErrSurfaceUnavailable
	}
	s.w, s.h = w, h
	s.resizes++
	return nil
}

func (s *recordingSurface) Clear() { s.clears++ }

func (s *recordingSurface) DrawFrame(f *Frame, p Placement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn = append(s.drawn, f.Index)
	s.last = p
}

func (s *recordingSurface) draws() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.drawn...)
}

func testConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.FrameCount = n
	cfg.URLForIndex = func(i int) string { return fmt.Sprintf("frame-%d", i) }
	cfg.IntroStart = 3
	cfg.IntroDuration = 2
	cfg.Smoothing = 0.5
	cfg.MemoryBudget = 0
	cfg.Logger = discardLogger
	return cfg
}

func waitLoaded(t *testing.T, c *FrameCache) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("preload did not finish: %v", err)
	}
}

func approx(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
