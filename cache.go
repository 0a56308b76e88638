package flipbook

import (
	"context"
	"image"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

// Frame is one decoded still of the sequence.
type Frame struct {
	Index  int
	Image  image.Image
	Width  int
	Height int

	// texture is the GPU copy, created on first draw by EbitenSurface.
	texture *ebiten.Image
}

// LoadState counts completed frame loads. Loaded only grows, and failed
// loads count, so Done is reached even when some assets are bad.
type LoadState struct {
	Loaded int
	Total  int
}

// Done reports whether every frame has completed, successfully or not.
func (s LoadState) Done() bool {
	return s.Total > 0 && s.Loaded == s.Total
}

// Percent returns floor(Loaded/Total × 100).
func (s LoadState) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Loaded * 100 / s.Total
}

// FrameCache owns the decoded frames of one sequence.
//
// Loads run on background goroutines and complete in any order. Completions
// are recorded under a lock and queued as LoadState snapshots; Poll hands
// them to the tick goroutine, which is the only place progress is reported.
type FrameCache struct {
	urlFor      func(int) string
	loader      Loader
	concurrency int
	budget      float64
	logger      *log.Logger

	mu        sync.Mutex
	frames    []*Frame
	completed []bool
	state     LoadState
	failed    int
	pending   []LoadState
	requested bool
	closed    bool
	sized     bool
	lookups   int

	done chan struct{}
}

// NewFrameCache creates an empty cache for n frames addressed by urlFor.
func NewFrameCache(n int, urlFor func(int) string, loader Loader) *FrameCache {
	return &FrameCache{
		urlFor:      urlFor,
		loader:      loader,
		concurrency: 8,
		logger:      log.Default(),
		frames:      make([]*Frame, n),
		completed:   make([]bool, n),
		state:       LoadState{Total: n},
		done:        make(chan struct{}),
	}
}

// SetConcurrency bounds the number of loads in flight. Call before Preload.
func (c *FrameCache) SetConcurrency(n int) {
	if n > 0 {
		c.concurrency = n
	}
}

// Preload issues one load per frame in the background and returns true.
// A cache that was already preloaded is left alone and false is returned,
// so re-mounting an owner never duplicates requests.
func (c *FrameCache) Preload(ctx context.Context) bool {
	c.mu.Lock()
	if c.requested {
		c.mu.Unlock()
		return false
	}
	c.requested = true
	n := len(c.frames)
	c.mu.Unlock()

	go func() {
		defer close(c.done)
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i := 0; i < n; i++ {
			if c.isClosed() {
				break
			}
			g.Go(func() error {
				url := c.urlFor(i)
				img, err := c.loader.Load(ctx, url)
				if err != nil {
					err = &AssetError{Index: i, URL: url, Err: err}
				}
				c.Complete(i, img, err)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return true
}

// Wait blocks until every issued load has returned or ctx is done.
func (c *FrameCache) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete records the outcome of loading frame i. A failed load (err != nil
// or nil img) still counts toward Loaded. Repeated completions for the same
// index and completions after Close are ignored.
func (c *FrameCache) Complete(i int, img image.Image, err error) {
	c.mu.Lock()
	if c.closed || i < 0 || i >= len(c.frames) || c.completed[i] {
		c.mu.Unlock()
		return
	}
	c.completed[i] = true
	var firstW, firstH int
	if err == nil && img != nil {
		b := img.Bounds()
		c.frames[i] = &Frame{Index: i, Image: img, Width: b.Dx(), Height: b.Dy()}
		if !c.sized {
			c.sized = true
			firstW, firstH = b.Dx(), b.Dy()
		}
	} else {
		c.failed++
		if err == nil {
			err = &AssetError{Index: i, Err: errNilImage}
		}
	}
	c.state.Loaded++
	c.pending = append(c.pending, c.state)
	n, budget := len(c.frames), c.budget
	c.mu.Unlock()

	// Outside the lock: the memory check queries the OS.
	if firstW > 0 {
		checkMemoryBudget(c.logger, firstW, firstH, n, budget)
	}
	if err != nil || img == nil {
		c.logger.Printf("[flipbook] asset decode failure: %v", err)
	}
}

// Poll returns the progress snapshots recorded since the previous call, in
// completion order.
func (c *FrameCache) Poll() []LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = nil
	return out
}

// Get returns frame i, or false when it is out of range, still loading, or
// failed. Callers skip drawing on false.
func (c *FrameCache) Get(i int) (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if i < 0 || i >= len(c.frames) {
		return nil, false
	}
	f := c.frames[i]
	return f, f != nil
}

// State returns the current load counters.
func (c *FrameCache) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Failed returns how many frames failed to load.
func (c *FrameCache) Failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// Lookups returns how many times Get has been called.
func (c *FrameCache) Lookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups
}

// Len returns the sequence length.
func (c *FrameCache) Len() int {
	return len(c.frames)
}

// Close discards the results of loads still in flight and stops issuing new
// ones. Frames already stored stay readable.
func (c *FrameCache) Close() {
	c.mu.Lock()
	c.closed = true
	c.pending = nil
	c.mu.Unlock()
}

func (c *FrameCache) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
