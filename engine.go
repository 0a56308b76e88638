package flipbook

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// Engine plays a preloaded frame sequence in step with scroll.
//
// The host drives it with one Update per animation tick: from an
// [ebiten.Game] (Update, Draw and Layout are shaped to be forwarded
// directly) or from [RunLoop]. All methods except Unmount and Alive must be
// called from the tick goroutine.
type Engine struct {
	cfg    Config
	logger *log.Logger
	cache  *FrameCache
	clock  Clock

	intro    *Intro
	sched    *Scheduler
	comp     *Compositor
	resizer  Resizer
	geometry GeometrySource
	surface  Surface
	observer Observer

	alive    atomic.Bool
	stop     chan struct{}
	stopOnce *sync.Once

	surfaceDead bool
	dirty       bool
	shown       int
	lastPhase   Phase

	debug           bool
	stats           TickStats
	screenshotQueue []string

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
}

// New validates cfg and creates an unmounted engine. Frames are fetched
// through loader once the engine is first mounted.
func New(cfg Config, loader Loader) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:           cfg,
		logger:        cfg.logger(),
		clock:         systemClock{},
		ScreenshotDir: "screenshots",
	}
	e.cache = NewFrameCache(cfg.FrameCount, cfg.URL, loader)
	e.cache.SetConcurrency(cfg.LoadConcurrency)
	e.cache.budget = cfg.MemoryBudget
	e.cache.logger = e.logger
	e.resizer.MaxScale = cfg.MaxDeviceScale
	return e, nil
}

// Cache returns the engine's frame cache.
func (e *Engine) Cache() *FrameCache {
	return e.cache
}

// SetClock replaces the wall clock used by the intro timeline.
func (e *Engine) SetClock(c Clock) {
	e.clock = c
}

// SetObserver registers an observer for progress and phase changes.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Mount attaches the engine to a container and a drawing surface, starts
// preloading (once per engine) and begins a fresh playback: phase, cursor
// and compositor state never carry over from a previous mount.
//
// A nil surface is not an error for the host: the engine logs it once and
// keeps reporting progress without ever drawing.
func (e *Engine) Mount(src GeometrySource, surface Surface) error {
	if src == nil {
		return ErrNoGeometry
	}
	e.Unmount()

	fn, _ := easeByName(e.cfg.IntroEase)
	e.intro = NewIntro(e.cfg.IntroStart, e.cfg.IntroDuration, fn)
	e.sched = NewScheduler(e.cfg.FrameCount, e.cfg.Smoothing, e.cfg.Epsilon)
	e.geometry = src
	e.surface = surface
	e.comp = NewCompositor(surface)
	e.resizer = Resizer{MaxScale: e.cfg.MaxDeviceScale}
	e.lastPhase = PhasePriming
	e.surfaceDead = false
	e.dirty = false
	e.shown = -1
	if surface == nil {
		e.markSurfaceDead(ErrSurfaceUnavailable)
	}

	e.stop = make(chan struct{})
	e.stopOnce = new(sync.Once)
	e.alive.Store(true)
	e.cache.Preload(context.Background())
	return nil
}

// Unmount stops the tick loop. Loads in flight finish in the background but
// nothing they produce reaches the host or the surface until a new Mount.
// Safe to call from any goroutine and more than once.
func (e *Engine) Unmount() {
	if !e.alive.Swap(false) {
		return
	}
	e.stopOnce.Do(func() { close(e.stop) })
}

// Alive reports whether the engine is mounted.
func (e *Engine) Alive() bool {
	return e.alive.Load()
}

// done is closed by Unmount.
func (e *Engine) done() <-chan struct{} {
	return e.stop
}

// Phase returns the playback phase of the current mount.
func (e *Engine) Phase() Phase {
	if e.intro == nil {
		return PhasePriming
	}
	return e.intro.Phase()
}

// Cursor returns the displayed frame position.
func (e *Engine) Cursor() float64 {
	if e.sched == nil {
		return 0
	}
	return e.sched.Cursor()
}

// State returns the load counters.
func (e *Engine) State() LoadState {
	return e.cache.State()
}

// Stats returns the counters of the most recent tick.
func (e *Engine) Stats() TickStats {
	return e.stats
}

// Update runs one tick. It never fails; the error result matches
// ebiten.Game.
func (e *Engine) Update() error {
	if !e.alive.Load() {
		return nil
	}
	e.stats = TickStats{}
	e.dispatchProgress()
	e.tick()
	e.stats.Phase = e.Phase()
	e.stats.Cursor = e.sched.Cursor()
	if e.debug {
		e.debugLog(e.stats)
	}
	return nil
}

func (e *Engine) tick() {
	if e.surfaceDead {
		return
	}
	g, vh, ok := e.geometry.Geometry()
	if !ok {
		e.stats.NoGeometry = true
		return
	}
	if !g.Visible(vh) {
		e.stats.Culled = true
		return
	}

	switch e.intro.Phase() {
	case PhasePriming:
		if !e.cache.State().Done() {
			e.drawIndex(0)
			return
		}
		e.intro.Ready()
		e.notifyPhase()
		fallthrough
	case PhaseIntroPlaying:
		target := e.intro.Target(e.clock.Now())
		e.sched.Snap(target)
		e.notifyPhase()
		e.drawIndex(e.sched.Index())
	case PhaseScrollLinked:
		target := Progress(g, vh) * float64(e.cfg.FrameCount-1)
		if e.sched.Step(target) || e.dirty {
			e.drawIndex(e.sched.Index())
		}
	}
}

// drawIndex looks frame i up and hands it to the compositor unless it is
// already on the surface.
func (e *Engine) drawIndex(i int) {
	if e.comp.Drawn(i) {
		return
	}
	e.stats.Lookups++
	f, ok := e.cache.Get(i)
	if !ok {
		e.stats.Skipped++
		if e.dirty {
			e.repaintShown()
		}
		return
	}
	if e.comp.Draw(i, f) {
		e.stats.Draws++
		e.shown = i
	}
	e.dirty = false
}

// repaintShown puts the last drawn frame back on a reallocated surface when
// the frame it should show instead is unavailable.
func (e *Engine) repaintShown() {
	e.dirty = false
	if e.shown < 0 {
		return
	}
	if f, ok := e.cache.Get(e.shown); ok && e.comp.Draw(e.shown, f) {
		e.stats.Draws++
	}
}

func (e *Engine) dispatchProgress() {
	for _, st := range e.cache.Poll() {
		if e.cfg.OnProgress != nil {
			e.cfg.OnProgress(st.Loaded, st.Total, st.Done())
		}
		if e.observer != nil {
			e.observer.OnProgress(st)
		}
	}
}

func (e *Engine) notifyPhase() {
	p := e.intro.Phase()
	if p == e.lastPhase {
		return
	}
	e.lastPhase = p
	if e.debug {
		e.logger.Printf("[flipbook] phase: %s", p)
	}
	if e.observer != nil {
		e.observer.OnPhase(p)
	}
}

func (e *Engine) markSurfaceDead(err error) {
	if e.surfaceDead {
		return
	}
	e.surfaceDead = true
	e.logger.Printf("[flipbook] drawing disabled: %v", err)
}

// Resize adapts the surface to a vw×vh viewport at the given device scale.
// Only width changes reallocate; a reallocation repaints the current frame
// on the next tick.
func (e *Engine) Resize(vw, vh int, deviceScale float64) {
	if e.surface == nil || e.surfaceDead {
		return
	}
	changed, err := e.resizer.Apply(e.surface, vw, vh, deviceScale)
	if err != nil {
		e.markSurfaceDead(err)
		return
	}
	if changed {
		e.comp.Invalidate()
		e.dirty = true
	}
}

// Layout implements the ebiten.Game Layout contract. The screen follows the
// window at the capped device scale while the surface follows Resize's
// width-gated policy.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	e.Resize(outsideWidth, outsideHeight, scale)
	return BackingSize(outsideWidth, outsideHeight, scale, e.cfg.MaxDeviceScale)
}

// Draw blits an EbitenSurface onto screen, cover-fitted with a uniform
// scale, then flushes queued screenshots and the debug overlay.
func (e *Engine) Draw(screen *ebiten.Image) {
	if s, ok := e.surface.(*EbitenSurface); ok && !e.surfaceDead && s.Image() != nil {
		sw, sh := s.Size()
		bounds := screen.Bounds()
		var op ebiten.DrawImageOptions
		op.GeoM = CoverGeoM(bounds.Dx(), bounds.Dy(), sw, sh)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(s.Image(), &op)
	}
	e.flushScreenshots()
	if e.debug {
		e.DrawDebugOverlay(screen)
	}
}
