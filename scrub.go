package flipbook

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Seeker is a scrubbable timeline, such as a paused video.
type Seeker interface {
	// Duration returns the timeline length in seconds (0 while unknown).
	Duration() float64
	// Ready reports whether the timeline has frame data to show.
	Ready() bool
	// Seek shows the timeline at t seconds.
	Seek(t float64)
}

// ScrubConfig tunes a ScrubController. Times are in seconds.
type ScrubConfig struct {
	IntroStart    float64
	IntroDuration float64
	IntroEase     ease.TweenFunc
	// Smoothing is the per-tick damping factor in (0, 1].
	Smoothing float64
	// FrameDuration is one displayed frame. The position snaps onto the
	// scroll target within one frame, and seeks are issued only after the
	// position moved half a frame.
	FrameDuration float64
}

// DefaultScrubConfig returns the tuning of a 60 fps display: a 1s intro over
// 2.5s and a snappy 0.35 damping.
func DefaultScrubConfig() ScrubConfig {
	return ScrubConfig{
		IntroStart:    1.0,
		IntroDuration: 2.5,
		IntroEase:     ease.OutCubic,
		Smoothing:     0.35,
		FrameDuration: 1.0 / 60,
	}
}

// ScrubController is the video-scrub alternative to Engine: the cursor is a
// timeline position in seconds and drawing is a Seek. It runs the same
// priming, intro and scroll-linked phases.
type ScrubController struct {
	seeker Seeker
	cfg    ScrubConfig
	clock  Clock
	intro  *Intro

	alive    bool
	waiting  bool
	current  float64
	lastSeek float64
	seeks    int
}

// NewScrubController creates a mounted controller for s.
func NewScrubController(s Seeker, cfg ScrubConfig) *ScrubController {
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = 1
	}
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = 1.0 / 60
	}
	if cfg.IntroDuration <= 0 {
		cfg.IntroDuration = 2.5
	}
	return &ScrubController{
		seeker:   s,
		cfg:      cfg,
		clock:    systemClock{},
		intro:    NewIntro(cfg.IntroStart, cfg.IntroDuration, cfg.IntroEase),
		alive:    true,
		waiting:  true,
		lastSeek: -1,
	}
}

// SetClock replaces the wall clock used by the intro timeline.
func (c *ScrubController) SetClock(clk Clock) {
	c.clock = clk
}

// Phase returns the playback phase.
func (c *ScrubController) Phase() Phase {
	return c.intro.Phase()
}

// Position returns the smoothed timeline position in seconds.
func (c *ScrubController) Position() float64 {
	return c.current
}

// Seeks returns how many seeks have been issued.
func (c *ScrubController) Seeks() int {
	return c.seeks
}

// Stop ends the controller; further ticks do nothing.
func (c *ScrubController) Stop() {
	c.alive = false
}

// Tick runs one step against the container geometry reported by src.
func (c *ScrubController) Tick(src GeometrySource) {
	if !c.alive {
		return
	}

	if c.intro.Phase() != PhaseScrollLinked {
		if c.waiting {
			if !c.seeker.Ready() {
				return
			}
			c.waiting = false
			c.intro.Ready()
			c.seek(c.cfg.IntroStart)
		}
		t := c.intro.Target(c.clock.Now())
		c.seek(t)
		if c.intro.Phase() == PhaseScrollLinked {
			c.seek(0)
		}
		return
	}

	g, vh, ok := src.Geometry()
	if !ok || g.Height-vh <= 0 || !g.Visible(vh) {
		return
	}
	target := Progress(g, vh) * c.seeker.Duration()
	diff := target - c.current
	if math.Abs(diff) < c.cfg.FrameDuration {
		c.current = target
	} else {
		c.current += diff * c.cfg.Smoothing
	}
	if math.Abs(c.current-c.lastSeek) >= c.cfg.FrameDuration*0.5 && c.seeker.Ready() {
		c.seek(c.current)
	}
}

func (c *ScrubController) seek(t float64) {
	c.current = t
	c.lastSeek = t
	c.seeker.Seek(t)
	c.seeks++
}

// FrameSeeker exposes a frame sequence as a Seeker at a fixed frame rate, so
// a video extracted to stills can be scrubbed by a ScrubController.
type FrameSeeker struct {
	cache *FrameCache
	comp  *Compositor
	fps   float64
}

// NewFrameSeeker draws frames of cache onto comp, fps frames per second.
func NewFrameSeeker(cache *FrameCache, comp *Compositor, fps float64) *FrameSeeker {
	return &FrameSeeker{cache: cache, comp: comp, fps: fps}
}

// Duration implements Seeker: the time of the last frame.
func (s *FrameSeeker) Duration() float64 {
	return float64(s.cache.Len()-1) / s.fps
}

// Ready implements Seeker.
func (s *FrameSeeker) Ready() bool {
	return s.cache.State().Done()
}

// Seek implements Seeker.
func (s *FrameSeeker) Seek(t float64) {
	i := s.Index(t)
	if s.comp.Drawn(i) {
		return
	}
	if f, ok := s.cache.Get(i); ok {
		s.comp.Draw(i, f)
	}
}

// Index returns the frame index shown for t seconds.
func (s *FrameSeeker) Index(t float64) int {
	return int(math.Floor(clamp(t*s.fps, 0, float64(s.cache.Len()-1))))
}
