package flipbook

import (
	"sort"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"outQuad":    ease.OutQuad,
	"outCubic":   ease.OutCubic,
	"outQuart":   ease.OutQuart,
	"outQuint":   ease.OutQuint,
	"outSine":    ease.OutSine,
	"outExpo":    ease.OutExpo,
	"outCirc":    ease.OutCirc,
	"inOutCubic": ease.InOutCubic,
}

// easeByName resolves an easing name. The empty name means outCubic.
func easeByName(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.OutCubic, true
	}
	fn, ok := easings[name]
	return fn, ok
}

// EaseNames lists the accepted Config.IntroEase values.
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Intro is the playback state machine of one mount. It starts in
// PhasePriming, moves to PhaseIntroPlaying on Ready and ends in
// PhaseScrollLinked once the eased timeline from start to 0 has run out.
//
// The timeline is position-agnostic: the image engine feeds it frame
// positions, the scrub controller feeds it seconds.
type Intro struct {
	start    float64
	duration float64
	fn       ease.TweenFunc

	phase  Phase
	tween  *gween.Tween
	began  time.Time
	seeded bool
}

// NewIntro creates a state machine easing from start to 0 over duration
// seconds. A nil fn means outCubic.
func NewIntro(start, duration float64, fn ease.TweenFunc) *Intro {
	if fn == nil {
		fn = ease.OutCubic
	}
	return &Intro{start: start, duration: duration, fn: fn}
}

// Phase returns the current phase.
func (in *Intro) Phase() Phase {
	return in.phase
}

// Ready moves a priming machine to PhaseIntroPlaying. The clock is not read
// here; the timeline is seeded by the first Target call so slow layout between
// the two does not eat into the animation. Ready is a no-op in any other phase.
func (in *Intro) Ready() {
	if in.phase != PhasePriming {
		return
	}
	in.phase = PhaseIntroPlaying
	in.tween = gween.New(float32(in.start), 0, float32(in.duration), in.fn)
}

// Target returns the intro position at now. The first call after Ready
// captures the start timestamp. Once the normalized time reaches 1 the
// machine becomes PhaseScrollLinked and Target returns exactly 0.
// Outside PhaseIntroPlaying Target returns 0.
func (in *Intro) Target(now time.Time) float64 {
	if in.phase != PhaseIntroPlaying {
		return 0
	}
	if !in.seeded {
		in.began = now
		in.seeded = true
	}
	elapsed := now.Sub(in.began).Seconds()
	if elapsed/in.duration >= 1 {
		in.phase = PhaseScrollLinked
		return 0
	}
	v, finished := in.tween.Set(float32(elapsed))
	if finished {
		in.phase = PhaseScrollLinked
		return 0
	}
	return float64(v)
}
