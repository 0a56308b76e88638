package flipbook

import "math"

// Scheduler owns the frame cursor: the smoothed, currently displayed frame
// position. Each tick moves the cursor a fixed fraction of the way to its
// target, so it converges without overshoot for any alpha in (0, 1].
type Scheduler struct {
	cursor   float64
	alpha    float64
	epsilon  float64
	maxIndex int
}

// NewScheduler creates a cursor at 0 over frames 0..n-1.
func NewScheduler(n int, alpha, epsilon float64) *Scheduler {
	return &Scheduler{alpha: alpha, epsilon: epsilon, maxIndex: n - 1}
}

// Cursor returns the current cursor position.
func (s *Scheduler) Cursor() float64 {
	return s.cursor
}

// Step smooths the cursor toward target and reports whether it moved.
// Within epsilon of the target the cursor snaps onto it, so the last frame
// of a settle is always reached.
func (s *Scheduler) Step(target float64) bool {
	diff := target - s.cursor
	if diff == 0 {
		return false
	}
	if math.Abs(diff) < s.epsilon {
		s.cursor = target
		return true
	}
	s.cursor += diff * s.alpha
	return true
}

// Snap places the cursor on v without smoothing.
func (s *Scheduler) Snap(v float64) {
	s.cursor = v
}

// Index returns floor(clamp(cursor, 0, n−1)).
func (s *Scheduler) Index() int {
	return int(math.Floor(clamp(s.cursor, 0, float64(s.maxIndex))))
}
