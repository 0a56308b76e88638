package flipbook

import "math"

// Progress maps container geometry to normalized scroll progress in [0, 1]:
// how far the container's top has travelled above the viewport, relative to
// the distance it can travel while still covering the viewport. A container
// no taller than the viewport has no scroll range and yields 0.
func Progress(g Geometry, viewportHeight float64) float64 {
	scrollRange := g.Height - viewportHeight
	if scrollRange <= 0 {
		return 0
	}
	return clamp(-g.Top/scrollRange, 0, 1)
}

// FrameForProgress returns floor(progress × (n−1)) clamped to [0, n−1].
func FrameForProgress(progress float64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(clamp(progress, 0, 1) * float64(n-1)))
}
