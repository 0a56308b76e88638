package flipbook

// InjectScroll queues a synthetic scroll of dy pixels. The event is consumed
// on the next Update, one event per tick, exactly like real wheel input.
func (v *ScrollView) InjectScroll(dy float64) {
	v.injectQueue = append(v.injectQueue, dy)
}

// InjectScrollSteps splits a scroll of dy pixels into frames equal events,
// one per tick. Minimum frames is 1.
func (v *ScrollView) InjectScrollSteps(dy float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	step := dy / float64(frames)
	for i := 0; i < frames; i++ {
		v.InjectScroll(step)
	}
}

// Pending reports how many injected events are still queued.
func (v *ScrollView) Pending() int {
	return len(v.injectQueue)
}

// processInjected pops one queued event and applies it.
func (v *ScrollView) processInjected() bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	dy := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]
	v.ScrollBy(dy)
	return true
}
