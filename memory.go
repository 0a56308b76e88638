package flipbook

import (
	"log"

	"github.com/shirou/gopsutil/v3/mem"
)

// decodedSize is the RGBA footprint of n frames of w×h.
func decodedSize(w, h, n int) uint64 {
	return uint64(w) * uint64(h) * 4 * uint64(n)
}

// exceedsBudget reports whether need is more than budget × available.
// A zero budget disables the check.
func exceedsBudget(need, available uint64, budget float64) bool {
	if budget <= 0 {
		return false
	}
	return float64(need) > float64(available)*budget
}

// checkMemoryBudget warns when the whole sequence, decoded at the size of
// its first frame, would not fit the configured share of available memory.
func checkMemoryBudget(logger *log.Logger, w, h, n int, budget float64) {
	if budget <= 0 {
		return
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	need := decodedSize(w, h, n)
	if exceedsBudget(need, vm.Available, budget) {
		logger.Printf("[flipbook] warning: %d frames of %dx%d need %d MiB, over %.0f%% of %d MiB available",
			n, w, h, need>>20, budget*100, vm.Available>>20)
	}
}
