package main

import "fmt"

const (
	DefaultMaxMemFrac = 0.125
	maxMemFracCap     = 0.5
	minMemoryBudget   = 1 << 20
)

// totalMemory reports the host's physical memory in bytes. It is a variable
// so tests can stand in for the platform probe.
var totalMemory = platformMemory

// memoryBudget returns the byte budget for a derivation. A non-zero maxmem is
// used exactly so the same budget reproduces the same password on any host;
// zero means a fraction of detected RAM.
func memoryBudget(maxmem uint64, frac float64) (uint64, error) {
	if maxmem != 0 {
		return maxmem, nil
	}
	if frac <= 0 || frac > maxMemFracCap {
		frac = maxMemFracCap
	}

	total, err := totalMemory()
	if err != nil {
		return 0, newError(KindResourceDetectionFailed, "detect memory", err)
	}
	if total == 0 {
		return 0, newError(KindResourceDetectionFailed, "detect memory", fmt.Errorf("platform reported zero memory"))
	}

	avail := uint64(frac * float64(total))
	if avail < minMemoryBudget {
		avail = minMemoryBudget
	}
	return avail, nil
}
