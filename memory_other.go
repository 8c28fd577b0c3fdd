//go:build !linux && !darwin

package main

import (
	"fmt"
	"runtime"
)

func platformMemory() (uint64, error) {
	return 0, fmt.Errorf("memory detection not supported on %s, set --maxmem", runtime.GOOS)
}
