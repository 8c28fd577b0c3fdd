package main

import "fmt"

const (
	// scrypt block size factor, fixed for every selected parameter set
	DefaultBlockSize = 8

	maxLogN     = 63
	maxRP       = 0x3fffffff
	rpLimit     = 1 << 30
	megaOpScale = 1000000
)

// CostParams are the scrypt cost parameters: N = 2^LogN, r and p.
type CostParams struct {
	LogN int
	R    uint32
	P    uint32
}

// N returns the scrypt work factor 2^LogN.
func (c CostParams) N() uint64 {
	return uint64(1) << uint(c.LogN)
}

// Memory returns the scrypt memory footprint in bytes, 128*N*r.
func (c CostParams) Memory() float64 {
	return 128 * float64(c.N()) * float64(c.R)
}

// Ops returns the scrypt operation count, 4*N*r*p.
func (c CostParams) Ops() float64 {
	return 4 * float64(c.N()) * float64(c.R) * float64(c.P)
}

func (c CostParams) String() string {
	return fmt.Sprintf("N=%d r=%d p=%d", c.N(), c.R, c.P)
}

// ResourceBudget bounds the memory and CPU a derivation may consume.
type ResourceBudget struct {
	MaxMemory  uint64 // bytes
	MaxMegaOps int    // millions of scrypt basic operations
}

func (b ResourceBudget) opsLimit() float64 {
	return float64(b.MaxMegaOps) * megaOpScale
}

// SelectParams picks scrypt parameters satisfying both budgets.
//
// The memory limit requires 128Nr <= memlimit and the CPU limit requires
// 4Nrp <= opslimit. If opslimit < memlimit/32, opslimit is the stronger
// bound on N and p stays at 1; otherwise N comes from memory and p soaks up
// whatever CPU budget is left.
func SelectParams(b ResourceBudget) CostParams {
	memlimit := float64(b.MaxMemory)
	opslimit := b.opsLimit()

	params := CostParams{R: DefaultBlockSize, P: 1}
	r := float64(params.R)

	if opslimit < memlimit/32 {
		params.LogN = pickLogN(opslimit / (r * 4))
		return params
	}

	params.LogN = pickLogN(memlimit / (r * 128))

	maxrp := (opslimit / 4) / float64(params.N())
	if maxrp > maxRP {
		maxrp = maxRP
	}
	if p := uint32(maxrp) / params.R; p > 1 {
		params.P = p
	}
	return params
}

// pickLogN returns the largest LogN whose 2^LogN does not exceed maxN/2,
// never below 1.
func pickLogN(maxN float64) int {
	logN := 1
	for ; logN < maxLogN; logN++ {
		if float64(uint64(1)<<uint(logN)) > maxN/2 {
			break
		}
	}
	if logN > 1 {
		logN--
	}
	return logN
}

// Check reports whether c is in range and fits within b. It is used for
// parameters read back from a sealed header rather than chosen here.
func (c CostParams) Check(b ResourceBudget) error {
	const op = "check params"

	if c.LogN < 1 || c.LogN > maxLogN || c.R == 0 || c.P == 0 {
		return &Error{Kind: KindInvalidParameters, Op: op, Err: fmt.Errorf("%s out of range", c)}
	}
	if uint64(c.R)*uint64(c.P) >= rpLimit {
		return &Error{Kind: KindInvalidParameters, Op: op, Err: fmt.Errorf("r*p must be below 2^30")}
	}

	n := c.N()
	if (b.MaxMemory/n)/uint64(c.R) < 128 {
		return &Error{Kind: KindMemoryBudgetExceeded, Op: op, Limit: float64(b.MaxMemory), Need: c.Memory()}
	}
	opslimit := b.opsLimit()
	if (opslimit/float64(n))/(float64(c.R)*float64(c.P)) < 4 {
		return &Error{Kind: KindTimeBudgetExceeded, Op: op, Limit: opslimit, Need: c.Ops()}
	}
	return nil
}
