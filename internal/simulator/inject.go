package simulator

import (
	"math/rand/v2"
	"sync"
	"time"
)

// FailurePoint names a place where a simulated failure can be injected.
type FailurePoint string

const (
	// FailBeforeStream aborts the whole response before any event is emitted.
	FailBeforeStream FailurePoint = "before_stream"

	// FailToolExecution replaces the tool result with an error string.
	FailToolExecution FailurePoint = "tool_execution"
)

// FailureInjector decides whether a simulated failure happens at a point.
// It is only consulted when the request enabled error simulation.
type FailureInjector interface {
	ShouldFail(point FailurePoint) bool
}

// CoinFlip fails each point independently with a fixed probability.
type CoinFlip struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewCoinFlip returns a fair coin seeded with seed. A zero seed uses the clock.
func NewCoinFlip(seed uint64) *CoinFlip {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &CoinFlip{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		probability: 0.5,
	}
}

// ShouldFail flips the coin.
func (c *CoinFlip) ShouldFail(FailurePoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < c.probability
}

// Forced fails exactly the points it contains.
type Forced map[FailurePoint]bool

// Force returns an injector that always fails at the given points and
// never anywhere else.
func Force(points ...FailurePoint) Forced {
	f := make(Forced, len(points))
	for _, p := range points {
		f[p] = true
	}
	return f
}

// ShouldFail reports whether point was forced.
func (f Forced) ShouldFail(point FailurePoint) bool {
	return f[point]
}
