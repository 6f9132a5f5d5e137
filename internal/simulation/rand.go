package simulation

import (
	"math/rand"
	"time"
)

// Rand is the random source behind every probabilistic decision the builder
// makes. Isolating it lets tests supply a deterministic source and assert
// exact timelines.
type Rand interface {
	// Float64 returns a value uniformly distributed in [0,1).
	Float64() float64
	// Intn returns a value uniformly distributed in [0,n).
	Intn(n int) int
}

// NewRand returns a production source seeded with the given value.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSeededRand returns a production source seeded from the wall clock.
func NewTimeSeededRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// uniform draws from [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
