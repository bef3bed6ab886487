package market

import (
	"math"
	"time"
)

// Rand is a deterministic draw source for the simulation. The entire state is a
// single 32-bit xorshift word, so two instances built from the same seed and
// driven through the same call sequence emit bit-identical streams. A Rand must
// never be shared across universes or goroutines.
type Rand struct {
	state uint32
}

// truncRetryBudget bounds rejection sampling in TruncNormal. When exhausted the
// draw is clamped instead of resampled; downstream calibration depends on that
// exact fallback, so it must not change.
const truncRetryBudget = 20

func NewRand(seed uint32) *Rand {
	if seed == 0 {
		// xorshift never leaves the zero state.
		seed = 0x9E3779B9
	}
	return &Rand{state: seed}
}

// NewRandAuto builds a clock-seeded source for callers that do not need replay.
func NewRandAuto() *Rand {
	return NewRand(uint32(time.Now().UnixNano()))
}

func (r *Rand) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Uniform returns a draw in [0, 1).
func (r *Rand) Uniform() float64 {
	return float64(r.next()) / (1 << 32)
}

// Normal returns a Gaussian draw via the Box-Muller transform, re-drawing a
// zero u1 to keep the log finite.
func (r *Rand) Normal(mean, std float64) float64 {
	u1 := r.Uniform()
	for u1 == 0 {
		u1 = r.Uniform()
	}
	u2 := r.Uniform()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + std*z
}

// TruncNormal samples Normal(mean, std) restricted to [lo, hi] by rejection.
// After truncRetryBudget failed attempts the last draw is clamped into the
// interval, which slightly fattens the boundary mass.
func (r *Rand) TruncNormal(mean, std, lo, hi float64) float64 {
	var v float64
	for i := 0; i < truncRetryBudget; i++ {
		v = r.Normal(mean, std)
		if v >= lo && v <= hi {
			return v
		}
	}
	return clamp(v, lo, hi)
}

// Bernoulli returns true with probability p.
func (r *Rand) Bernoulli(p float64) bool {
	return r.Uniform() < p
}

// Pick returns a uniformly chosen element. items must be non-empty.
func Pick[T any](r *Rand, items []T) T {
	idx := int(r.Uniform() * float64(len(items)))
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
