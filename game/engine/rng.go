package engine

import (
	"math/rand"
	"time"
)

// RNG wraps a seeded generator so a whole run can be replayed from its seed
type RNG struct {
	seed int64
	rng  *rand.Rand
}

// NewRNG creates a generator from seed. A zero seed uses the current time.
func NewRNG(seed int64) *RNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RNG{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed the generator was created with
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// Float64 returns a value in [0.0, 1.0)
func (r *RNG) Float64() float64 {
	return r.rng.Float64()
}

// IntRange returns a value in the inclusive interval [lo, hi]
func (r *RNG) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

// ShufflePositions permutes positions in place
func (r *RNG) ShufflePositions(positions []Position) {
	r.rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
}

// PickPosition returns a uniformly chosen element of positions
func (r *RNG) PickPosition(positions []Position) (Position, bool) {
	if len(positions) == 0 {
		return Position{}, false
	}
	return positions[r.Intn(len(positions))], true
}

// ChooseWeighted returns the index of an entry chosen proportionally to its
// weight, or -1 when no entry has a positive weight.
func (r *RNG) ChooseWeighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	x := r.Float64() * total
	upto := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		upto += w
		last = i
		if x < upto {
			return i
		}
	}
	return last
}
