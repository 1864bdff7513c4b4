// Package synthetic generates plausible demonstration surveillance data:
// seasonal incidence series, per-state burden estimates, line-listed case
// records, facility reports, the PPMV registry, outlier checks, outbreak
// alerts and programme budget lines. Nothing here performs I/O.
//
// Generators that need randomness take a *Source. A Source built with a
// non-zero seed yields identical output on every run; seed 0 picks a
// time-derived seed which Source.Seed reports so a run can be replayed.
package synthetic

import (
	"fmt"
	"math/rand"
	"time"
)

// Source is a seedable random source. It is not safe for concurrent use.
type Source struct {
	seed    int64
	rng     *rand.Rand
	counter int
}

// NewSource returns a Source for seed. A zero seed is replaced by one derived
// from the current time.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the effective seed.
func (s *Source) Seed() int64 { return s.seed }

// Float64 returns a value in [0,1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Intn returns a value in [0,n). n must be positive.
func (s *Source) Intn(n int) int { return s.rng.Intn(n) }

// Between returns a value in [lo,hi).
func (s *Source) Between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// IntBetween returns a value in [lo,hi].
func (s *Source) IntBetween(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool { return s.rng.Float64() < p }

func (s *Source) nextID(prefix string) string {
	s.counter++
	return fmt.Sprintf("%s-%06d", prefix, s.counter)
}

// Pick returns a uniformly chosen element of pool. pool must be non-empty.
func Pick[T any](s *Source, pool []T) T {
	return pool[s.rng.Intn(len(pool))]
}

// weighted is one outcome of a categorical draw.
type weighted struct {
	value  string
	weight float64
}

// draw picks from choices in proportion to their weights.
func (s *Source) draw(choices []weighted) string {
	total := 0.0
	for _, c := range choices {
		total += c.weight
	}
	r := s.rng.Float64() * total
	for _, c := range choices {
		if r < c.weight {
			return c.value
		}
		r -= c.weight
	}
	return choices[len(choices)-1].value
}
