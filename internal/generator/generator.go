// Package generator provides the random source used to build minigame rounds.
package generator

import (
	"math/rand"
	"sort"
	"time"
)

// Generator wraps a pseudo-random source with the draws rounds need.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose draws are reproducible for seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform int in [0, n). n <= 0 yields 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rnd.Intn(n)
}

// IntRange returns a uniform int in the closed range [lo, hi].
func (g *Generator) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// FloatRange returns a uniform float in [lo, hi]. A collapsed range returns lo.
func (g *Generator) FloatRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Float64()*(hi-lo)
}

// Sample picks k distinct ints from [0, n) uniformly without replacement.
// The result is sorted ascending. k is clamped to [0, n].
func (g *Generator) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	perm := g.rnd.Perm(n)[:k]
	sorted := make([]int, k)
	copy(sorted, perm)
	sort.Ints(sorted)
	return sorted
}

// Shuffle permutes n elements using swap.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.rnd.Shuffle(n, swap)
}

// Pick returns a uniform index into a slice of length n, or -1 when empty.
func (g *Generator) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return g.rnd.Intn(n)
}
