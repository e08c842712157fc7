package models

import "math/rand/v2"

// RandomSource is an explicit, seeded generator. Two sources built from the same seed and
// driven by the same call sequence yield identical values. It is not safe for concurrent use;
// parallel work gets its own source through Child.
type RandomSource struct {
	seed int64
	rng  *rand.Rand
}

func NewRandomSource(seed int64) *RandomSource {
	s := uint64(seed)
	return &RandomSource{seed: seed, rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

func (rs *RandomSource) Seed() int64 { return rs.seed }

// Uniform returns a value in [0, 1).
func (rs *RandomSource) Uniform() float64 { return rs.rng.Float64() }

// Index returns a value in [0, bound). bound must be positive.
func (rs *RandomSource) Index(bound int) int { return rs.rng.IntN(bound) }

// Sample draws k distinct indices from [0, n) with a partial Fisher-Yates shuffle.
func (rs *RandomSource) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rs.Index(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	out := make([]int, k)
	copy(out, idx[:k])
	return out
}

// Perm returns a random permutation of [0, n).
func (rs *RandomSource) Perm(n int) []int { return rs.Sample(n, n) }

// Child derives an independent source for the i-th unit of parallel work.
func (rs *RandomSource) Child(i int) *RandomSource { return NewRandomSource(rs.seed + int64(i)) }
