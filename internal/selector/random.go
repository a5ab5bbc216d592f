package selector

import "math/rand/v2"

// RandomSource picks a uniformly random index in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns a source backed by the math/rand/v2 global generator.
// It is safe for concurrent use.
func DefaultSource() RandomSource {
	return globalSource{}
}

// Seeded returns a deterministic source for reproducible selections.
// Not safe for concurrent use; create one per call site.
func Seeded(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
