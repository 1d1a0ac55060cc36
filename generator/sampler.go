package generator

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// sampler owns the single seeded source every draw of a run comes from.
type sampler struct {
	src rand.Source
	rnd *rand.Rand
}

func newSampler(seed int64) *sampler {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &sampler{src: src, rnd: rand.New(src)}
}

// poisson draws from Poisson(mean) and floors the result at min.
func (s *sampler) poisson(mean float64, min int) int {
	n := int(distuv.Poisson{Lambda: mean, Src: s.src}.Rand())
	if n < min {
		return min
	}
	return n
}

func (s *sampler) uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}

// intN returns a uniform integer in [0, n).
func (s *sampler) intN(n int64) int64 {
	return s.rnd.Int64N(n)
}

func (s *sampler) flip(p float64) bool {
	return s.rnd.Float64() < p
}

type weighted[T any] struct {
	options []T
	dist    distuv.Categorical
}

func newWeighted[T any](s *sampler, options []T, weights []float64) *weighted[T] {
	return &weighted[T]{options: options, dist: distuv.NewCategorical(weights, s.src)}
}

func (w *weighted[T]) pick() T {
	return w.options[int(w.dist.Rand())]
}
