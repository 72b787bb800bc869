// Package logsumexp implements the numerically stable exponentiation and
// normalization of a log-probability array, and the small log-sum-exp
// reduction used inside a single pixel's lattice accumulation.
package logsumexp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/bayestar/skymap/internal/skyerr"
)

// SortDescending returns a permutation of indices [0, len(p)) such that
// p[perm[0]] >= p[perm[1]] >= ... The permutation is built once per call
// and traversed forward or backward as needed.
func SortDescending(p []float64) []int {
	perm := make([]int, len(p))
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(a, b int) bool {
		return p[perm[a]] > p[perm[b]]
	})
	return perm
}

// ExpNormalize exponentiates p in place and normalizes it to sum to 1:
// shift by the running maximum, exponentiate, sum in ascending-value
// order (perm traversed in reverse) to reduce cancellation, then divide.
// perm must be a descending-value permutation of p, e.g. from
// SortDescending.
func ExpNormalize(p []float64, perm []int) skyerr.Status {
	if len(perm) != len(p) {
		return skyerr.Newf(skyerr.Memory, "permutation length %d does not match sky map length %d", len(perm), len(p))
	}
	if len(p) == 0 {
		return skyerr.Success
	}

	max := p[perm[0]]
	if math.IsInf(max, -1) {
		return skyerr.New(skyerr.Shape, "every pixel has zero posterior mass")
	}

	for i := range p {
		p[i] = math.Exp(p[i] - max)
	}

	ascending := make([]float64, len(perm))
	for rank, idx := range perm {
		ascending[len(perm)-1-rank] = p[idx]
	}
	sum := floats.Sum(ascending)

	if sum == 0 {
		return skyerr.New(skyerr.Shape, "normalization sum is zero")
	}
	for i := range p {
		p[i] /= sum
	}
	return skyerr.Success
}

// Reduce computes log(sum(exp(xs))), shifting by the running maximum for
// stability. Used to accumulate the (u, 2*psi) lattice contributions
// within a single pixel, as distinct from the map-wide ExpNormalize
// above.
func Reduce(xs []float64) float64 {
	if len(xs) == 0 {
		return math.Inf(-1)
	}
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	shifted := make([]float64, len(xs))
	for i, x := range xs {
		shifted[i] = math.Exp(x - max)
	}
	return max + math.Log(floats.Sum(shifted))
}
