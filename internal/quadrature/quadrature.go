// Package quadrature implements a globally-adaptive one-dimensional
// integrator with an embedded error estimate, used to integrate the
// radial integrand over each breakpoint-delimited subinterval.
//
// gonum's integrate/quad package ships fixed-order Gauss-Legendre rules
// but no embedded Gauss-Kronrod pair, so the embedded error estimate
// here is formed from two Gauss-Legendre evaluations at different
// orders of the same subinterval, and the subdivision control flow is
// this package's own.
package quadrature

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/bayestar/skymap/internal/skyerr"
)

const (
	// DefaultRelTol is the default relative tolerance for convergence.
	DefaultRelTol = 0.05
	// DefaultAbsTol is the default absolute tolerance floor, the
	// smallest positive normal float64: an integral that rounds to
	// exactly zero is treated as converged rather than endlessly
	// subdivided.
	DefaultAbsTol = 2.2250738585072014e-308
	// DefaultMaxIntervals bounds the subdivision budget.
	DefaultMaxIntervals = 64

	lowOrder  = 10
	highOrder = 21
)

var (
	lowRule  = quad.Legendre{}
	highRule = quad.Legendre{}
)

type subinterval struct {
	lo, hi   float64
	estimate float64
	errAbs   float64
}

// byError is a max-heap on errAbs, so the worst subinterval is always
// subdivided next.
type byError []subinterval

func (b byError) Len() int            { return len(b) }
func (b byError) Less(i, j int) bool  { return b[i].errAbs > b[j].errAbs }
func (b byError) Swap(i, j int)       { b[i], b[j] = b[j], b[i] }
func (b *byError) Push(x interface{}) { *b = append(*b, x.(subinterval)) }
func (b *byError) Pop() interface{} {
	old := *b
	n := len(old)
	v := old[n-1]
	*b = old[:n-1]
	return v
}

// Workspace holds the preallocated subdivision heap for one goroutine's
// sequence of Integrate calls, avoiding per-pixel heap allocation.
type Workspace struct {
	heap byError
}

// NewWorkspace allocates a Workspace with room for maxIntervals
// subintervals without reallocating.
func NewWorkspace(maxIntervals int) *Workspace {
	return &Workspace{heap: make(byError, 0, maxIntervals)}
}

// evalSubinterval applies both quadrature orders over [lo, hi] and
// returns the higher-order estimate along with the absolute difference
// between the two orders as the error estimate.
func evalSubinterval(f func(float64) float64, lo, hi float64) subinterval {
	lowPts := make([]float64, lowOrder)
	lowWts := make([]float64, lowOrder)
	lowRule.FixedLocations(lowPts, lowWts, lo, hi)
	var low float64
	for i, x := range lowPts {
		low += lowWts[i] * f(x)
	}

	highPts := make([]float64, highOrder)
	highWts := make([]float64, highOrder)
	highRule.FixedLocations(highPts, highWts, lo, hi)
	var high float64
	for i, x := range highPts {
		high += highWts[i] * f(x)
	}

	return subinterval{lo: lo, hi: hi, estimate: high, errAbs: math.Abs(high - low)}
}

// Integrate adaptively integrates f over the union of the intervals
// delimited by breakpoints, which must be sorted and have at least two
// elements. Subdivision proceeds by repeatedly
// bisecting the subinterval with the largest absolute error estimate
// until the total error is within max(absTol, relTol*|total|) of the
// running total, or maxIntervals subintervals have been used, in which
// case Integrate returns the best available estimate with a
// skyerr.Convergence status.
func Integrate(ws *Workspace, f func(float64) float64, breakpoints []float64, relTol, absTol float64, maxIntervals int) (float64, skyerr.Status) {
	if len(breakpoints) < 2 {
		return 0, skyerr.New(skyerr.Shape, "quadrature requires at least two breakpoints")
	}

	ws.heap = ws.heap[:0]
	var total, totalErr float64

	for i := 1; i < len(breakpoints); i++ {
		s := evalSubinterval(f, breakpoints[i-1], breakpoints[i])
		total += s.estimate
		totalErr += s.errAbs
		ws.heap = append(ws.heap, s)
	}
	heap.Init(&ws.heap)

	used := len(ws.heap)
	for totalErr > math.Max(absTol, relTol*math.Abs(total)) {
		if used >= maxIntervals {
			return total, skyerr.New(skyerr.Convergence, "quadrature did not converge within the subdivision budget")
		}

		worst := heap.Pop(&ws.heap).(subinterval)
		mid := 0.5 * (worst.lo + worst.hi)

		left := evalSubinterval(f, worst.lo, mid)
		right := evalSubinterval(f, mid, worst.hi)

		total += left.estimate + right.estimate - worst.estimate
		totalErr += left.errAbs + right.errAbs - worst.errAbs

		heap.Push(&ws.heap, left)
		heap.Push(&ws.heap, right)
		used++
	}

	return total, skyerr.Success
}
