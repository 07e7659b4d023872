// Package kendall holds the null distribution of Kendall's score S.
//
// Without ties S = C - D = N - 2I where I is the number of inversions of a
// random permutation, so the exact distribution follows from the Mahonian
// numbers (the AS 71 recurrence of Best & Gipps, 1974). For larger n an
// Edgeworth series with the exact second and fourth cumulants is used.
package kendall

import (
	"fmt"
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/domain/stats"
)

// DefaultExactLimit is the largest n for which the exact distribution is used.
const DefaultExactLimit = 50

// Counts are the pair classifications behind every Kendall-type coefficient.
type Counts struct {
	N          int
	Pairs      float64 // n(n-1)/2
	Concordant float64
	Discordant float64
	TiesX      float64 // Pairs tied on x only
	TiesY      float64 // Pairs tied on y only
	TiesXY     float64 // Pairs tied on both
}

// S is the Kendall score C - D.
func (c Counts) S() float64 {
	return c.Concordant - c.Discordant
}

// HasTies reports whether any pair is tied.
func (c Counts) HasTies() bool {
	return c.TiesX+c.TiesY+c.TiesXY > 0
}

// Score classifies all n(n-1)/2 pairs. NaN pairs must already be removed.
func Score(x, y []float64) (Counts, error) {
	if len(x) != len(y) {
		return Counts{}, fmt.Errorf("kendall score: lengths %d and %d differ", len(x), len(y))
	}
	n := len(x)
	c := Counts{N: n, Pairs: float64(n*(n-1)) / 2}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dx := x[i] - x[j]
			dy := y[i] - y[j]
			switch {
			case dx == 0 && dy == 0:
				c.TiesXY++
			case dx == 0:
				c.TiesX++
			case dy == 0:
				c.TiesY++
			case (dx > 0) == (dy > 0):
				c.Concordant++
			default:
				c.Discordant++
			}
		}
	}
	return c, nil
}

// Variance of S under independence without ties.
func Variance(n int) float64 {
	fn := float64(n)
	return fn * (fn - 1) * (2*fn + 5) / 18
}

// InversionDist returns P(I = k) for k = 0..n(n-1)/2 for a uniformly random
// permutation of n items. Each extra item adds between 0 and n-1 inversions
// with equal probability, which gives a sliding-window recurrence.
func InversionDist(n int) []float64 {
	if n < 1 {
		return []float64{1}
	}
	p := []float64{1}
	for m := 2; m <= n; m++ {
		maxK := m * (m - 1) / 2
		next := make([]float64, maxK+1)
		window := 0.0
		for k := 0; k <= maxK; k++ {
			if k < len(p) {
				window += p[k]
			}
			if drop := k - m; drop >= 0 && drop < len(p) {
				window -= p[drop]
			}
			next[k] = window / float64(m)
		}
		p = next
	}
	return p
}

// Distribution evaluates tail probabilities of S.
type Distribution struct {
	ExactLimit int
}

// Default uses the exact distribution up to DefaultExactLimit.
var Default = Distribution{ExactLimit: DefaultExactLimit}

// UpperTail is P(S >= s) for n untied observations.
func (d Distribution) UpperTail(n int, s float64) float64 {
	if n < 2 {
		return 1
	}
	if n <= d.ExactLimit {
		return ExactUpperTail(n, s)
	}
	return EdgeworthUpperTail(n, s)
}

// PValue of an observed S.
func (d Distribution) PValue(n int, s float64, alt stats.Alternative) float64 {
	switch alt {
	case stats.Greater:
		return d.UpperTail(n, s)
	case stats.Less:
		// symmetric: P(S <= s) = P(S >= -s)
		return d.UpperTail(n, -s)
	default:
		return math.Min(1, 2*d.UpperTail(n, math.Abs(s)))
	}
}

// UpperTail uses the Default distribution.
func UpperTail(n int, s float64) float64 {
	return Default.UpperTail(n, s)
}

// ExactUpperTail sums the inversion distribution: S >= s iff I <= (N - s)/2.
func ExactUpperTail(n int, s float64) float64 {
	total := n * (n - 1) / 2
	limit := math.Floor((float64(total)-s)/2 + 1e-9)
	if limit < 0 {
		return 0
	}
	p := InversionDist(n)
	sum := 0.0
	for k := 0; k <= int(limit) && k < len(p); k++ {
		sum += p[k]
	}
	return math.Min(1, sum)
}

// EdgeworthUpperTail approximates P(S >= s). S is symmetric, so only the
// fourth cumulant enters the first correction term. S moves in steps of
// two, hence the continuity correction of one.
func EdgeworthUpperTail(n int, s float64) float64 {
	fn := float64(n)
	sigma2 := Variance(n)
	sum4 := fn*(fn+1)*(2*fn+1)*(3*fn*fn+3*fn-1)/30 - fn
	kappa4 := -2.0 / 15.0 * sum4
	gamma2 := kappa4 / (sigma2 * sigma2)

	x := (s - 1) / math.Sqrt(sigma2)
	p := distributions.NormalSF(x) + distributions.NormalPDF(x)*gamma2/24*(x*x*x-3*x)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// PermutationLimit bounds n for the full permutation distribution.
const PermutationLimit = 9

// PermutationNull enumerates S over every permutation of y against x. It is
// the only exact option once ties are present and is limited to small n.
func PermutationNull(x, y []float64) ([]float64, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("kendall permutation: lengths %d and %d differ", len(x), len(y))
	}
	if n > PermutationLimit {
		return nil, fmt.Errorf("kendall permutation: n=%d exceeds limit %d", n, PermutationLimit)
	}

	perm := append([]float64(nil), y...)
	null := make([]float64, 0, factorial(n))
	record := func() {
		c, _ := Score(x, perm)
		null = append(null, c.S())
	}

	// Heap's algorithm
	idx := make([]int, n)
	record()
	i := 0
	for i < n {
		if idx[i] < i {
			if i%2 == 0 {
				perm[0], perm[i] = perm[i], perm[0]
			} else {
				perm[idx[i]], perm[i] = perm[i], perm[idx[i]]
			}
			record()
			idx[i]++
			i = 0
		} else {
			idx[i] = 0
			i++
		}
	}
	return null, nil
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
