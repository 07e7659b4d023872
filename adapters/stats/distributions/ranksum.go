package distributions

import (
	"fmt"
	"math"

	"stikpet/domain/stats"
)

// SignedRankExactLimit is the largest n for which the exact Wilcoxon
// signed-rank distribution is tabulated.
const SignedRankExactLimit = 50

// RankSumExactLimit bounds n1+n2 for the exact Mann-Whitney distribution.
const RankSumExactLimit = 40

// SignedRankDist is the null distribution of W+ for n untied, non-zero differences.
type SignedRankDist struct {
	n   int
	pmf []float64
}

// NewSignedRankDist tabulates the distribution of the sum of positive ranks.
// Every rank enters W+ with probability one half, so the pmf is built by
// halving and shifting one rank at a time.
func NewSignedRankDist(n int) (*SignedRankDist, error) {
	if n <= 0 || n > SignedRankExactLimit {
		return nil, fmt.Errorf("signed-rank distribution needs 0 < n <= %d, got %d", SignedRankExactLimit, n)
	}

	size := n*(n+1)/2 + 1
	pmf := make([]float64, size)
	pmf[0] = 1
	maxSum := 0
	for r := 1; r <= n; r++ {
		maxSum += r
		for s := maxSum; s >= 0; s-- {
			v := pmf[s] * 0.5
			if s >= r {
				v += pmf[s-r] * 0.5
			}
			pmf[s] = v
		}
	}
	return &SignedRankDist{n: n, pmf: pmf}, nil
}

// CDF is P(W+ <= w).
func (d *SignedRankDist) CDF(w float64) float64 {
	k := int(math.Floor(w + 1e-7))
	if k < 0 {
		return 0
	}
	if k >= len(d.pmf)-1 {
		return 1
	}
	total := 0.0
	for i := 0; i <= k; i++ {
		total += d.pmf[i]
	}
	return total
}

// PValue for an observed W+.
func (d *SignedRankDist) PValue(w float64, alt stats.Alternative) float64 {
	lower := d.CDF(w)
	upper := 1 - d.CDF(w-1)
	switch alt {
	case stats.Less:
		return lower
	case stats.Greater:
		return upper
	default:
		return clamp01(2 * math.Min(lower, upper))
	}
}

// RankSumDist is the null distribution of the Mann-Whitney U statistic for
// samples of size n1 and n2 without ties.
type RankSumDist struct {
	n1, n2 int
	pmf    []float64
}

// NewRankSumDist builds the U distribution from the generating function
// prod_{i=1..n2} (1 - q^(n1+i)) / (1 - q^i) (Harding, 1984).
func NewRankSumDist(n1, n2 int) (*RankSumDist, error) {
	if n1 <= 0 || n2 <= 0 || n1+n2 > RankSumExactLimit {
		return nil, fmt.Errorf("rank-sum distribution needs positive sizes with n1+n2 <= %d, got %d and %d", RankSumExactLimit, n1, n2)
	}

	maxU := n1 * n2
	c := make([]float64, maxU+1)
	c[0] = 1
	for i := 1; i <= n2; i++ {
		step := n1 + i
		for k := maxU; k >= step; k-- {
			c[k] -= c[k-step]
		}
		for k := i; k <= maxU; k++ {
			c[k] += c[k-i]
		}
	}

	total := math.Exp(LogChoose(n1+n2, n1))
	for k := range c {
		c[k] /= total
	}
	return &RankSumDist{n1: n1, n2: n2, pmf: c}, nil
}

// CDF is P(U <= u).
func (d *RankSumDist) CDF(u float64) float64 {
	k := int(math.Floor(u + 1e-7))
	if k < 0 {
		return 0
	}
	if k >= len(d.pmf)-1 {
		return 1
	}
	total := 0.0
	for i := 0; i <= k; i++ {
		total += d.pmf[i]
	}
	return total
}

// PValue for an observed U of the first sample.
func (d *RankSumDist) PValue(u float64, alt stats.Alternative) float64 {
	lower := d.CDF(u)
	upper := 1 - d.CDF(u-1)
	switch alt {
	case stats.Less:
		return lower
	case stats.Greater:
		return upper
	default:
		return clamp01(2 * math.Min(lower, upper))
	}
}
