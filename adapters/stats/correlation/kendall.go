package correlation

import (
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/kendall"
	"stikpet/adapters/stats/ranks"
	"stikpet/domain/stats"
)

// tiedSVariance is Var(S) with ties in either variable (Kendall, 1970).
func tiedSVariance(xs, ys []float64) float64 {
	n := float64(len(xs))
	v0 := n * (n - 1) * (2*n + 5)
	var vt, vu, t1, t2, u1, u2 float64
	for _, g := range ranks.TieGroups(xs) {
		t := float64(g)
		vt += t * (t - 1) * (2*t + 5)
		t1 += t * (t - 1)
		t2 += t * (t - 1) * (t - 2)
	}
	for _, g := range ranks.TieGroups(ys) {
		u := float64(g)
		vu += u * (u - 1) * (2*u + 5)
		u1 += u * (u - 1)
		u2 += u * (u - 1) * (u - 2)
	}
	v := (v0-vt-vu)/18 + t1*u1/(2*n*(n-1))
	if n > 2 {
		v += t2 * u2 / (9 * n * (n - 1) * (n - 2))
	}
	return v
}

// kendallTest uses the exact null distribution of S when there are no ties
// and n is within the distribution's exact limit. Tied samples of at most
// kendall.PermutationLimit pairs use the full permutation distribution, and
// larger tied samples the normal approximation with tie-corrected variance.
func kendallTest(xs, ys []float64, c kendall.Counts, alt stats.Alternative, dist kendall.Distribution) stats.TestResult {
	s := c.S()
	res := stats.TestResult{N: c.N, Extra: map[string]float64{"S": s}}
	if !c.HasTies() {
		res.Test = "Kendall S exact"
		if c.N > dist.ExactLimit {
			res.Test = "Kendall S Edgeworth approximation"
		}
		res.Statistic = s
		res.PValue = dist.PValue(c.N, s, alt)
		return res
	}
	if c.N <= kendall.PermutationLimit {
		if null, err := kendall.PermutationNull(xs, ys); err == nil {
			res.Test = "Kendall S permutation"
			res.Statistic = s
			res.PValue = permutationPValue(s, null, alt)
			return res
		}
	}
	res.Test = "Kendall S normal approximation"
	v := tiedSVariance(xs, ys)
	if v > 0 {
		res.Statistic = s / math.Sqrt(v)
	}
	res.PValue = distributions.NormalPValue(res.Statistic, alt)
	return res
}

// permutationPValue reads the tail of a permutation null for the alternative.
func permutationPValue(s float64, null []float64, alt stats.Alternative) float64 {
	switch alt {
	case stats.Greater:
		return distributions.PermutationPValue(s, null, false)
	case stats.Less:
		neg := make([]float64, len(null))
		for i, v := range null {
			neg[i] = -v
		}
		return distributions.PermutationPValue(-s, neg, false)
	}
	return distributions.PermutationPValue(s, null, true)
}

// KendallTauA is (C - D)/(n(n-1)/2).
func KendallTauA(x, y []float64, alt stats.Alternative, dist kendall.Distribution) (stats.Correlation, error) {
	xs, ys, err := complete(x, y, "Kendall tau-a", 2)
	if err != nil {
		return stats.Correlation{}, err
	}
	c, err := kendall.Score(xs, ys)
	if err != nil {
		return stats.Correlation{}, err
	}
	return stats.Correlation{
		Measure:     "kendall-tau-a",
		Coefficient: c.S() / c.Pairs,
		N:           c.N,
		Test:        kendallTest(xs, ys, c, alt, dist),
	}, nil
}

// KendallTauB is (C - D)/√((n0 - n1)(n0 - n2)) where n1 and n2 are the pairs
// tied on x and on y.
func KendallTauB(x, y []float64, alt stats.Alternative, dist kendall.Distribution) (stats.Correlation, error) {
	xs, ys, err := complete(x, y, "Kendall tau-b", 2)
	if err != nil {
		return stats.Correlation{}, err
	}
	c, err := kendall.Score(xs, ys)
	if err != nil {
		return stats.Correlation{}, err
	}
	n1 := c.TiesX + c.TiesXY
	n2 := c.TiesY + c.TiesXY
	den := math.Sqrt((c.Pairs - n1) * (c.Pairs - n2))
	tau := 0.0
	if den > 0 {
		tau = c.S() / den
	}
	return stats.Correlation{
		Measure:     "kendall-tau-b",
		Coefficient: tau,
		N:           c.N,
		Test:        kendallTest(xs, ys, c, alt, dist),
	}, nil
}
