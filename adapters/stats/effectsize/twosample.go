package effectsize

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

// PooledSD is √(((n1-1)s1² + (n2-1)s2²) / (n1 + n2 - 2)).
func PooledSD(x, y []float64) float64 {
	n1, n2 := float64(len(x)), float64(len(y))
	_, v1 := stat.MeanVariance(x, nil)
	_, v2 := stat.MeanVariance(y, nil)
	return math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
}

// CohenDs is the difference in means over the pooled standard deviation.
func CohenDs(x, y []float64) (float64, error) {
	xs, err := sample(x, "Cohen d_s", 2)
	if err != nil {
		return 0, err
	}
	ys, err := sample(y, "Cohen d_s", 2)
	if err != nil {
		return 0, err
	}
	sp := PooledSD(xs, ys)
	if sp == 0 {
		return 0, core.NewDegenerateError("zero pooled variance")
	}
	return (stat.Mean(xs, nil) - stat.Mean(ys, nil)) / sp, nil
}

// HedgesG corrects Cohen d_s with J(n1 + n2 - 2).
func HedgesG(x, y []float64, exact bool) (float64, error) {
	d, err := CohenDs(x, y)
	if err != nil {
		return 0, err
	}
	df := float64(len(tables.DropNaN(x)) + len(tables.DropNaN(y)) - 2)
	return d * HedgesCorrection(df, exact), nil
}

// GlassDelta standardizes by the control group (y) standard deviation only.
func GlassDelta(x, y []float64) (float64, error) {
	xs, err := sample(x, "Glass delta", 1)
	if err != nil {
		return 0, err
	}
	ys, err := sample(y, "Glass delta", 2)
	if err != nil {
		return 0, err
	}
	sd := stat.StdDev(ys, nil)
	if sd == 0 {
		return 0, core.NewDegenerateError("zero control variance")
	}
	return (stat.Mean(xs, nil) - stat.Mean(ys, nil)) / sd, nil
}

// CohenDPaired (d_z) is the mean paired difference over the standard deviation of the differences.
func CohenDPaired(x, y []float64) (float64, error) {
	xs, ys, err := tables.PairwiseComplete(x, y)
	if err != nil {
		return 0, err
	}
	if len(xs) < 2 {
		return 0, core.NewInsufficientDataError("Cohen d_z", len(xs), 2)
	}
	diffs := make([]float64, len(xs))
	for i := range xs {
		diffs[i] = xs[i] - ys[i]
	}
	m, v := stat.MeanVariance(diffs, nil)
	if v == 0 {
		return 0, core.NewDegenerateError("zero variance of differences")
	}
	return m / math.Sqrt(v), nil
}

// VarghaDelaneyA is P(X > Y) + ½P(X = Y), computed from the rank sum of x.
func VarghaDelaneyA(x, y []float64) (float64, error) {
	xs, err := sample(x, "Vargha-Delaney A", 1)
	if err != nil {
		return 0, err
	}
	ys, err := sample(y, "Vargha-Delaney A", 1)
	if err != nil {
		return 0, err
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	r := ranks.Average(append(append([]float64(nil), xs...), ys...))
	r1 := 0.0
	for _, v := range r[:len(xs)] {
		r1 += v
	}
	return (r1/n1 - (n1+1)/2) / n2, nil
}

// CliffDelta is P(X > Y) - P(X < Y) = 2A - 1.
func CliffDelta(x, y []float64) (float64, error) {
	a, err := VarghaDelaneyA(x, y)
	if err != nil {
		return 0, err
	}
	return 2*a - 1, nil
}

// RankBiserialIndependent is 2(mean rank of x - mean rank of y)/(n1 + n2)
// (Glass, 1965). It equals Cliff's delta.
func RankBiserialIndependent(x, y []float64) (float64, error) {
	xs, err := sample(x, "rank-biserial", 1)
	if err != nil {
		return 0, err
	}
	ys, err := sample(y, "rank-biserial", 1)
	if err != nil {
		return 0, err
	}
	r := ranks.Average(append(append([]float64(nil), xs...), ys...))
	m1 := stat.Mean(r[:len(xs)], nil)
	m2 := stat.Mean(r[len(xs):], nil)
	return 2 * (m1 - m2) / float64(len(r)), nil
}

// CommonLanguageNormal is McGraw & Wong's (1992) Φ((m1 - m2)/√(s1² + s2²)).
func CommonLanguageNormal(x, y []float64) (float64, error) {
	xs, err := sample(x, "common language", 2)
	if err != nil {
		return 0, err
	}
	ys, err := sample(y, "common language", 2)
	if err != nil {
		return 0, err
	}
	m1, v1 := stat.MeanVariance(xs, nil)
	m2, v2 := stat.MeanVariance(ys, nil)
	if v1+v2 == 0 {
		return 0, core.NewDegenerateError("zero variance in both groups")
	}
	return distributions.NormalCDF((m1 - m2) / math.Sqrt(v1+v2)), nil
}

// CommonLanguage is the probability that a random x exceeds a random y, ties
// counted half. It is the Vargha-Delaney A.
func CommonLanguage(x, y []float64) (float64, error) {
	return VarghaDelaneyA(x, y)
}
