// Package distributions provides the reference distributions every test in
// the catalogue draws its p-values from. Continuous distributions come from
// gonum's distuv; the discrete null distributions of rank statistics are
// built here by recurrence.
package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"stikpet/domain/stats"
)

// NormalCDF computes cumulative distribution function for standard normal
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalSF is the upper tail 1 - Φ(x), computed without cancellation.
func NormalSF(x float64) float64 {
	return distuv.UnitNormal.Survival(x)
}

// NormalQuantile computes quantile function for standard normal (inverse CDF)
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// NormalPDF is the standard normal density.
func NormalPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// NormalPValue converts a z statistic into a p-value for the given alternative.
func NormalPValue(z float64, alt stats.Alternative) float64 {
	switch alt {
	case stats.Less:
		return NormalCDF(z)
	case stats.Greater:
		return NormalSF(z)
	default:
		return clamp01(2 * NormalSF(math.Abs(z)))
	}
}

// StudentTPValue computes the p-value of a t statistic with df degrees of freedom.
func StudentTPValue(t, df float64, alt stats.Alternative) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	switch alt {
	case stats.Less:
		return tDist.CDF(t)
	case stats.Greater:
		return tDist.Survival(t)
	default:
		return clamp01(2 * tDist.Survival(math.Abs(t)))
	}
}

// StudentTQuantile returns the p-th quantile of Student's t.
func StudentTQuantile(p, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

// ChiSquarePValue computes the upper-tail p-value for chi-square distribution
func ChiSquarePValue(chiSquare, df float64) float64 {
	if df <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: df}
	return chiDist.Survival(chiSquare)
}

// ChiSquareQuantile returns the p-th quantile of the chi-square distribution.
func ChiSquareQuantile(p, df float64) float64 {
	return distuv.ChiSquared{K: df}.Quantile(p)
}

// FPValue computes the upper-tail p-value for F-distribution (ANOVA, regression)
func FPValue(fStatistic, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return 1.0
	}
	if fStatistic <= 0 {
		return 1.0
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return fDist.Survival(fStatistic)
}

// BinomialPMF is P(X = k) for X ~ Bin(n, p).
func BinomialPMF(k, n int, p float64) float64 {
	if k < 0 || k > n {
		return 0
	}
	return distuv.Binomial{N: float64(n), P: p}.Prob(float64(k))
}

// BinomialCDF is P(X <= k) for X ~ Bin(n, p).
func BinomialCDF(k, n int, p float64) float64 {
	if k < 0 {
		return 0
	}
	if k >= n {
		return 1
	}
	return distuv.Binomial{N: float64(n), P: p}.CDF(float64(k))
}

// BinomialMethod selects how a two-sided exact binomial p-value is formed.
type BinomialMethod string

const (
	// BinomialDouble doubles the smaller one-sided p-value.
	BinomialDouble BinomialMethod = "double"
	// BinomialSmallP sums the probabilities of all outcomes no more likely than the observed one.
	BinomialSmallP BinomialMethod = "small-p"
	// BinomialEqualDistance sums both tails at the same distance from the expected count.
	BinomialEqualDistance BinomialMethod = "equal-distance"
)

// BinomialPValue is the exact p-value of observing k successes in n trials
// when the success probability is p0.
func BinomialPValue(k, n int, p0 float64, alt stats.Alternative, method BinomialMethod) float64 {
	switch alt {
	case stats.Less:
		return BinomialCDF(k, n, p0)
	case stats.Greater:
		return 1 - BinomialCDF(k-1, n, p0)
	}

	switch method {
	case BinomialSmallP:
		observed := BinomialPMF(k, n, p0)
		// Relative tolerance as in R's binom.test.
		limit := observed * (1 + 1e-7)
		total := 0.0
		for i := 0; i <= n; i++ {
			if pi := BinomialPMF(i, n, p0); pi <= limit {
				total += pi
			}
		}
		return clamp01(total)
	case BinomialEqualDistance:
		expected := float64(n) * p0
		dist := math.Abs(float64(k) - expected)
		lo := int(math.Floor(expected - dist + 1e-9))
		hi := int(math.Ceil(expected + dist - 1e-9))
		return clamp01(BinomialCDF(lo, n, p0) + 1 - BinomialCDF(hi-1, n, p0))
	default:
		lower := BinomialCDF(k, n, p0)
		upper := 1 - BinomialCDF(k-1, n, p0)
		return clamp01(2 * math.Min(lower, upper))
	}
}

// LogFactorial returns ln(n!).
func LogFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}

// LogChoose returns ln(C(n, k)).
func LogChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return LogFactorial(n) - LogFactorial(k) - LogFactorial(n-k)
}

// HypergeometricPMF is the probability of k successes in a draw of size
// draws from a population of size total holding successes successes.
func HypergeometricPMF(k, successes, draws, total int) float64 {
	if k < 0 || k > successes || k > draws || draws-k > total-successes {
		return 0
	}
	return math.Exp(LogChoose(successes, k) + LogChoose(total-successes, draws-k) - LogChoose(total, draws))
}

// MultinomialPMF is the probability of the given category counts under the
// category probabilities probs.
func MultinomialPMF(counts []int, probs []float64) float64 {
	n := 0
	logP := 0.0
	for i, c := range counts {
		n += c
		if c == 0 {
			continue
		}
		if probs[i] <= 0 {
			return 0
		}
		logP += float64(c)*math.Log(probs[i]) - LogFactorial(c)
	}
	return math.Exp(logP + LogFactorial(n))
}

// PermutationPValue computes exact p-value from permutation test results
func PermutationPValue(observedStatistic float64, nullDistribution []float64, twoTailed bool) float64 {
	if len(nullDistribution) == 0 {
		return 1.0
	}

	extremeCount := 0
	for _, nullStat := range nullDistribution {
		if twoTailed {
			if math.Abs(nullStat) >= math.Abs(observedStatistic)-1e-12 {
				extremeCount++
			}
		} else {
			if nullStat >= observedStatistic-1e-12 {
				extremeCount++
			}
		}
	}

	return float64(extremeCount) / float64(len(nullDistribution))
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
