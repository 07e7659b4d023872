package hypothesis

import (
	"fmt"
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// Cressie-Read lambdas of the named goodness-of-fit statistics.
const (
	LambdaPearson          = 1.0
	LambdaG                = 0.0
	LambdaFreemanTukey     = -0.5
	LambdaModLogLikelihood = -1.0
	LambdaNeyman           = -2.0
	LambdaCressieRead      = 2.0 / 3.0
)

// MultinomialEnumerationLimit bounds the number of outcomes enumerated by
// the exact multinomial test.
const MultinomialEnumerationLimit = 2_000_000

// GOFCounts tabulates data over categories and scales expected (counts or
// proportions, any positive weights) to the observed total. With nil
// categories the sorted distinct values are used; with nil expected every
// category is equally likely.
func GOFCounts(data []string, categories []string, expected []float64) (obs, exp []float64, err error) {
	if categories == nil {
		categories = tables.Categories(data)
	}
	if len(categories) < 2 {
		return nil, nil, core.NewValidationError("categories", "need at least two")
	}
	counts, valid := tables.CountCategories(data, categories)
	if valid == 0 {
		return nil, nil, core.NewInsufficientDataError("goodness-of-fit", 0, 1)
	}
	if expected == nil {
		expected = make([]float64, len(categories))
		for i := range expected {
			expected[i] = 1
		}
	}
	if len(expected) != len(categories) {
		return nil, nil, fmt.Errorf("%w: %d expected values for %d categories", core.ErrLengthMismatch, len(expected), len(categories))
	}
	weight := 0.0
	for _, e := range expected {
		if e <= 0 {
			return nil, nil, core.NewValidationError("expected", "values must be positive")
		}
		weight += e
	}
	obs = make([]float64, len(categories))
	exp = make([]float64, len(categories))
	for i, c := range counts {
		obs[i] = float64(c)
		exp[i] = expected[i] / weight * float64(valid)
	}
	return obs, exp, nil
}

// powerDivergence is the Cressie-Read statistic 2/(λ(λ+1)) ΣO((O/E)^λ - 1)
// with its limits at λ = 0 and λ = -1.
func powerDivergence(obs, exp []float64, lambda float64) (float64, error) {
	sum := 0.0
	for i, o := range obs {
		e := exp[i]
		switch {
		case lambda == 0:
			if o > 0 {
				sum += o * math.Log(o/e)
			}
		case lambda == -1:
			if o == 0 {
				return 0, core.NewDegenerateError("zero observed count with lambda -1")
			}
			sum += e * math.Log(e/o)
		default:
			if o == 0 {
				// the term tends to 0 for λ > -1
				if lambda < -1 {
					return 0, core.NewDegenerateError(fmt.Sprintf("zero observed count with lambda %g", lambda))
				}
				continue
			}
			sum += o * (math.Pow(o/e, lambda) - 1)
		}
	}
	switch lambda {
	case 0, -1:
		return 2 * sum, nil
	}
	return 2 / (lambda * (lambda + 1)) * sum, nil
}

// yatesShift moves every observed count half a unit toward its expectation.
func yatesShift(obs, exp []float64) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		switch {
		case o > exp[i]:
			out[i] = math.Max(exp[i], o-0.5)
		case o < exp[i]:
			out[i] = math.Min(exp[i], o+0.5)
		default:
			out[i] = o
		}
	}
	return out
}

// PowerDivergenceGOF tests observed counts against expected counts with the
// Cressie-Read statistic for lambda. Corrections: Yates shifts the observed
// counts, Williams divides by 1 + (k² - 1)/(6n(k - 1)), Pearson multiplies
// by (n - 1)/n.
func PowerDivergenceGOF(obs, exp []float64, lambda float64, corr stats.Correction) (stats.TestResult, error) {
	if len(obs) != len(exp) {
		return stats.TestResult{}, core.ErrLengthMismatch
	}
	k := float64(len(obs))
	if k < 2 {
		return stats.TestResult{}, core.NewValidationError("categories", "need at least two")
	}
	n := 0.0
	minExp := math.Inf(1)
	for i, o := range obs {
		n += o
		minExp = math.Min(minExp, exp[i])
	}
	if corr == stats.Yates {
		obs = yatesShift(obs, exp)
	}
	chi, err := powerDivergence(obs, exp, lambda)
	if err != nil {
		return stats.TestResult{}, err
	}
	df := k - 1
	switch corr {
	case stats.NoCorrection, stats.Yates, "":
	case stats.Williams:
		chi /= 1 + (k*k-1)/(6*n*df)
	case stats.PearsonCorr:
		chi *= (n - 1) / n
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("correction", string(corr))
	}
	return stats.TestResult{
		Test:      gofName(lambda),
		Statistic: chi,
		DF:        df,
		PValue:    distributions.ChiSquarePValue(chi, df),
		N:         int(math.Round(n)),
		Extra:     map[string]float64{"lambda": lambda, "min_expected": minExp},
	}, nil
}

func gofName(lambda float64) string {
	switch lambda {
	case LambdaPearson:
		return "Pearson chi-square goodness-of-fit"
	case LambdaG:
		return "G goodness-of-fit"
	case LambdaFreemanTukey:
		return "Freeman-Tukey goodness-of-fit"
	case LambdaModLogLikelihood:
		return "modified log-likelihood goodness-of-fit"
	case LambdaNeyman:
		return "Neyman goodness-of-fit"
	}
	return fmt.Sprintf("Cressie-Read (lambda=%.4g) goodness-of-fit", lambda)
}

// PearsonGOF is Σ(O - E)²/E.
func PearsonGOF(obs, exp []float64, corr stats.Correction) (stats.TestResult, error) {
	return PowerDivergenceGOF(obs, exp, LambdaPearson, corr)
}

// GGOF is the likelihood-ratio statistic 2ΣO ln(O/E).
func GGOF(obs, exp []float64, corr stats.Correction) (stats.TestResult, error) {
	return PowerDivergenceGOF(obs, exp, LambdaG, corr)
}

// FreemanTukeyGOF is 4Σ(√O - √E)².
func FreemanTukeyGOF(obs, exp []float64, corr stats.Correction) (stats.TestResult, error) {
	return PowerDivergenceGOF(obs, exp, LambdaFreemanTukey, corr)
}

// NeymanGOF is Σ(O - E)²/O.
func NeymanGOF(obs, exp []float64, corr stats.Correction) (stats.TestResult, error) {
	return PowerDivergenceGOF(obs, exp, LambdaNeyman, corr)
}

// ModLogLikelihoodGOF is 2ΣE ln(E/O).
func ModLogLikelihoodGOF(obs, exp []float64, corr stats.Correction) (stats.TestResult, error) {
	return PowerDivergenceGOF(obs, exp, LambdaModLogLikelihood, corr)
}

// MultinomialGOF is the exact test: the p-value sums the probabilities of
// every table with the same total that is no more likely than the observed one.
func MultinomialGOF(obs, exp []float64) (stats.TestResult, error) {
	if len(obs) != len(exp) {
		return stats.TestResult{}, core.ErrLengthMismatch
	}
	k := len(obs)
	counts := make([]int, k)
	n := 0
	total := 0.0
	for i, o := range obs {
		counts[i] = int(math.Round(o))
		n += counts[i]
		total += exp[i]
	}
	if k < 2 || n == 0 {
		return stats.TestResult{}, core.NewInsufficientDataError("exact multinomial", n, 1)
	}
	if outcomes := math.Exp(distributions.LogChoose(n+k-1, k-1)); outcomes > MultinomialEnumerationLimit {
		return stats.TestResult{}, core.NewValidationError("exact multinomial", fmt.Sprintf("%.0f outcomes exceed the enumeration limit", outcomes))
	}
	probs := make([]float64, k)
	for i, e := range exp {
		probs[i] = e / total
	}

	observed := distributions.MultinomialPMF(counts, probs)
	limit := observed * (1 + 1e-7)
	p := 0.0
	current := make([]int, k)
	var walk func(i, left int)
	walk = func(i, left int) {
		if i == k-1 {
			current[i] = left
			if q := distributions.MultinomialPMF(current, probs); q <= limit {
				p += q
			}
			return
		}
		for c := 0; c <= left; c++ {
			current[i] = c
			walk(i+1, left-c)
		}
	}
	walk(0, n)

	return stats.TestResult{
		Test:      "exact multinomial goodness-of-fit",
		Statistic: observed,
		PValue:    math.Min(1, p),
		N:         n,
	}, nil
}
