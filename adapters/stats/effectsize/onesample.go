// Package effectsize computes standardized measures of the magnitude of a
// difference or association, independent of sample size.
package effectsize

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

func sample(x []float64, name string, need int) ([]float64, error) {
	data := tables.DropNaN(x)
	if len(data) < need {
		return nil, core.NewInsufficientDataError(name, len(data), need)
	}
	return data, nil
}

// CohenDOneSample is (mean - mu) / s.
func CohenDOneSample(x []float64, mu float64) (float64, error) {
	data, err := sample(x, "Cohen d (one-sample)", 2)
	if err != nil {
		return 0, err
	}
	m, v := stat.MeanVariance(data, nil)
	if v == 0 {
		return 0, core.NewDegenerateError("zero variance")
	}
	return (m - mu) / math.Sqrt(v), nil
}

// HedgesCorrection is the small-sample bias factor J(df). The exact form is
// Γ(df/2) / (√(df/2)·Γ((df-1)/2)); the approximation is 1 - 3/(4df - 1).
func HedgesCorrection(df float64, exact bool) float64 {
	if df <= 1 {
		return 1
	}
	if !exact {
		return 1 - 3/(4*df-1)
	}
	a, _ := math.Lgamma(df / 2)
	b, _ := math.Lgamma((df - 1) / 2)
	return math.Exp(a-b) / math.Sqrt(df/2)
}

// HedgesGOneSample corrects the one-sample Cohen d with J(n - 1).
func HedgesGOneSample(x []float64, mu float64, exact bool) (float64, error) {
	d, err := CohenDOneSample(x, mu)
	if err != nil {
		return 0, err
	}
	n := float64(len(tables.DropNaN(x)))
	return d * HedgesCorrection(n-1, exact), nil
}

func checkProportion(name string, p float64) error {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return core.NewValidationError(name, "must be a proportion in [0, 1]")
	}
	return nil
}

// CohenHOneSample is 2·asin(√p) - 2·asin(√p0).
func CohenHOneSample(p, p0 float64) (float64, error) {
	if err := checkProportion("p", p); err != nil {
		return 0, err
	}
	if err := checkProportion("p0", p0); err != nil {
		return 0, err
	}
	return 2*math.Asin(math.Sqrt(p)) - 2*math.Asin(math.Sqrt(p0)), nil
}

// CohenG is p - 0.5.
func CohenG(p float64) (float64, error) {
	if err := checkProportion("p", p); err != nil {
		return 0, err
	}
	return p - 0.5, nil
}

// AltRatio is the observed over the expected proportion.
func AltRatio(p, p0 float64) (float64, error) {
	if err := checkProportion("p", p); err != nil {
		return 0, err
	}
	if p0 <= 0 || p0 > 1 {
		return 0, core.NewValidationError("p0", "must be in (0, 1]")
	}
	return p / p0, nil
}

// CohenW is √(χ²/n) for a goodness-of-fit test.
func CohenW(chi2 float64, n int) (float64, error) {
	if n <= 0 {
		return 0, core.NewInsufficientDataError("Cohen w", n, 1)
	}
	return math.Sqrt(chi2 / float64(n)), nil
}

// CramerVGOF is √(χ² / (n(k - 1))) for k categories.
func CramerVGOF(chi2 float64, n, k int) (float64, error) {
	if n <= 0 || k < 2 {
		return 0, core.NewValidationError("Cramer V (GoF)", "need n > 0 and at least two categories")
	}
	return math.Sqrt(chi2 / (float64(n) * float64(k-1))), nil
}

// JohnstonBerryMielkeE scales χ² by its maximum n(1 - q)/q, where q is the
// smallest expected proportion (Johnston, Berry & Mielke, 2006).
func JohnstonBerryMielkeE(chi2 float64, n int, expectedProps []float64) (float64, error) {
	if n <= 0 || len(expectedProps) < 2 {
		return 0, core.NewValidationError("JBM E", "need n > 0 and at least two categories")
	}
	q := math.Inf(1)
	for _, p := range expectedProps {
		if p < q {
			q = p
		}
	}
	if q <= 0 || q >= 1 {
		return 0, core.NewValidationError("JBM E", "expected proportions must be in (0, 1)")
	}
	return chi2 * q / (float64(n) * (1 - q)), nil
}

// RosenthalCorrelation is r = z / √n.
func RosenthalCorrelation(z float64, n int) (float64, error) {
	if n <= 0 {
		return 0, core.NewInsufficientDataError("Rosenthal correlation", n, 1)
	}
	return z / math.Sqrt(float64(n)), nil
}

// DependentRankBiserial is (R+ - R-)/(R+ + R-) over the signed ranks of
// x - mu (King, Rosopa & Minium, 2011).
func DependentRankBiserial(x []float64, mu float64) (float64, error) {
	data, err := sample(x, "dependent rank-biserial", 1)
	if err != nil {
		return 0, err
	}
	diffs := make([]float64, len(data))
	for i, v := range data {
		diffs[i] = v - mu
	}
	s := ranks.SignedRanks(diffs)
	total := s.RankPlus + s.RankMinus
	if total == 0 {
		return 0, core.NewDegenerateError("all differences are zero")
	}
	return (s.RankPlus - s.RankMinus) / total, nil
}
