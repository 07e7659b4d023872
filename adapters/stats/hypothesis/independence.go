package hypothesis

import (
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// independence computes Pearson's chi-square (g=false) or G (g=true) for a
// crosstab. Yates shifts observed counts toward the expected ones, Williams
// divides by q = 1 + (nΣ1/R - 1)(nΣ1/C - 1)/(6n(r-1)(c-1)), Pearson
// multiplies by (n - 1)/n.
func independence(ct *tables.Crosstab, corr stats.Correction, g bool) (stats.TestResult, error) {
	if ct == nil {
		return stats.TestResult{}, core.NewValidationError("crosstab", "missing")
	}
	ct = ct.DropEmpty()
	if ct.Rows() < 2 || ct.Cols() < 2 {
		return stats.TestResult{}, core.NewValidationError("test of independence", "need at least two non-empty rows and columns")
	}
	n := ct.Total()
	exp := ct.Expected()
	obs := ct.Counts
	if corr == stats.Yates {
		obs = make([][]float64, len(ct.Counts))
		for i := range ct.Counts {
			obs[i] = yatesShift(ct.Counts[i], exp[i])
		}
	}

	stat := 0.0
	minExp, below5 := math.Inf(1), 0.0
	for i := range obs {
		for j, o := range obs[i] {
			e := exp[i][j]
			minExp = math.Min(minExp, e)
			if e < 5 {
				below5++
			}
			if g {
				if o > 0 {
					stat += 2 * o * math.Log(o/e)
				}
			} else {
				stat += (o - e) * (o - e) / e
			}
		}
	}

	r, c := float64(ct.Rows()), float64(ct.Cols())
	df := (r - 1) * (c - 1)
	switch corr {
	case stats.NoCorrection, stats.Yates, "":
	case stats.Williams:
		var invR, invC float64
		for _, v := range ct.RowTotals() {
			invR += 1 / v
		}
		for _, v := range ct.ColTotals() {
			invC += 1 / v
		}
		stat /= 1 + (n*invR-1)*(n*invC-1)/(6*n*df)
	case stats.PearsonCorr:
		stat *= (n - 1) / n
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("correction", string(corr))
	}

	name := "Pearson chi-square test of independence"
	if g {
		name = "G test of independence"
	}
	return stats.TestResult{
		Test:      name,
		Statistic: stat,
		DF:        df,
		PValue:    distributions.ChiSquarePValue(stat, df),
		N:         int(math.Round(n)),
		Extra: map[string]float64{
			"min_expected":      minExp,
			"prop_expected_lt5": below5 / (r * c),
		},
	}, nil
}

// PearsonIndependence is Pearson's chi-square test of independence.
func PearsonIndependence(ct *tables.Crosstab, corr stats.Correction) (stats.TestResult, error) {
	return independence(ct, corr, false)
}

// GIndependence is the likelihood-ratio test of independence.
func GIndependence(ct *tables.Crosstab, corr stats.Correction) (stats.TestResult, error) {
	return independence(ct, corr, true)
}
