// Package correlation computes association coefficients between two
// variables together with a significance test of zero association.
package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func complete(x, y []float64, name string, need int) ([]float64, []float64, error) {
	xs, ys, err := tables.PairwiseComplete(x, y)
	if err != nil {
		return nil, nil, err
	}
	if len(xs) < need {
		return nil, nil, core.NewInsufficientDataError(name, len(xs), need)
	}
	return xs, ys, nil
}

// tTest is the usual t = r√((n-2)/(1-r²)) test with n-2 degrees of freedom.
func tTest(name string, r float64, n int, alt stats.Alternative) stats.TestResult {
	df := float64(n - 2)
	res := stats.TestResult{Test: name, DF: df, N: n}
	if math.Abs(r) >= 1 {
		res.Statistic = math.Copysign(math.Inf(1), r)
		res.PValue = distributions.NormalPValue(res.Statistic, alt)
		return res
	}
	res.Statistic = r * math.Sqrt(df/(1-r*r))
	res.PValue = distributions.StudentTPValue(res.Statistic, df, alt)
	return res
}

func pearsonR(xs, ys []float64) (float64, error) {
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, core.NewDegenerateError("a variable is constant")
	}
	return stat.Correlation(xs, ys, nil), nil
}

// Pearson is the product-moment correlation with a t test.
func Pearson(x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
	xs, ys, err := complete(x, y, "Pearson correlation", 3)
	if err != nil {
		return stats.Correlation{}, err
	}
	r, err := pearsonR(xs, ys)
	if err != nil {
		return stats.Correlation{}, err
	}
	return stats.Correlation{
		Measure:     "pearson",
		Coefficient: r,
		N:           len(xs),
		Test:        tTest("Pearson correlation t-test", r, len(xs), alt),
	}, nil
}

// Spearman is the Pearson correlation of the average ranks, tested with the
// t approximation.
func Spearman(x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
	xs, ys, err := complete(x, y, "Spearman correlation", 3)
	if err != nil {
		return stats.Correlation{}, err
	}
	rho, err := pearsonR(ranks.Average(xs), ranks.Average(ys))
	if err != nil {
		return stats.Correlation{}, err
	}
	return stats.Correlation{
		Measure:     "spearman",
		Coefficient: rho,
		N:           len(xs),
		Test:        tTest("Spearman correlation t-test", rho, len(xs), alt),
	}, nil
}

// binaryCode maps a two-category field to 1 (success) and 0, NaN for missing.
func binaryCode(field []string, success string) ([]float64, string, error) {
	cats := tables.Categories(field)
	if len(cats) != 2 {
		return nil, "", core.NewValidationError("binary field", "must have exactly two categories")
	}
	if success == "" {
		success = cats[0]
	} else if success != cats[0] && success != cats[1] {
		return nil, "", core.NewValidationError("success", "category not present in data")
	}
	out := make([]float64, len(field))
	for i, v := range field {
		switch v {
		case "":
			out[i] = math.NaN()
		case success:
			out[i] = 1
		}
	}
	return out, success, nil
}

// PointBiserial is the Pearson correlation between a dichotomy (success
// coded 1) and a scale variable.
func PointBiserial(field []string, scores []float64, success string, alt stats.Alternative) (stats.Correlation, error) {
	if len(field) != len(scores) {
		return stats.Correlation{}, core.ErrLengthMismatch
	}
	codes, _, err := binaryCode(field, success)
	if err != nil {
		return stats.Correlation{}, err
	}
	c, err := Pearson(codes, scores, alt)
	if err != nil {
		return stats.Correlation{}, err
	}
	c.Measure = "point-biserial"
	c.Test.Test = "point-biserial t-test"
	return c, nil
}

// Biserial assumes the dichotomy cuts an underlying normal variable:
// r_b = (m1 - m0)/s · pq/φ(z_p), with s the population standard deviation.
func Biserial(field []string, scores []float64, success string, alt stats.Alternative) (stats.Correlation, error) {
	if len(field) != len(scores) {
		return stats.Correlation{}, core.ErrLengthMismatch
	}
	codes, _, err := binaryCode(field, success)
	if err != nil {
		return stats.Correlation{}, err
	}
	xs, ys, err := complete(codes, scores, "biserial correlation", 3)
	if err != nil {
		return stats.Correlation{}, err
	}
	var ones, zeros []float64
	for i, c := range xs {
		if c == 1 {
			ones = append(ones, ys[i])
		} else {
			zeros = append(zeros, ys[i])
		}
	}
	if len(ones) == 0 || len(zeros) == 0 {
		return stats.Correlation{}, core.NewDegenerateError("one category has no scores")
	}
	n := float64(len(ys))
	p := float64(len(ones)) / n
	q := 1 - p
	_, v := stat.PopMeanVariance(ys, nil)
	if v == 0 {
		return stats.Correlation{}, core.NewDegenerateError("zero variance")
	}
	height := distributions.NormalPDF(distributions.NormalQuantile(p))
	rb := (stat.Mean(ones, nil) - stat.Mean(zeros, nil)) / math.Sqrt(v) * p * q / height

	rpb, _ := pearsonR(xs, ys)
	return stats.Correlation{
		Measure:     "biserial",
		Coefficient: rb,
		N:           len(ys),
		Test:        tTest("point-biserial t-test", rpb, len(ys), alt),
	}, nil
}

// RankBiserial is Glass's rank-biserial correlation between a dichotomy and
// an ordinal variable, tested with the Mann-Whitney normal approximation.
func RankBiserial(field []string, scores []float64, success string, alt stats.Alternative) (stats.Correlation, error) {
	if len(field) != len(scores) {
		return stats.Correlation{}, core.ErrLengthMismatch
	}
	codes, _, err := binaryCode(field, success)
	if err != nil {
		return stats.Correlation{}, err
	}
	xs, ys, err := complete(codes, scores, "rank-biserial correlation", 2)
	if err != nil {
		return stats.Correlation{}, err
	}
	var g1, g2 []float64
	for i, c := range xs {
		if c == 1 {
			g1 = append(g1, ys[i])
		} else {
			g2 = append(g2, ys[i])
		}
	}
	rb, err := effectsize.RankBiserialIndependent(g1, g2)
	if err != nil {
		return stats.Correlation{}, err
	}

	n1, n2 := float64(len(g1)), float64(len(g2))
	n := n1 + n2
	all := append(append([]float64(nil), g1...), g2...)
	r := ranks.Average(all)
	r1 := 0.0
	for _, v := range r[:len(g1)] {
		r1 += v
	}
	u := r1 - n1*(n1+1)/2
	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - ranks.TieCorrection(all)/(n*(n-1))))
	z := 0.0
	if sigma > 0 {
		z = (u - n1*n2/2) / sigma
	}
	return stats.Correlation{
		Measure:     "rank-biserial",
		Coefficient: rb,
		N:           len(ys),
		Test: stats.TestResult{
			Test:      "Mann-Whitney U normal approximation",
			Statistic: z,
			PValue:    distributions.NormalPValue(z, alt),
			N:         len(ys),
			Extra:     map[string]float64{"U": u},
		},
	}, nil
}
