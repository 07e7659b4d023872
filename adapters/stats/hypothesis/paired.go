package hypothesis

import (
	"fmt"
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func differences(x, y []float64, name string) ([]float64, error) {
	xs, ys, err := tables.PairwiseComplete(x, y)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, core.NewInsufficientDataError(name, 0, 1)
	}
	d := make([]float64, len(xs))
	for i := range xs {
		d[i] = xs[i] - ys[i]
	}
	return d, nil
}

// PairedT is the one-sample t-test on the differences x - y.
func PairedT(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	d, err := differences(x, y, "paired t")
	if err != nil {
		return stats.TestResult{}, err
	}
	res, err := StudentTOneSample(d, 0, alt)
	if err != nil {
		return stats.TestResult{}, err
	}
	res.Test = "paired Student t"
	return res, nil
}

// WilcoxonPaired is the signed-rank test on the differences x - y.
func WilcoxonPaired(x, y []float64, alt stats.Alternative, continuity bool) (stats.TestResult, error) {
	d, err := differences(x, y, "Wilcoxon paired")
	if err != nil {
		return stats.TestResult{}, err
	}
	return signedRankTest("Wilcoxon paired signed-rank", d, alt, continuity)
}

// SignPaired is the sign test on the differences x - y.
func SignPaired(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	d, err := differences(x, y, "paired sign")
	if err != nil {
		return stats.TestResult{}, err
	}
	res, err := Sign(d, 0, alt)
	if err != nil {
		return stats.TestResult{}, err
	}
	res.Test = "paired sign"
	return res, nil
}

// McNemar tests the symmetry of the discordant cells b and c of a paired
// 2x2 table. The exact binomial p-value is reported as Extra["exact_p"].
func McNemar(ct *tables.Crosstab, corr stats.Correction) (stats.TestResult, error) {
	_, b, c, _, err := ct.Cells2x2()
	if err != nil {
		return stats.TestResult{}, err
	}
	if b+c == 0 {
		return stats.TestResult{}, core.NewDegenerateError("no discordant pairs")
	}
	diff := math.Abs(b - c)
	switch corr {
	case stats.Yates:
		diff = math.Max(0, diff-1)
	case stats.NoCorrection, "":
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("correction", string(corr))
	}
	chi := diff * diff / (b + c)
	exact := distributions.BinomialPValue(int(math.Min(b, c)), int(b+c), 0.5, stats.TwoSided, distributions.BinomialDouble)
	return stats.TestResult{
		Test:      "McNemar",
		Statistic: chi,
		DF:        1,
		PValue:    distributions.ChiSquarePValue(chi, 1),
		N:         int(ct.Total()),
		Extra:     map[string]float64{"exact_p": exact},
	}, nil
}

// McNemarBowker generalises McNemar to a k×k table. Pairs of cells that are
// both empty do not contribute and do not count toward the degrees of freedom.
func McNemarBowker(ct *tables.Crosstab) (stats.TestResult, error) {
	k := ct.Rows()
	if k < 2 || k != ct.Cols() {
		return stats.TestResult{}, core.NewValidationError("McNemar-Bowker", "table must be square")
	}
	chi, df := 0.0, 0.0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			s := ct.Counts[i][j] + ct.Counts[j][i]
			if s == 0 {
				continue
			}
			d := ct.Counts[i][j] - ct.Counts[j][i]
			chi += d * d / s
			df++
		}
	}
	if df == 0 {
		return stats.TestResult{}, core.NewDegenerateError("no discordant pairs")
	}
	return stats.TestResult{
		Test:      "McNemar-Bowker",
		Statistic: chi,
		DF:        df,
		PValue:    distributions.ChiSquarePValue(chi, df),
		N:         int(ct.Total()),
	}, nil
}

// completeRows keeps subjects (rows) without missing values and checks
// every row has the same number of conditions.
func completeRows(data [][]float64, name string) ([][]float64, int, error) {
	if len(data) == 0 {
		return nil, 0, core.NewInsufficientDataError(name, 0, 2)
	}
	k := len(data[0])
	if k < 2 {
		return nil, 0, core.NewValidationError(name, "need at least two conditions")
	}
	out := make([][]float64, 0, len(data))
	for i, row := range data {
		if len(row) != k {
			return nil, 0, fmt.Errorf("%w: row %d has %d values, want %d", core.ErrLengthMismatch, i, len(row), k)
		}
		ok := true
		for _, v := range row {
			if math.IsNaN(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	if len(out) < 2 {
		return nil, 0, core.NewInsufficientDataError(name, len(out), 2)
	}
	return out, k, nil
}

// CochranQ tests k related binary (0/1) measurements per subject.
func CochranQ(data [][]float64) (stats.TestResult, error) {
	rows, k, err := completeRows(data, "Cochran Q")
	if err != nil {
		return stats.TestResult{}, err
	}
	colSums := make([]float64, k)
	var total, rowSq float64
	for _, row := range rows {
		r := 0.0
		for j, v := range row {
			if v != 0 && v != 1 {
				return stats.TestResult{}, core.NewValidationError("Cochran Q", "values must be 0 or 1")
			}
			colSums[j] += v
			r += v
		}
		total += r
		rowSq += r * r
	}
	fk := float64(k)
	den := fk*total - rowSq
	if den == 0 {
		return stats.TestResult{}, core.NewDegenerateError("every subject responds identically")
	}
	colSq := 0.0
	for _, c := range colSums {
		colSq += c * c
	}
	q := (fk - 1) * (fk*colSq - total*total) / den
	return stats.TestResult{
		Test:      "Cochran Q",
		Statistic: q,
		DF:        fk - 1,
		PValue:    distributions.ChiSquarePValue(q, fk-1),
		N:         len(rows),
	}, nil
}

// Friedman ranks the k conditions within every subject and compares the
// rank sums, with a correction for within-subject ties.
func Friedman(data [][]float64) (stats.TestResult, error) {
	rows, k, err := completeRows(data, "Friedman")
	if err != nil {
		return stats.TestResult{}, err
	}
	rankSums := make([]float64, k)
	ties := 0.0
	for _, row := range rows {
		for j, r := range ranks.Average(row) {
			rankSums[j] += r
		}
		ties += ranks.TieCorrection(row)
	}
	n, fk := float64(len(rows)), float64(k)
	sq := 0.0
	for _, r := range rankSums {
		sq += r * r
	}
	chi := 12/(n*fk*(fk+1))*sq - 3*n*(fk+1)
	corr := 1 - ties/(n*(fk*fk*fk-fk))
	if corr <= 0 {
		return stats.TestResult{}, core.NewDegenerateError("all values tied within every subject")
	}
	chi /= corr
	return stats.TestResult{
		Test:      "Friedman",
		Statistic: chi,
		DF:        fk - 1,
		PValue:    distributions.ChiSquarePValue(chi, fk-1),
		N:         len(rows),
	}, nil
}
