// Package hypothesis implements significance tests for one sample, two
// independent or paired samples, many groups and contingency tables. Every
// test drops missing values first and returns a stats.TestResult.
package hypothesis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/adapters/stats/centraltendency"
	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// WilcoxonExactLimit is the largest number of non-zero differences for which
// the exact signed-rank distribution is used when there are no ties.
const WilcoxonExactLimit = 25

func sample(x []float64, name string, need int) ([]float64, error) {
	data := tables.DropNaN(x)
	if len(data) < need {
		return nil, core.NewInsufficientDataError(name, len(data), need)
	}
	return data, nil
}

func checkP0(p0 float64) error {
	if p0 <= 0 || p0 >= 1 {
		return core.NewValidationError("p0", "must be in (0, 1)")
	}
	return nil
}

// Binomial is the exact test of the share of the success category.
func Binomial(data []string, success string, p0 float64, alt stats.Alternative, method distributions.BinomialMethod) (stats.TestResult, error) {
	if err := checkP0(p0); err != nil {
		return stats.TestResult{}, err
	}
	k, n, _, err := tables.BinaryCounts(data, success)
	if err != nil {
		return stats.TestResult{}, err
	}
	return stats.TestResult{
		Test:      "exact binomial",
		Statistic: float64(k),
		PValue:    distributions.BinomialPValue(k, n, p0, alt, method),
		N:         n,
		Extra:     map[string]float64{"proportion": float64(k) / float64(n)},
	}, nil
}

// proportionZ builds the score or Wald z for k successes out of n. The
// standard error is computed from p0 (score) or from the sample share (Wald).
func proportionZ(name string, data []string, success string, p0 float64, alt stats.Alternative, corr stats.Correction, wald bool) (stats.TestResult, error) {
	if err := checkP0(p0); err != nil {
		return stats.TestResult{}, err
	}
	k, n, _, err := tables.BinaryCounts(data, success)
	if err != nil {
		return stats.TestResult{}, err
	}
	fn := float64(n)
	phat := float64(k) / fn
	p := p0
	if wald {
		p = phat
	}
	se := math.Sqrt(fn * p * (1 - p))
	if se == 0 {
		return stats.TestResult{}, core.NewDegenerateError("all observations in one category")
	}
	diff := float64(k) - fn*p0
	switch corr {
	case stats.Yates:
		diff = math.Copysign(math.Max(0, math.Abs(diff)-0.5), diff)
	case stats.NoCorrection, "":
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("correction", string(corr))
	}
	z := diff / se
	return stats.TestResult{
		Test:      name,
		Statistic: z,
		PValue:    distributions.NormalPValue(z, alt),
		N:         n,
		Extra:     map[string]float64{"proportion": phat},
	}, nil
}

// ScoreOneSample is the one-sample proportion z-test with the null standard error.
func ScoreOneSample(data []string, success string, p0 float64, alt stats.Alternative, corr stats.Correction) (stats.TestResult, error) {
	return proportionZ("one-sample score", data, success, p0, alt, corr, false)
}

// WaldOneSample is the one-sample proportion z-test with the sample standard error.
func WaldOneSample(data []string, success string, p0 float64, alt stats.Alternative, corr stats.Correction) (stats.TestResult, error) {
	return proportionZ("one-sample Wald", data, success, p0, alt, corr, true)
}

// Sign tests whether the median equals mu by counting values above it.
// Values equal to mu are dropped.
func Sign(x []float64, mu float64, alt stats.Alternative) (stats.TestResult, error) {
	data, err := sample(x, "sign test", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	var above, below int
	for _, v := range data {
		switch {
		case v > mu:
			above++
		case v < mu:
			below++
		}
	}
	n := above + below
	if n == 0 {
		return stats.TestResult{}, core.NewDegenerateError("all values equal the hypothesized median")
	}
	return stats.TestResult{
		Test:      "one-sample sign",
		Statistic: float64(above),
		PValue:    distributions.BinomialPValue(above, n, 0.5, alt, distributions.BinomialDouble),
		N:         n,
		Extra:     map[string]float64{"below": float64(below), "ties": float64(len(data) - n)},
	}, nil
}

// WilcoxonOneSample is the signed-rank test of x - mu. Zero differences are
// dropped. Without ties and with at most WilcoxonExactLimit differences the
// exact distribution of W+ is used, otherwise the normal approximation with
// tie correction and an optional continuity correction.
func WilcoxonOneSample(x []float64, mu float64, alt stats.Alternative, continuity bool) (stats.TestResult, error) {
	data, err := sample(x, "Wilcoxon signed-rank", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	diffs := make([]float64, len(data))
	for i, v := range data {
		diffs[i] = v - mu
	}
	return signedRankTest("Wilcoxon signed-rank", diffs, alt, continuity)
}

func signedRankTest(name string, diffs []float64, alt stats.Alternative, continuity bool) (stats.TestResult, error) {
	s := ranks.SignedRanks(diffs)
	n := len(s.Ranks)
	if n == 0 {
		return stats.TestResult{}, core.NewDegenerateError("all differences are zero")
	}
	res := stats.TestResult{Statistic: s.RankPlus, N: n, Extra: map[string]float64{"zeros": float64(s.Zeros)}}

	if s.TieSum == 0 && n <= WilcoxonExactLimit {
		d, err := distributions.NewSignedRankDist(n)
		if err != nil {
			return stats.TestResult{}, err
		}
		res.Test = name + " exact"
		res.PValue = d.PValue(s.RankPlus, alt)
		return res, nil
	}

	fn := float64(n)
	mean := fn * (fn + 1) / 4
	sd := math.Sqrt(fn*(fn+1)*(2*fn+1)/24 - s.TieSum/48)
	diff := s.RankPlus - mean
	if continuity {
		diff = continuityShift(diff, alt)
	}
	z := 0.0
	if sd > 0 {
		z = diff / sd
	}
	res.Test = name + " normal approximation"
	res.PValue = distributions.NormalPValue(z, alt)
	res.Extra["z"] = z
	return res, nil
}

// continuityShift moves a statistic half a unit toward zero, or toward the
// tested tail for one-sided alternatives.
func continuityShift(diff float64, alt stats.Alternative) float64 {
	switch alt {
	case stats.Greater:
		return diff - 0.5
	case stats.Less:
		return diff + 0.5
	}
	return math.Copysign(math.Max(0, math.Abs(diff)-0.5), diff)
}

// Trinomial is the sign test variant that keeps ties with the hypothesized
// median (Bian, McAleer & Wong, 2011). The statistic is n+ - n-.
func Trinomial(x []float64, mu float64, alt stats.Alternative) (stats.TestResult, error) {
	data, err := sample(x, "trinomial test", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	var pos, neg int
	for _, v := range data {
		switch {
		case v > mu:
			pos++
		case v < mu:
			neg++
		}
	}
	n := len(data)
	p0 := float64(n-pos-neg) / float64(n)
	nd := pos - neg

	upper := func(d int) float64 { return trinomialUpper(n, d, p0) }
	var p float64
	switch alt {
	case stats.Greater:
		p = upper(nd)
	case stats.Less:
		p = upper(-nd)
	default:
		p = math.Min(1, 2*upper(absInt(nd)))
	}
	return stats.TestResult{
		Test:      "trinomial",
		Statistic: float64(nd),
		PValue:    p,
		N:         n,
		Extra:     map[string]float64{"ties": float64(n - pos - neg)},
	}, nil
}

// trinomialUpper is P(N+ - N- >= d) when ties occur with probability p0 and
// the other outcomes split evenly.
func trinomialUpper(n, d int, p0 float64) float64 {
	if d <= -n {
		return 1
	}
	half := (1 - p0) / 2
	total := 0.0
	for z := max(d, -n); z <= n; z++ {
		az := absInt(z)
		for k := 0; 2*k+az <= n; k++ {
			plus, minus, ties := az+k, k, n-az-2*k
			if z < 0 {
				plus, minus = minus, plus
			}
			logp := distributions.LogFactorial(n) - distributions.LogFactorial(plus) -
				distributions.LogFactorial(minus) - distributions.LogFactorial(ties)
			if plus+minus > 0 {
				logp += float64(plus+minus) * math.Log(half)
			}
			if ties > 0 {
				logp += float64(ties) * math.Log(p0)
			}
			total += math.Exp(logp)
		}
	}
	return math.Min(1, total)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// StudentTOneSample is t = (mean - mu)/(s/√n) with n - 1 degrees of freedom.
func StudentTOneSample(x []float64, mu float64, alt stats.Alternative) (stats.TestResult, error) {
	data, err := sample(x, "one-sample t", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	m, v := stat.MeanVariance(data, nil)
	if v == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero variance")
	}
	n := float64(len(data))
	t := (m - mu) / math.Sqrt(v/n)
	return stats.TestResult{
		Test:      "one-sample Student t",
		Statistic: t,
		DF:        n - 1,
		PValue:    distributions.StudentTPValue(t, n-1, alt),
		N:         len(data),
		Extra:     map[string]float64{"mean": m},
	}, nil
}

// ZOneSample uses a known population standard deviation sigma. A sigma of
// zero or less falls back to the sample standard deviation.
func ZOneSample(x []float64, mu, sigma float64, alt stats.Alternative) (stats.TestResult, error) {
	data, err := sample(x, "one-sample z", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	m, v := stat.MeanVariance(data, nil)
	if sigma <= 0 {
		sigma = math.Sqrt(v)
	}
	if sigma == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero variance")
	}
	z := (m - mu) / (sigma / math.Sqrt(float64(len(data))))
	return stats.TestResult{
		Test:      "one-sample z",
		Statistic: z,
		PValue:    distributions.NormalPValue(z, alt),
		N:         len(data),
		Extra:     map[string]float64{"mean": m},
	}, nil
}

// TrimmedMeanOneSample is the Tukey-McLaughlin test of a trimmed mean, with
// the standard error from the winsorized variance and h - 1 degrees of
// freedom, h being the number of values left after trimming.
func TrimmedMeanOneSample(x []float64, mu, trim float64, alt stats.Alternative) (stats.TestResult, error) {
	data, err := sample(x, "trimmed mean test", 3)
	if err != nil {
		return stats.TestResult{}, err
	}
	tm, err := centraltendency.TrimmedMean(data, trim)
	if err != nil {
		return stats.TestResult{}, err
	}
	wv, err := centraltendency.WinsorizedVariance(data, trim)
	if err != nil {
		return stats.TestResult{}, err
	}
	n := float64(len(data))
	h := n - 2*math.Floor(trim*n)
	if h < 2 {
		return stats.TestResult{}, core.NewInsufficientDataError("trimmed mean test", int(h), 2)
	}
	se := math.Sqrt(wv) / ((1 - 2*trim) * math.Sqrt(n))
	if se == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero winsorized variance")
	}
	t := (tm - mu) / se
	return stats.TestResult{
		Test:      "one-sample trimmed mean",
		Statistic: t,
		DF:        h - 1,
		PValue:    distributions.StudentTPValue(t, h-1, alt),
		N:         len(data),
		Extra:     map[string]float64{"trimmed_mean": tm},
	}, nil
}
