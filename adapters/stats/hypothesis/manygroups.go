package hypothesis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/adapters/stats/centraltendency"
	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// groupSummary holds the per-group moments used by the one-way tests.
type groupSummary struct {
	n, mean, variance float64
}

// summarize drops missing values and empty groups. Every remaining group
// needs at least need observations.
func summarize(groups [][]float64, name string, need int) ([][]float64, []groupSummary, error) {
	clean := make([][]float64, 0, len(groups))
	sums := make([]groupSummary, 0, len(groups))
	for _, g := range groups {
		g = tables.DropNaN(g)
		if len(g) == 0 {
			continue
		}
		if len(g) < need {
			return nil, nil, core.NewInsufficientDataError(name, len(g), need)
		}
		m, v := stat.MeanVariance(g, nil)
		if len(g) < 2 {
			v = 0
		}
		clean = append(clean, g)
		sums = append(sums, groupSummary{n: float64(len(g)), mean: m, variance: v})
	}
	if len(clean) < 2 {
		return nil, nil, core.NewValidationError(name, "need at least two non-empty groups")
	}
	return clean, sums, nil
}

// FisherOWA is the classic one-way ANOVA F = MS_between / MS_within.
func FisherOWA(groups [][]float64) (stats.TestResult, error) {
	clean, _, err := summarize(groups, "one-way ANOVA", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	s, err := effectsize.OneWaySums(clean)
	if err != nil {
		return stats.TestResult{}, err
	}
	if s.MSWithin == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero within-group variance")
	}
	df1, df2 := float64(s.K-1), float64(s.N-s.K)
	f := (s.SSBetween / df1) / s.MSWithin
	return stats.TestResult{
		Test:      "Fisher one-way ANOVA",
		Statistic: f,
		DF:        df1,
		DF2:       df2,
		PValue:    distributions.FPValue(f, df1, df2),
		N:         s.N,
		Extra:     map[string]float64{"eta_squared": s.SSBetween / s.SSTotal},
	}, nil
}

// WelchOWA weights the group means by n/s² (Welch, 1951).
func WelchOWA(groups [][]float64) (stats.TestResult, error) {
	_, g, err := summarize(groups, "Welch ANOVA", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	k := float64(len(g))
	w := make([]float64, len(g))
	var sw, swm float64
	n := 0
	for i, s := range g {
		if s.variance == 0 {
			return stats.TestResult{}, core.NewDegenerateError("a group has zero variance")
		}
		w[i] = s.n / s.variance
		sw += w[i]
		swm += w[i] * s.mean
		n += int(s.n)
	}
	mw := swm / sw
	var a, lambda float64
	for i, s := range g {
		a += w[i] * (s.mean - mw) * (s.mean - mw)
		r := 1 - w[i]/sw
		lambda += r * r / (s.n - 1)
	}
	a /= k - 1
	lambda *= 3 / (k*k - 1)
	f := a / (1 + 2*lambda*(k-2)/3)
	df2 := 1 / lambda
	return stats.TestResult{
		Test:      "Welch one-way ANOVA",
		Statistic: f,
		DF:        k - 1,
		DF2:       df2,
		PValue:    distributions.FPValue(f, k-1, df2),
		N:         n,
	}, nil
}

// BrownForsytheOWA divides the between-group sum of squares by
// Σ(1 - n_j/N)s_j² and uses Satterthwaite degrees of freedom.
func BrownForsytheOWA(groups [][]float64) (stats.TestResult, error) {
	clean, g, err := summarize(groups, "Brown-Forsythe ANOVA", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	var all []float64
	for _, c := range clean {
		all = append(all, c...)
	}
	bigN := float64(len(all))
	grand := stat.Mean(all, nil)
	var num, den float64
	for _, s := range g {
		num += s.n * (s.mean - grand) * (s.mean - grand)
		den += (1 - s.n/bigN) * s.variance
	}
	if den == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero within-group variance")
	}
	inv := 0.0
	for _, s := range g {
		c := (1 - s.n/bigN) * s.variance / den
		inv += c * c / (s.n - 1)
	}
	df1 := float64(len(g) - 1)
	df2 := 1 / inv
	f := num / den
	return stats.TestResult{
		Test:      "Brown-Forsythe one-way ANOVA",
		Statistic: f,
		DF:        df1,
		DF2:       df2,
		PValue:    distributions.FPValue(f, df1, df2),
		N:         len(all),
	}, nil
}

// weightedT returns, per group, t_j = (m_j - m_w)/se_j against the
// precision-weighted mean m_w.
func weightedT(g []groupSummary) ([]float64, error) {
	var sw, swm float64
	se := make([]float64, len(g))
	for i, s := range g {
		if s.variance == 0 {
			return nil, core.NewDegenerateError("a group has zero variance")
		}
		se[i] = math.Sqrt(s.variance / s.n)
		w := 1 / (se[i] * se[i])
		sw += w
		swm += w * s.mean
	}
	mw := swm / sw
	t := make([]float64, len(g))
	for i, s := range g {
		t[i] = (s.mean - mw) / se[i]
	}
	return t, nil
}

// AlexanderGovern normalises each weighted t with Hill's (1970)
// approximation and sums the squares (Alexander & Govern, 1994).
func AlexanderGovern(groups [][]float64) (stats.TestResult, error) {
	_, g, err := summarize(groups, "Alexander-Govern", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	t, err := weightedT(g)
	if err != nil {
		return stats.TestResult{}, err
	}
	sum, n := 0.0, 0
	for i, s := range g {
		v := s.n - 1
		a := v - 0.5
		b := 48 * a * a
		c := math.Sqrt(a * math.Log(1+t[i]*t[i]/v))
		c3 := c * c * c
		c5 := c3 * c * c
		c7 := c5 * c * c
		z := c + (c3+3*c)/b - (4*c7+33*c5+240*c3+855*c)/(10*b*b+8*b*c*c*c*c+1000*b)
		sum += z * z
		n += int(s.n)
	}
	df := float64(len(g) - 1)
	return stats.TestResult{
		Test:      "Alexander-Govern",
		Statistic: sum,
		DF:        df,
		PValue:    distributions.ChiSquarePValue(sum, df),
		N:         n,
	}, nil
}

// OzdemirKurt finds, by bisection, the significance level at which the B2
// statistic equals the chi-square critical value with k - 1 degrees of
// freedom (Özdemir & Kurt, 2006). That level is the p-value. The weights
// c_j depend on the normal quantile of the level itself, hence the search.
func OzdemirKurt(groups [][]float64) (stats.TestResult, error) {
	_, g, err := summarize(groups, "Ozdemir-Kurt", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	t, err := weightedT(g)
	if err != nil {
		return stats.TestResult{}, err
	}
	df := float64(len(g) - 1)
	b2 := func(alpha float64) float64 {
		z := distributions.NormalQuantile(1 - alpha/2)
		z2 := z * z
		sum := 0.0
		for i, s := range g {
			v := s.n - 1
			c := (4*v*v + 5*(2*z2+3)/24) / (4*v*v + v + (4*z2*z2+9*z2+15)/96)
			sum += c * c * v * math.Log(1+t[i]*t[i]/v)
		}
		return sum
	}

	lo, hi := 1e-12, 1-1e-12
	for iter := 0; iter < 200 && hi-lo > 1e-12; iter++ {
		mid := (lo + hi) / 2
		if b2(mid) > distributions.ChiSquareQuantile(1-mid, df) {
			hi = mid
		} else {
			lo = mid
		}
	}
	p := (lo + hi) / 2
	n := 0
	for _, s := range g {
		n += int(s.n)
	}
	return stats.TestResult{
		Test:      "Ozdemir-Kurt B2",
		Statistic: b2(p),
		DF:        df,
		PValue:    p,
		N:         n,
	}, nil
}

// KruskalWallis compares mean ranks over k groups, with tie correction.
// Extra["epsilon_squared"] is H/((N² - 1)/(N + 1)).
func KruskalWallis(groups [][]float64) (stats.TestResult, error) {
	clean, _, err := summarize(groups, "Kruskal-Wallis", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	var all []float64
	for _, c := range clean {
		all = append(all, c...)
	}
	r := ranks.Average(all)
	bigN := float64(len(all))
	h, at := 0.0, 0
	for _, c := range clean {
		sum := 0.0
		for _, v := range r[at : at+len(c)] {
			sum += v
		}
		at += len(c)
		h += sum * sum / float64(len(c))
	}
	h = 12/(bigN*(bigN+1))*h - 3*(bigN+1)
	corr := 1 - ranks.TieCorrection(all)/(bigN*bigN*bigN-bigN)
	if corr <= 0 {
		return stats.TestResult{}, core.NewDegenerateError("all values are tied")
	}
	h /= corr
	df := float64(len(clean) - 1)
	eps, _ := effectsize.EpsilonSquaredKW(h, len(all))
	return stats.TestResult{
		Test:      "Kruskal-Wallis",
		Statistic: h,
		DF:        df,
		PValue:    distributions.ChiSquarePValue(h, df),
		N:         len(all),
		Extra:     map[string]float64{"epsilon_squared": eps},
	}, nil
}

// LeveneCenter selects the location that absolute deviations are taken from.
type LeveneCenter string

const (
	CenterMean    LeveneCenter = "mean"
	CenterMedian  LeveneCenter = "median" // Brown-Forsythe variant
	CenterTrimmed LeveneCenter = "trimmed"
)

// LeveneTrim is the proportion trimmed from each end for CenterTrimmed.
const LeveneTrim = 0.1

// Levene tests equality of variances with a one-way ANOVA on the absolute
// deviations from each group's center.
func Levene(groups [][]float64, center LeveneCenter) (stats.TestResult, error) {
	clean, _, err := summarize(groups, "Levene", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	dev := make([][]float64, len(clean))
	for i, g := range clean {
		var c float64
		switch center {
		case CenterMean, "":
			c = stat.Mean(g, nil)
		case CenterMedian:
			c, err = centraltendency.Median(g)
		case CenterTrimmed:
			c, err = centraltendency.TrimmedMean(g, LeveneTrim)
		default:
			return stats.TestResult{}, core.NewUnknownMethodError("Levene center", string(center))
		}
		if err != nil {
			return stats.TestResult{}, err
		}
		dev[i] = make([]float64, len(g))
		for j, v := range g {
			dev[i][j] = math.Abs(v - c)
		}
	}
	res, err := FisherOWA(dev)
	if err != nil {
		return stats.TestResult{}, err
	}
	res.Test = "Levene"
	if center == CenterMedian {
		res.Test = "Brown-Forsythe (Levene, median)"
	}
	res.Extra = nil
	return res, nil
}
