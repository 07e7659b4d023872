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

// RankMethod selects between the exact and the normal-approximation form of
// a rank test.
type RankMethod string

const (
	RankAuto   RankMethod = "auto"
	RankExact  RankMethod = "exact"
	RankNormal RankMethod = "normal"
)

func twoSamples(x, y []float64, name string, need int) ([]float64, []float64, error) {
	xs, err := sample(x, name, need)
	if err != nil {
		return nil, nil, err
	}
	ys, err := sample(y, name, need)
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// StudentTIndependent is the pooled-variance t-test.
func StudentTIndependent(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Student t (independent)", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	m1, v1 := stat.MeanVariance(xs, nil)
	m2, v2 := stat.MeanVariance(ys, nil)
	df := n1 + n2 - 2
	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	if pooled == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero pooled variance")
	}
	t := (m1 - m2) / math.Sqrt(pooled*(1/n1+1/n2))
	return stats.TestResult{
		Test:      "Student t (independent samples)",
		Statistic: t,
		DF:        df,
		PValue:    distributions.StudentTPValue(t, df, alt),
		N:         len(xs) + len(ys),
		Extra:     map[string]float64{"mean_difference": m1 - m2},
	}, nil
}

// WelchT drops the equal-variance assumption and uses the
// Welch-Satterthwaite degrees of freedom.
func WelchT(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Welch t", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	m1, v1 := stat.MeanVariance(xs, nil)
	m2, v2 := stat.MeanVariance(ys, nil)
	se1, se2 := v1/n1, v2/n2
	if se1+se2 == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero variance in both groups")
	}
	t := (m1 - m2) / math.Sqrt(se1+se2)
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))
	return stats.TestResult{
		Test:      "Welch t",
		Statistic: t,
		DF:        df,
		PValue:    distributions.StudentTPValue(t, df, alt),
		N:         len(xs) + len(ys),
		Extra:     map[string]float64{"mean_difference": m1 - m2},
	}, nil
}

// YuenT compares trimmed means with standard errors from the winsorized
// variances (Yuen, 1974).
func YuenT(x, y []float64, trim float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Yuen t", 3)
	if err != nil {
		return stats.TestResult{}, err
	}
	part := func(data []float64) (tm, d, h float64, err error) {
		tm, err = centraltendency.TrimmedMean(data, trim)
		if err != nil {
			return 0, 0, 0, err
		}
		wv, err := centraltendency.WinsorizedVariance(data, trim)
		if err != nil {
			return 0, 0, 0, err
		}
		n := float64(len(data))
		h = n - 2*math.Floor(trim*n)
		if h < 2 {
			return 0, 0, 0, core.NewInsufficientDataError("Yuen t", int(h), 2)
		}
		return tm, (n - 1) * wv / (h * (h - 1)), h, nil
	}
	tm1, d1, h1, err := part(xs)
	if err != nil {
		return stats.TestResult{}, err
	}
	tm2, d2, h2, err := part(ys)
	if err != nil {
		return stats.TestResult{}, err
	}
	if d1+d2 == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero winsorized variance")
	}
	t := (tm1 - tm2) / math.Sqrt(d1+d2)
	df := (d1 + d2) * (d1 + d2) / (d1*d1/(h1-1) + d2*d2/(h2-1))
	return stats.TestResult{
		Test:      "Yuen trimmed means",
		Statistic: t,
		DF:        df,
		PValue:    distributions.StudentTPValue(t, df, alt),
		N:         len(xs) + len(ys),
		Extra:     map[string]float64{"trimmed_mean_difference": tm1 - tm2},
	}, nil
}

// ZIndependent uses known population standard deviations. Non-positive
// sigmas fall back to the sample standard deviations.
func ZIndependent(x, y []float64, sigma1, sigma2 float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "z (independent)", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	m1, v1 := stat.MeanVariance(xs, nil)
	m2, v2 := stat.MeanVariance(ys, nil)
	if sigma1 > 0 {
		v1 = sigma1 * sigma1
	}
	if sigma2 > 0 {
		v2 = sigma2 * sigma2
	}
	se := math.Sqrt(v1/float64(len(xs)) + v2/float64(len(ys)))
	if se == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero variance in both groups")
	}
	z := (m1 - m2) / se
	return stats.TestResult{
		Test:      "z (independent samples)",
		Statistic: z,
		PValue:    distributions.NormalPValue(z, alt),
		N:         len(xs) + len(ys),
	}, nil
}

// MannWhitney is the Wilcoxon rank-sum test. The statistic is U of the
// first sample. RankAuto takes the exact distribution when there are no
// ties and n1 + n2 is within distributions.RankSumExactLimit.
func MannWhitney(x, y []float64, alt stats.Alternative, method RankMethod, continuity bool) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Mann-Whitney U", 1)
	if err != nil {
		return stats.TestResult{}, err
	}
	all := append(append([]float64(nil), xs...), ys...)
	r := ranks.Average(all)
	r1 := 0.0
	for _, v := range r[:len(xs)] {
		r1 += v
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	n := n1 + n2
	u := r1 - n1*(n1+1)/2
	ties := ranks.TieCorrection(all)
	res := stats.TestResult{Statistic: u, N: len(all), Extra: map[string]float64{"rank_sum": r1}}

	exact := method == RankExact || (method == RankAuto || method == "") && ties == 0 && len(all) <= distributions.RankSumExactLimit
	switch method {
	case RankAuto, RankExact, RankNormal, "":
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("rank method", string(method))
	}
	if exact {
		d, err := distributions.NewRankSumDist(len(xs), len(ys))
		if err != nil {
			return stats.TestResult{}, err
		}
		res.Test = "Mann-Whitney U exact"
		res.PValue = d.PValue(u, alt)
		return res, nil
	}

	sd := math.Sqrt(n1 * n2 / 12 * ((n + 1) - ties/(n*(n-1))))
	diff := u - n1*n2/2
	if continuity {
		diff = continuityShift(diff, alt)
	}
	z := 0.0
	if sd > 0 {
		z = diff / sd
	}
	res.Test = "Mann-Whitney U normal approximation"
	res.PValue = distributions.NormalPValue(z, alt)
	res.Extra["z"] = z
	return res, nil
}

// BrunnerMunzel tests P(X < Y) + ½P(X = Y) = ½ without assuming equal
// variances. The statistic is signed so that it is positive when x tends
// to be larger than y.
func BrunnerMunzel(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Brunner-Munzel", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	all := ranks.Average(append(append([]float64(nil), xs...), ys...))
	r1, r2 := all[:len(xs)], all[len(xs):]
	in1, in2 := ranks.Average(xs), ranks.Average(ys)
	m1, m2 := stat.Mean(r1, nil), stat.Mean(r2, nil)

	spread := func(overall, internal []float64, mean, n float64) float64 {
		s := 0.0
		for i := range overall {
			d := overall[i] - internal[i] - mean + (n+1)/2
			s += d * d
		}
		return s / (n - 1)
	}
	s1 := n1 * spread(r1, in1, m1, n1)
	s2 := n2 * spread(r2, in2, m2, n2)
	if s1+s2 == 0 {
		return stats.TestResult{}, core.NewDegenerateError("groups are completely separated")
	}
	w := n1 * n2 * (m1 - m2) / ((n1 + n2) * math.Sqrt(s1+s2))
	df := (s1 + s2) * (s1 + s2) / (s1*s1/(n1-1) + s2*s2/(n2-1))
	return stats.TestResult{
		Test:      "Brunner-Munzel",
		Statistic: w,
		DF:        df,
		PValue:    distributions.StudentTPValue(w, df, alt),
		N:         len(xs) + len(ys),
		Extra:     map[string]float64{"p_hat": (m2 - (n2+1)/2) / n1},
	}, nil
}

// FlignerPolicello is the robust rank-order test for a difference in
// medians under unequal spread.
func FlignerPolicello(x, y []float64, alt stats.Alternative) (stats.TestResult, error) {
	xs, ys, err := twoSamples(x, y, "Fligner-Policello", 2)
	if err != nil {
		return stats.TestResult{}, err
	}
	placements := func(a, b []float64) ([]float64, float64) {
		p := make([]float64, len(a))
		for i, v := range a {
			for _, w := range b {
				switch {
				case w < v:
					p[i]++
				case w == v:
					p[i] += 0.5
				}
			}
		}
		return p, stat.Mean(p, nil)
	}
	px, mx := placements(xs, ys)
	py, my := placements(ys, xs)
	v1, v2 := 0.0, 0.0
	for _, v := range px {
		v1 += (v - mx) * (v - mx)
	}
	for _, v := range py {
		v2 += (v - my) * (v - my)
	}
	den := 2 * math.Sqrt(v1+v2+mx*my)
	if den == 0 {
		return stats.TestResult{}, core.NewDegenerateError("zero placement variance")
	}
	z := (floatsSum(px) - floatsSum(py)) / den
	return stats.TestResult{
		Test:      "Fligner-Policello",
		Statistic: z,
		PValue:    distributions.NormalPValue(z, alt),
		N:         len(xs) + len(ys),
	}, nil
}

func floatsSum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// MoodMedian counts, per group, the scores above the grand median and
// tests the resulting 2×k table with Pearson's chi-square.
func MoodMedian(groups [][]float64, corr stats.Correction) (stats.TestResult, error) {
	var all []float64
	clean := make([][]float64, 0, len(groups))
	for _, g := range groups {
		g = tables.DropNaN(g)
		if len(g) == 0 {
			continue
		}
		clean = append(clean, g)
		all = append(all, g...)
	}
	if len(clean) < 2 {
		return stats.TestResult{}, core.NewValidationError("Mood median", "need at least two non-empty groups")
	}
	med, err := centraltendency.Median(all)
	if err != nil {
		return stats.TestResult{}, err
	}
	counts := [][]float64{make([]float64, len(clean)), make([]float64, len(clean))}
	for j, g := range clean {
		for _, v := range g {
			if v > med {
				counts[0][j]++
			} else {
				counts[1][j]++
			}
		}
	}
	ct, err := tables.FromCounts(counts)
	if err != nil {
		return stats.TestResult{}, err
	}
	res, err := PearsonIndependence(ct, corr)
	if err != nil {
		return stats.TestResult{}, err
	}
	res.Test = "Mood median"
	res.Extra["median"] = med
	return res, nil
}

// FisherExact is the conditional exact test of a 2x2 table. Two-sided
// p-values sum every table no more likely than the observed one.
func FisherExact(ct *tables.Crosstab, alt stats.Alternative) (stats.TestResult, error) {
	a, b, c, d, err := ct.Cells2x2()
	if err != nil {
		return stats.TestResult{}, err
	}
	r1 := int(a + b)
	c1 := int(a + c)
	n := int(a + b + c + d)
	if n == 0 {
		return stats.TestResult{}, core.NewInsufficientDataError("Fisher exact", 0, 1)
	}
	lo := max(0, r1+c1-n)
	hi := min(r1, c1)
	obsA := int(a)
	observed := distributions.HypergeometricPMF(obsA, c1, r1, n)

	p := 0.0
	for k := lo; k <= hi; k++ {
		pk := distributions.HypergeometricPMF(k, c1, r1, n)
		switch alt {
		case stats.Less:
			if k <= obsA {
				p += pk
			}
		case stats.Greater:
			if k >= obsA {
				p += pk
			}
		default:
			if pk <= observed*(1+1e-7) {
				p += pk
			}
		}
	}
	or := math.Inf(1)
	if b*c > 0 {
		or = a * d / (b * c)
	}
	return stats.TestResult{
		Test:      "Fisher exact",
		Statistic: a,
		PValue:    math.Min(1, p),
		N:         n,
		Extra:     map[string]float64{"odds_ratio": or},
	}, nil
}

// TwoProportionZ compares the success shares of two groups with the pooled
// standard error. Yates subtracts ½(1/n1 + 1/n2) from the absolute difference.
func TwoProportionZ(k1, n1, k2, n2 int, alt stats.Alternative, corr stats.Correction) (stats.TestResult, error) {
	if n1 <= 0 || n2 <= 0 {
		return stats.TestResult{}, core.NewInsufficientDataError("two-proportion z", min(n1, n2), 1)
	}
	if k1 < 0 || k1 > n1 || k2 < 0 || k2 > n2 {
		return stats.TestResult{}, core.NewValidationError("successes", "must be between 0 and the group size")
	}
	f1, f2 := float64(n1), float64(n2)
	p1, p2 := float64(k1)/f1, float64(k2)/f2
	pooled := float64(k1+k2) / (f1 + f2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/f1 + 1/f2))
	if se == 0 {
		return stats.TestResult{}, core.NewDegenerateError("pooled proportion is 0 or 1")
	}
	diff := p1 - p2
	switch corr {
	case stats.Yates:
		diff = math.Copysign(math.Max(0, math.Abs(diff)-0.5*(1/f1+1/f2)), diff)
	case stats.NoCorrection, "":
	default:
		return stats.TestResult{}, core.NewUnknownMethodError("correction", string(corr))
	}
	z := diff / se
	return stats.TestResult{
		Test:      "two-proportion z",
		Statistic: z,
		PValue:    distributions.NormalPValue(z, alt),
		N:         n1 + n2,
		Extra:     map[string]float64{"p1": p1, "p2": p2},
	}, nil
}
