package hypothesis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func repeat(values map[string]int) []string {
	var out []string
	for v, n := range values {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}

func table(t *testing.T, counts [][]float64) *tables.Crosstab {
	t.Helper()
	ct, err := tables.FromCounts(counts)
	require.NoError(t, err)
	return ct
}

func TestOneSampleProportions(t *testing.T) {
	data := append(repeat(map[string]int{"a": 7, "b": 3}), "")

	bin, err := Binomial(data, "a", 0.5, stats.TwoSided, distributions.BinomialDouble)
	require.NoError(t, err)
	assert.Equal(t, 10, bin.N)
	assert.InDelta(t, 0.34375, bin.PValue, 1e-12)

	score, err := ScoreOneSample(data, "a", 0.5, stats.TwoSided, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 2/math.Sqrt(2.5), score.Statistic, 1e-12)

	yates, err := ScoreOneSample(data, "a", 0.5, stats.TwoSided, stats.Yates)
	require.NoError(t, err)
	assert.InDelta(t, 1.5/math.Sqrt(2.5), yates.Statistic, 1e-12)

	wald, err := WaldOneSample(data, "a", 0.5, stats.TwoSided, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 2/math.Sqrt(2.1), wald.Statistic, 1e-12)

	_, err = Binomial(data, "a", 1.5, stats.TwoSided, distributions.BinomialDouble)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestOneSampleLocation(t *testing.T) {
	oneToTen := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	sign, err := Sign(oneToTen, 2.5, stats.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, 8.0, sign.Statistic)
	assert.InDelta(t, 112.0/1024, sign.PValue, 1e-12)

	w, err := WilcoxonOneSample([]float64{1, 2, 3, 4, 5}, 0, stats.Greater, false)
	require.NoError(t, err)
	assert.Equal(t, "Wilcoxon signed-rank exact", w.Test)
	assert.Equal(t, 15.0, w.Statistic)
	assert.InDelta(t, 1.0/32, w.PValue, 1e-12)

	tied, err := WilcoxonOneSample([]float64{1, 1, 2, 2, 3, -1, 0}, 0, stats.TwoSided, true)
	require.NoError(t, err)
	assert.Equal(t, "Wilcoxon signed-rank normal approximation", tied.Test)
	assert.Equal(t, 1.0, tied.Extra["zeros"])

	tri, err := Trinomial([]float64{1, 2, 3}, 0, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, tri.PValue, 1e-12)

	greater, err := Trinomial([]float64{1, -1, 0, 2}, 0, stats.Greater)
	require.NoError(t, err)
	less, err := Trinomial([]float64{1, -1, 0, 2}, 0, stats.Less)
	require.NoError(t, err)
	assert.Less(t, greater.PValue, less.PValue)

	st, err := StudentTOneSample([]float64{1, 2, 3, 4, 5}, 2, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2), st.Statistic, 1e-12)
	assert.Equal(t, 4.0, st.DF)

	z, err := ZOneSample([]float64{1, 2, 3, 4, 5}, 2, 1, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5), z.Statistic, 1e-12)

	tm, err := TrimmedMeanOneSample(oneToTen, 5.5, 0.1, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, tm.Statistic, 1e-12)
	assert.Equal(t, 7.0, tm.DF)
}

func TestGoodnessOfFit(t *testing.T) {
	obs := []float64{10, 20, 30}
	exp := []float64{20, 20, 20}

	tests := []struct {
		name string
		run  func() (stats.TestResult, error)
		want float64
	}{
		{"pearson", func() (stats.TestResult, error) { return PearsonGOF(obs, exp, stats.NoCorrection) }, 10},
		{"g", func() (stats.TestResult, error) { return GGOF(obs, exp, stats.NoCorrection) }, 10.464963},
		{"freeman-tukey", func() (stats.TestResult, error) { return FreemanTukeyGOF(obs, exp, stats.NoCorrection) }, 10.903736},
		{"neyman", func() (stats.TestResult, error) { return NeymanGOF(obs, exp, stats.NoCorrection) }, 40.0 / 3},
		{"williams", func() (stats.TestResult, error) { return PearsonGOF(obs, exp, stats.Williams) }, 10 / (1 + 8.0/720)},
		{"pearson-correction", func() (stats.TestResult, error) { return PearsonGOF(obs, exp, stats.PearsonCorr) }, 10 * 59.0 / 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.Statistic, 1e-6)
			assert.Equal(t, 2.0, res.DF)
		})
	}

	pearson, _ := PearsonGOF(obs, exp, stats.NoCorrection)
	assert.InDelta(t, math.Exp(-5), pearson.PValue, 1e-9)

	_, err := ModLogLikelihoodGOF([]float64{0, 3}, []float64{1.5, 1.5}, stats.NoCorrection)
	assert.ErrorIs(t, err, core.ErrDegenerateData)

	ft, err := FreemanTukeyGOF([]float64{0, 6, 6}, []float64{4, 4, 4}, stats.NoCorrection)
	require.NoError(t, err)
	want := 4 * (4 + 2*math.Pow(math.Sqrt(6)-2, 2))
	assert.InDelta(t, want, ft.Statistic, 1e-9)
	assert.InDelta(t, math.Exp(-want/2), ft.PValue, 1e-9)

	_, err = PowerDivergenceGOF([]float64{0, 6, 6}, []float64{4, 4, 4}, -1.5, stats.NoCorrection)
	assert.ErrorIs(t, err, core.ErrDegenerateData)

	o, e, err := GOFCounts([]string{"a", "a", "b", ""}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, o)
	assert.Equal(t, []float64{1.5, 1.5}, e)

	_, _, err = GOFCounts([]string{"a", "b"}, nil, []float64{1})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestMultinomialGOF(t *testing.T) {
	all, err := MultinomialGOF([]float64{1, 1, 1}, []float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, all.PValue, 1e-9)

	extreme, err := MultinomialGOF([]float64{3, 0}, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, extreme.PValue, 1e-12)
}

func TestTwoIndependentSamples(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 4, 5, 6, 7}

	st, err := StudentTIndependent(x, y, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, st.Statistic, 1e-12)
	assert.Equal(t, 8.0, st.DF)

	welch, err := WelchT(x, y, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, welch.Statistic, 1e-12)
	assert.InDelta(t, 8.0, welch.DF, 1e-12)

	mw, err := MannWhitney([]float64{1, 2, 3}, []float64{4, 5, 6}, stats.Less, RankAuto, false)
	require.NoError(t, err)
	assert.Equal(t, "Mann-Whitney U exact", mw.Test)
	assert.Equal(t, 0.0, mw.Statistic)
	assert.InDelta(t, 0.05, mw.PValue, 1e-12)

	mwn, err := MannWhitney([]float64{1, 2, 3}, []float64{4, 5, 6}, stats.TwoSided, RankNormal, true)
	require.NoError(t, err)
	assert.Less(t, mwn.Extra["z"], 0.0)

	_, err = MannWhitney(x, y, stats.TwoSided, RankMethod("bootstrap"), false)
	assert.ErrorIs(t, err, core.ErrUnknownMethod)

	fp, err := FlignerPolicello([]float64{1, 3, 5, 7}, []float64{2, 4, 6, 8}, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, -4/(2*math.Sqrt(13.75)), fp.Statistic, 1e-9)

	bm, err := BrunnerMunzel([]float64{1, 3, 5, 7, 2}, []float64{2, 4, 6, 8, 9}, stats.TwoSided)
	require.NoError(t, err)
	assert.Less(t, bm.Statistic, 0.0)
	assert.True(t, bm.PValue > 0 && bm.PValue < 1)

	// Brunner & Munzel (2000) pain scores
	bm, err = BrunnerMunzel(
		[]float64{1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 2, 4, 1, 1},
		[]float64{3, 3, 4, 3, 1, 2, 3, 1, 1, 5, 4},
		stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, -3.1374674823, bm.Statistic, 1e-9)
	assert.InDelta(t, 17.6828419795, bm.DF, 1e-8)
	assert.InDelta(t, 0.0057862087, bm.PValue, 1e-8)
	assert.InDelta(t, 0.7889610390, bm.Extra["p_hat"], 1e-9)

	_, err = BrunnerMunzel([]float64{1, 2, 3}, []float64{4, 5, 6}, stats.TwoSided)
	assert.ErrorIs(t, err, core.ErrDegenerateData)

	yuen, err := YuenT(x, y, 0, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, welch.Statistic, yuen.Statistic, 1e-12)

	mood, err := MoodMedian([][]float64{{1, 2, 3}, {4, 5, 6}}, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, mood.Statistic, 1e-12)
	assert.Equal(t, 3.5, mood.Extra["median"])
}

func TestFisherAndProportions(t *testing.T) {
	tea := table(t, [][]float64{{3, 1}, {1, 3}})

	two, err := FisherExact(tea, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 34.0/70, two.PValue, 1e-9)

	greater, err := FisherExact(tea, stats.Greater)
	require.NoError(t, err)
	assert.InDelta(t, 17.0/70, greater.PValue, 1e-9)

	z, err := TwoProportionZ(10, 20, 5, 20, stats.TwoSided, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 0.25/math.Sqrt(0.375*0.625*0.1), z.Statistic, 1e-12)

	_, err = TwoProportionZ(30, 20, 5, 20, stats.TwoSided, stats.NoCorrection)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPairedSamples(t *testing.T) {
	x := []float64{5, 6, 7, 8, math.NaN()}
	y := []float64{1, 2, 3, 3, 1}

	pt, err := PairedT(x, y, stats.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, 4, pt.N)

	ws, err := WilcoxonPaired(x, y, stats.Greater, false)
	require.NoError(t, err)
	assert.Equal(t, 10.0, ws.Statistic)

	sp, err := SignPaired(x, y, stats.Greater)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, sp.PValue, 1e-12)

	mc := table(t, [][]float64{{10, 5}, {1, 10}})
	m, err := McNemar(mc, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/6, m.Statistic, 1e-12)
	assert.InDelta(t, 14.0/64, m.Extra["exact_p"], 1e-12)

	my, err := McNemar(mc, stats.Yates)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, my.Statistic, 1e-12)

	bowker, err := McNemarBowker(mc)
	require.NoError(t, err)
	assert.InDelta(t, m.Statistic, bowker.Statistic, 1e-12)

	q, err := CochranQ([][]float64{{1, 1, 0}, {1, 0, 0}, {1, 1, 1}, {0, 0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, q.Statistic, 1e-12)
	assert.Equal(t, 2.0, q.DF)

	fr, err := Friedman([][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}, {math.NaN(), 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, fr.N)
	assert.InDelta(t, 6.0, fr.Statistic, 1e-12)
	assert.InDelta(t, math.Exp(-3), fr.PValue, 1e-9)

	_, err = Friedman([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestManyGroups(t *testing.T) {
	groups := [][]float64{{1, 2, 3}, {4, 5, 6}}

	f, err := FisherOWA(groups)
	require.NoError(t, err)
	assert.InDelta(t, 13.5, f.Statistic, 1e-12)
	assert.Equal(t, 1.0, f.DF)
	assert.Equal(t, 4.0, f.DF2)

	welch, err := WelchOWA(groups)
	require.NoError(t, err)
	assert.InDelta(t, 13.5, welch.Statistic, 1e-9)
	assert.InDelta(t, 4.0, welch.DF2, 1e-9)

	bf, err := BrownForsytheOWA(groups)
	require.NoError(t, err)
	assert.InDelta(t, 13.5, bf.Statistic, 1e-9)

	kw, err := KruskalWallis(groups)
	require.NoError(t, err)
	assert.InDelta(t, 27.0/7, kw.Statistic, 1e-9)

	lev, err := Levene([][]float64{{1, 2, 3}, {2, 4, 6}}, CenterMean)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, lev.Statistic, 1e-9)

	_, err = Levene(groups, LeveneCenter("mode"))
	assert.ErrorIs(t, err, core.ErrUnknownMethod)

	ag, err := AlexanderGovern(groups)
	require.NoError(t, err)
	assert.Greater(t, ag.Statistic, 0.0)
	assert.True(t, ag.PValue > 0 && ag.PValue < 0.1, "p=%v", ag.PValue)

	ok, err := OzdemirKurt(groups)
	require.NoError(t, err)
	assert.True(t, ok.PValue > 0 && ok.PValue < 0.1, "p=%v", ok.PValue)
	assert.InDelta(t, distributions.ChiSquareQuantile(1-ok.PValue, 1), ok.Statistic, 1e-3)

	same, err := OzdemirKurt([][]float64{{1, 2, 3}, {1, 2, 3}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same.PValue, 1e-6)

	_, err = FisherOWA([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

// NIST car-loan interest rates for four cities.
var carLoanRates = [][]float64{
	{13.75, 13.75, 13.5, 13.5, 13.0, 13.0, 13.0, 12.75, 12.5},
	{14.25, 13.0, 12.75, 12.5, 12.5, 12.4, 12.3, 11.9, 11.9},
	{14.0, 14.0, 13.51, 13.5, 13.5, 13.25, 13.0, 12.5, 12.5},
	{15.0, 14.0, 13.75, 13.59, 13.25, 12.97, 12.5, 12.25, 11.89},
}

func TestUnequalVarianceANOVAReferenceValues(t *testing.T) {
	ag, err := AlexanderGovern(carLoanRates)
	require.NoError(t, err)
	assert.InDelta(t, 4.65087071883494, ag.Statistic, 1e-9)
	assert.InDelta(t, 0.19922132490385214, ag.PValue, 1e-7)
	assert.Equal(t, 3.0, ag.DF)

	welch, err := WelchOWA(carLoanRates)
	require.NoError(t, err)
	assert.InDelta(t, 1.8646835473, welch.Statistic, 1e-8)
	assert.InDelta(t, 17.2531500597, welch.DF2, 1e-8)
	assert.InDelta(t, 0.1733328609, welch.PValue, 1e-6)

	ok, err := OzdemirKurt(carLoanRates)
	require.NoError(t, err)
	assert.InDelta(t, 4.6778102344, ok.Statistic, 1e-5)
	assert.InDelta(t, 0.1969678744, ok.PValue, 1e-6)
}

func TestIndependence(t *testing.T) {
	ct := table(t, [][]float64{{10, 20}, {30, 40}})

	p, err := PearsonIndependence(ct, stats.NoCorrection)
	require.NoError(t, err)
	assert.InDelta(t, 0.793651, p.Statistic, 1e-6)
	assert.Equal(t, 1.0, p.DF)
	assert.Equal(t, 12.0, p.Extra["min_expected"])

	y, err := PearsonIndependence(ct, stats.Yates)
	require.NoError(t, err)
	assert.Less(t, y.Statistic, p.Statistic)

	g, err := GIndependence(ct, stats.Williams)
	require.NoError(t, err)
	assert.Greater(t, g.PValue, 0.3)

	_, err = PearsonIndependence(table(t, [][]float64{{1, 0}, {2, 0}}), stats.NoCorrection)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
