package effectsize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

func mustTable(t *testing.T, counts [][]float64) *tables.Crosstab {
	t.Helper()
	ct, err := tables.FromCounts(counts)
	require.NoError(t, err)
	return ct
}

func TestOneSampleEffectSizes(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, math.NaN()}

	d, err := CohenDOneSample(x, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.264911, d, 1e-6)

	g, err := HedgesGOneSample(x, 1, false)
	require.NoError(t, err)
	assert.InDelta(t, d*(1-3.0/15.0), g, 1e-12)

	ge, err := HedgesGOneSample(x, 1, true)
	require.NoError(t, err)
	assert.Less(t, ge, d)

	_, err = CohenDOneSample([]float64{2, 2, 2}, 1)
	assert.ErrorIs(t, err, core.ErrDegenerateData)

	h, err := CohenHOneSample(0.5, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, h, 1e-12)

	_, err = CohenG(1.5)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	w, err := CohenW(9, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, w, 1e-12)

	rb, err := DependentRankBiserial([]float64{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rb, 1e-12)
}

func TestTwoSampleEffectSizes(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 4, 5, 6, 7}

	d, err := CohenDs(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -1.264911, d, 1e-6)

	g, err := HedgesG(x, y, false)
	require.NoError(t, err)
	assert.InDelta(t, d*(1-3.0/31.0), g, 1e-12)

	a, err := VarghaDelaneyA([]float64{1, 2}, []float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.125, a, 1e-12)

	cliff, err := CliffDelta([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, cliff, 1e-12)

	rb, err := RankBiserialIndependent([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, cliff, rb, 1e-12)

	dz, err := CohenDPaired([]float64{2, 4, 6}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, dz, 1e-12)

	cl, err := CommonLanguageNormal(x, x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cl, 1e-12)
}

func TestManyGroupEffectSizes(t *testing.T) {
	groups := [][]float64{{1, 2, 3}, {4, 5, 6}}

	eta, err := EtaSquared(groups)
	require.NoError(t, err)
	assert.InDelta(t, 13.5/17.5, eta, 1e-12)

	omega, err := OmegaSquared(groups)
	require.NoError(t, err)
	assert.InDelta(t, 12.5/18.5, omega, 1e-12)

	eps, err := EpsilonSquared(groups)
	require.NoError(t, err)
	assert.InDelta(t, 12.5/17.5, eps, 1e-12)

	f, err := CohenF(0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)

	_, err = EtaSquared([][]float64{{1, 2}})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestContingencyEffectSizes(t *testing.T) {
	ct := mustTable(t, [][]float64{{10, 20}, {30, 40}})

	v, err := CramerV(ct, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.089087, v, 1e-6)

	phi, err := Phi(ct)
	require.NoError(t, err)
	assert.InDelta(t, -v, phi, 1e-9)

	vb, err := CramerV(ct, true)
	require.NoError(t, err)
	assert.LessOrEqual(t, vb, v)

	agree := mustTable(t, [][]float64{{20, 5}, {10, 15}})
	kappa, err := CohenKappa(agree)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, kappa, 1e-12)

	pi, err := ScottPi(agree)
	require.NoError(t, err)
	assert.InDelta(t, 0.195/0.495, pi, 1e-12)

	lambda, err := GoodmanKruskalLambda(agree, ColsGivenRow)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, lambda, 1e-12)

	perfect := mustTable(t, [][]float64{{10, 0}, {0, 10}})
	tau, err := GoodmanKruskalTau(perfect, Symmetric)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tau, 1e-12)

	u, err := TheilU(mustTable(t, [][]float64{{10, 20}, {20, 40}}), Symmetric)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, u, 1e-12)

	_, err = TheilU(ct, Direction("sideways"))
	assert.ErrorIs(t, err, core.ErrUnknownMethod)

	_, err = CohenKappa(mustTable(t, [][]float64{{1, 2, 3}, {4, 5, 6}}))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestBinBin(t *testing.T) {
	cells := Cells{A: 10, B: 20, C: 30, D: 40}

	tests := []struct {
		measure string
		want    float64
	}{
		{"odds-ratio", 400.0 / 600.0},
		{"yule-q", -0.2},
		{"jaccard", 10.0 / 60.0},
		{"dice", 20.0 / 70.0},
		{"simple-matching", 0.5},
		{"forbes", 1000.0 / (30 * 40)},
		{"mcconnaughey", (100.0 - 600) / (30 * 40)},
		{"cole-c7", -200.0 / (30 * 40)},
	}
	for _, tt := range tests {
		t.Run(tt.measure, func(t *testing.T) {
			got, err := BinBin(cells, tt.measure)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	or, err := OddsRatio(Cells{A: 0, B: 5, C: 5, D: 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5/5.5, or, 1e-12)

	q2, err := PearsonQ2(Cells{A: 10, B: 10, C: 10, D: 10})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, q2, 1e-12)

	_, err = BinBin(cells, "nope")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
	assert.Contains(t, BinBinMeasures(), "phi")
}

func TestConversionsAndThresholds(t *testing.T) {
	d, err := OddsRatioToD(3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, DToOddsRatio(d), 1e-12)

	r := DToR(0.5)
	back, err := RToD(r)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, back, 1e-12)

	_, err = RToD(1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	assert.Equal(t, "medium", InterpretCohenD(-0.6).Label)
	assert.Equal(t, "negligible", InterpretR(0.05).Label)
	assert.Equal(t, "large", InterpretEtaSquared(0.2).Label)
	assert.Equal(t, "small", InterpretCramerV(0.15, 1).Label)
	assert.Equal(t, "very large", InterpretCramerV(0.7, 1).Label)
	assert.Equal(t, "medium", InterpretOddsRatio(0.25).Label)
	assert.Equal(t, "Cohen (1988)", InterpretCohenW(0.3).Source)
}
