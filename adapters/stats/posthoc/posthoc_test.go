package posthoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/adapters/stats/hypothesis"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func TestAdjustPValues(t *testing.T) {
	p := []float64{0.04, 0.01, 0.03}

	tests := []struct {
		method AdjustMethod
		want   []float64
	}{
		{NoAdjust, []float64{0.04, 0.01, 0.03}},
		{Bonferroni, []float64{0.12, 0.03, 0.09}},
		{Holm, []float64{0.06, 0.03, 0.06}},
		{Hochberg, []float64{0.04, 0.03, 0.04}},
		{BH, []float64{0.04, 0.03, 0.04}},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, err := AdjustPValues(p, tt.method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}

	_, err := AdjustPValues(p, "sidak-ish")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestPairwiseAndDunn(t *testing.T) {
	groups := []tables.Group{
		{Label: "a", Scores: []float64{1, 2, 3, 4}},
		{Label: "b", Scores: []float64{5, 6, 7, 8}},
		{Label: "c", Scores: []float64{2, 3, 4, 5}},
	}
	welch := func(x, y []float64) (stats.TestResult, error) {
		return hypothesis.WelchT(x, y, stats.TwoSided)
	}

	rows, err := Pairwise(groups, welch, Holm)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Group1)
	assert.Equal(t, "b", rows[0].Group2)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.AdjustedP, r.PValue)
	}

	dunn, err := Dunn(groups, Bonferroni)
	require.NoError(t, err)
	require.Len(t, dunn, 3)
	assert.Less(t, dunn[0].Statistic, 0.0)
	// equal group sizes share one standard error
	assert.InDelta(t, dunn[0].Statistic, dunn[1].Statistic-dunn[2].Statistic, 1e-12)

	_, err = Pairwise(groups[:1], welch, Holm)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestGOFPostHoc(t *testing.T) {
	cats := []string{"x", "y", "z"}
	obs := []float64{10, 20, 30}
	exp := []float64{20, 20, 20}

	res, err := ResidualsGOF(cats, obs, exp, NoAdjust)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Less(t, res[0].Statistic, 0.0)
	assert.InDelta(t, 0.0, res[1].Statistic, 1e-12)
	assert.InDelta(t, -res[0].Statistic, res[2].Statistic, 1e-12)

	pairs, err := PairwiseBinomialGOF(cats, obs, exp, BH)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, "x", pairs[1].Group1)
	assert.Equal(t, "z", pairs[1].Group2)
	assert.Less(t, pairs[1].PValue, 0.01)

	_, err = ResidualsGOF(cats, obs[:2], exp, NoAdjust)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}
