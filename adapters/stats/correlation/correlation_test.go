package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/kendall"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

var (
	xs = []float64{1, 2, 3, 4, 5}
	ys = []float64{2, 4, 5, 4, 5}
)

func TestPearsonAndSpearman(t *testing.T) {
	p, err := Pearson(append(xs, math.NaN()), append(ys, 1), stats.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, 5, p.N)
	assert.InDelta(t, 6/math.Sqrt(60), p.Coefficient, 1e-12)
	assert.InDelta(t, 2.121320, p.Test.Statistic, 1e-6)
	assert.Equal(t, 3.0, p.Test.DF)
	assert.True(t, p.Test.PValue > 0.1 && p.Test.PValue < 0.15, "p=%v", p.Test.PValue)

	s, err := Spearman(xs, ys, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 7/math.Sqrt(90), s.Coefficient, 1e-12)

	_, err = Pearson(xs, []float64{1, 1, 1, 1, 1}, stats.TwoSided)
	assert.ErrorIs(t, err, core.ErrDegenerateData)

	_, err = Pearson(xs, ys[:3], stats.TwoSided)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestKendall(t *testing.T) {
	a, err := KendallTauA(xs, xs, stats.Greater, kendall.Default)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a.Coefficient, 1e-12)
	assert.Equal(t, "Kendall S exact", a.Test.Test)
	assert.InDelta(t, 1.0/120, a.Test.PValue, 1e-12)

	two, err := KendallTauA(xs, xs, stats.TwoSided, kendall.Default)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/120, two.Test.PValue, 1e-12)

	approx, err := KendallTauA(xs, xs, stats.Greater, kendall.Distribution{ExactLimit: 3})
	require.NoError(t, err)
	assert.Equal(t, "Kendall S Edgeworth approximation", approx.Test.Test)

	b, err := KendallTauB(xs, ys, stats.TwoSided, kendall.Default)
	require.NoError(t, err)
	assert.InDelta(t, 6/math.Sqrt(80), b.Coefficient, 1e-12)
	assert.Equal(t, "Kendall S permutation", b.Test.Test)
	assert.Equal(t, 6.0, b.Test.Extra["S"])
	assert.InDelta(t, 24.0/120, b.Test.PValue, 1e-12)

	ta, err := KendallTauA(xs, ys, stats.TwoSided, kendall.Default)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, ta.Coefficient, 1e-12)
}

func TestKendallTiedSmallSampleUsesPermutation(t *testing.T) {
	x := []float64{1, 2, 2, 3, 4}
	y := []float64{1, 3, 2, 4, 4}

	tests := []struct {
		alt  stats.Alternative
		want float64
	}{
		{stats.TwoSided, 8.0 / 120},
		{stats.Greater, 4.0 / 120},
		{stats.Less, 1.0},
	}
	for _, tt := range tests {
		b, err := KendallTauB(x, y, tt.alt, kendall.Default)
		require.NoError(t, err)
		assert.Equal(t, "Kendall S permutation", b.Test.Test)
		assert.Equal(t, 8.0, b.Test.Statistic)
		assert.InDelta(t, tt.want, b.Test.PValue, 1e-12, "alternative %s", tt.alt)
	}

	// above the permutation limit ties fall back to the normal approximation
	bx := []float64{1, 2, 2, 3, 4, 5, 6, 7, 8, 9}
	by := []float64{1, 3, 2, 4, 4, 6, 5, 7, 9, 8}
	big, err := KendallTauB(bx, by, stats.TwoSided, kendall.Default)
	require.NoError(t, err)
	assert.Equal(t, "Kendall S normal approximation", big.Test.Test)
}

func TestOrdinalAssociation(t *testing.T) {
	ct, err := tables.FromCounts([][]float64{{10, 5}, {5, 10}})
	require.NoError(t, err)

	c := ConcordanceCounts(ct)
	assert.Equal(t, 100.0, c.Concordant)
	assert.Equal(t, 25.0, c.Discordant)

	g, err := GoodmanKruskalGamma(ct, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, g.Coefficient, 1e-12)
	assert.InDelta(t, 75/math.Sqrt(1500), g.Test.Statistic, 1e-9)
	assert.Contains(t, g.Test.Extra, "ASE1")

	tc, err := StuartTauC(ct, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, tc.Coefficient, 1e-12)

	d, err := SomersD(ct, effectsize.ColsGivenRow, stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, d.Coefficient, 1e-12)

	_, err = SomersD(ct, effectsize.Direction("up"), stats.TwoSided)
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestBinaryScaleCorrelations(t *testing.T) {
	field := []string{"a", "a", "b", "b", ""}
	scores := []float64{1, 2, 3, 4, 9}

	pb, err := PointBiserial(field, scores, "b", stats.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, 4, pb.N)
	assert.InDelta(t, 2/math.Sqrt(5), pb.Coefficient, 1e-12)

	bis, err := Biserial(field, scores, "b", stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 1.120998, bis.Coefficient, 1e-6)

	rb, err := RankBiserial(field, scores, "b", stats.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rb.Coefficient, 1e-12)
	assert.Equal(t, 4.0, rb.Test.Extra["U"])

	_, err = PointBiserial([]string{"a", "b", "c"}, []float64{1, 2, 3}, "", stats.TwoSided)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
