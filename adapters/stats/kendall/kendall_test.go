package kendall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/domain/stats"
)

func TestScore(t *testing.T) {
	c, err := Score([]float64{1, 2, 3, 4}, []float64{1, 3, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, 5.0, c.Concordant)
	assert.Equal(t, 1.0, c.Discordant)
	assert.Equal(t, 4.0, c.S())
	assert.False(t, c.HasTies())

	c, err = Score([]float64{1, 1, 2}, []float64{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.TiesX)
	assert.Equal(t, 1.0, c.TiesY)
	assert.Equal(t, 1.0, c.Concordant)
	assert.True(t, c.HasTies())
}

func TestInversionDist(t *testing.T) {
	// Mahonian numbers for n=4: 1 3 5 6 5 3 1
	want := []float64{1, 3, 5, 6, 5, 3, 1}
	got := InversionDist(4)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i]/24, got[i], 1e-12)
	}
}

func TestExactUpperTail(t *testing.T) {
	assert.InDelta(t, 1.0/24, ExactUpperTail(4, 6), 1e-12)
	assert.InDelta(t, 4.0/24, ExactUpperTail(4, 4), 1e-12)
	assert.InDelta(t, 1.0, ExactUpperTail(4, -6), 1e-12)
	assert.Equal(t, 0.0, ExactUpperTail(4, 8))
}

func TestEdgeworthMatchesExact(t *testing.T) {
	for _, s := range []float64{20, 60, 100, 140} {
		exact := ExactUpperTail(40, s)
		approx := EdgeworthUpperTail(40, s)
		assert.InDelta(t, exact, approx, 0.003, "s=%v", s)
	}
}

func TestDistributionPValue(t *testing.T) {
	d := Distribution{ExactLimit: 10}
	assert.InDelta(t, 2.0/24, d.PValue(4, 6, stats.TwoSided), 1e-12)
	assert.InDelta(t, 1.0/24, d.PValue(4, -6, stats.Less), 1e-12)

	// beyond the exact limit the Edgeworth series takes over
	assert.InDelta(t, EdgeworthUpperTail(12, 30), d.UpperTail(12, 30), 1e-12)
}

func TestPermutationNull(t *testing.T) {
	null, err := PermutationNull([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, null, 24)

	count := 0
	for _, s := range null {
		if s >= 6 {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, err = PermutationNull(make([]float64, 10), make([]float64, 10))
	assert.Error(t, err)
}
