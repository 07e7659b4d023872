package ranks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankMethods(t *testing.T) {
	data := []float64{10, 20, 20, 5, 30, 20}

	tests := []struct {
		method Method
		want   []float64
	}{
		{AverageMethod, []float64{2, 4, 4, 1, 6, 4}},
		{MinMethod, []float64{2, 3, 3, 1, 6, 3}},
		{MaxMethod, []float64{2, 5, 5, 1, 6, 5}},
		{DenseMethod, []float64{2, 3, 3, 1, 4, 3}},
		{OrdinalMethod, []float64{2, 3, 4, 1, 6, 5}},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(data, tt.method))
		})
	}
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Average(nil))
}

func TestTieCorrection(t *testing.T) {
	data := []float64{1, 2, 2, 3, 3, 3}
	assert.Equal(t, []int{2, 3}, TieGroups(data))
	// (8-2) + (27-3)
	assert.Equal(t, 30.0, TieCorrection(data))
}

func TestSignedRanks(t *testing.T) {
	s := SignedRanks([]float64{1.5, -0.5, 0, 2.5, -1.5})
	assert.Equal(t, 1, s.Zeros)
	assert.Equal(t, []float64{2.5, 1, 4, 2.5}, s.Ranks)
	assert.Equal(t, 6.5, s.RankPlus)
	assert.Equal(t, 3.5, s.RankMinus)
	assert.Equal(t, 6.0, s.TieSum)
}
