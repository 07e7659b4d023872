package centraltendency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/domain/core"
)

var oneToTen = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

func TestMeans(t *testing.T) {
	m, err := Mean([]float64{1, 2, math.NaN(), 6})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, m, 1e-12)

	g, err := GeometricMean([]float64{1, 4, 16})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, g, 1e-12)

	h, err := HarmonicMean([]float64{1, 2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 3/1.75, h, 1e-12)

	_, err = GeometricMean([]float64{1, -1})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Mean([]float64{math.NaN()})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestTrimmedAndWinsorized(t *testing.T) {
	x := []float64{100, 1, 3, 2, 4}

	tm, err := TrimmedMean(x, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, tm, 1e-12)

	w, err := Winsorize(x, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 3, 4, 4}, w)

	wm, err := WinsorizedMean(x, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, wm, 1e-12)

	_, err = TrimmedMean(x, 0.5)
	assert.Error(t, err)
}

func TestQuantileMethods(t *testing.T) {
	tests := []struct {
		method QuantileMethod
		p      float64
		want   float64
	}{
		{InvertedCDF, 0.25, 3},
		{AveragedInvertedCDF, 0.25, 3},
		{AveragedInvertedCDF, 0.5, 5.5},
		{ClosestObservation, 0.25, 2},
		{InterpolatedCDF, 0.25, 2.5},
		{Hazen, 0.25, 3},
		{Weibull, 0.25, 2.75},
		{Linear, 0.25, 3.25},
		{MedianUnbiased, 0.25, 2.75 + 1.0/6.0},
		{Linear, 0, 1},
		{Linear, 1, 10},
		{Nearest, 0.25, 3},
		{Nearest, 1, 10},
		{Midpoint, 0.25, 3.5},
		{Midpoint, 0, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, err := Quantile(oneToTen, tt.p, tt.method)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	four := []float64{4, 1, 3, 2}
	for _, tt := range []struct {
		method QuantileMethod
		p      float64
		want   float64
	}{
		{Nearest, 0.4, 2},
		{Nearest, 0.5, 3}, // 1.5 rounds to even
		{Midpoint, 0.4, 2.5},
		{Midpoint, 0.5, 2.5},
	} {
		got, err := Quantile(four, tt.p, tt.method)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "%s at %g", tt.method, tt.p)
	}

	_, err := Quantile(oneToTen, 0.5, "bogus")
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestQuartilesAndIQR(t *testing.T) {
	q1, q2, q3, err := Quartiles(oneToTen, Linear)
	require.NoError(t, err)
	assert.InDelta(t, 3.25, q1, 1e-12)
	assert.InDelta(t, 5.5, q2, 1e-12)
	assert.InDelta(t, 7.75, q3, 1e-12)

	iqr, err := IQR(oneToTen, Linear)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, iqr, 1e-12)

	d, err := Deciles(oneToTen, Linear)
	require.NoError(t, err)
	assert.Len(t, d, 9)
	assert.InDelta(t, 5.5, d[4], 1e-12)
}

func TestTukeyMeasures(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	mh, err := Midhinge(x)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, mh, 1e-12)

	tri, err := Trimean(x)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, tri, 1e-12)

	mr, err := Midrange([]float64{2, 10, 4})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, mr, 1e-12)
}

func TestOrdinalMedian(t *testing.T) {
	data := []string{"a", "b", "c", "d"}
	levels := []string{"a", "b", "c", "d"}

	label, med, err := OrdinalMedian(data, levels, TieLow)
	require.NoError(t, err)
	assert.Equal(t, "b", label)
	assert.Equal(t, 2.5, med)

	label, _, _ = OrdinalMedian(data, levels, TieHigh)
	assert.Equal(t, "c", label)

	label, _, _ = OrdinalMedian(data, levels, TieBetween)
	assert.Equal(t, "b / c", label)

	label, _, err = OrdinalMedian([]string{"low", "high", "mid", ""}, []string{"low", "mid", "high"}, TieLow)
	require.NoError(t, err)
	assert.Equal(t, "mid", label)
}

func TestMode(t *testing.T) {
	modes, freq := Mode([]float64{1, 2, 2, 3, 3})
	assert.Equal(t, []float64{2, 3}, modes)
	assert.Equal(t, 2, freq)

	none, _ := Mode([]float64{1, 2, 3})
	assert.Nil(t, none)

	single, _ := Mode([]string{"x"})
	assert.Equal(t, []string{"x"}, single)

	cats, freq, err := CategoricalMode([]string{"a", "", "b", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, cats)
	assert.Equal(t, 2, freq)
}

func TestHodgesLehmann(t *testing.T) {
	x := []float64{1, 2, 10}

	tests := []struct {
		variant HLVariant
		want    float64
	}{
		{WalshWithDiagonal, 3.75},
		{WalshWithoutDiagonal, 5.5},
		{AllPairs, 5.5},
	}
	for _, tt := range tests {
		got, err := HodgesLehmann(x, tt.variant)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12)
	}

	shift, err := HodgesLehmannShift([]float64{3, 4}, []float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, shift, 1e-12)
}

func TestMedianAbsoluteDeviation(t *testing.T) {
	mad, err := MedianAbsoluteDeviation([]float64{1, 2, 3, 4, 100})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mad, 1e-12)
}
