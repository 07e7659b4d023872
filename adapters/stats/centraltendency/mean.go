// Package centraltendency computes location measures for scale and ordinal
// data: the various means, median, mode, quantiles and the Hodges-Lehmann
// estimators.
package centraltendency

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

func clean(x []float64, name string, need int) ([]float64, error) {
	data := tables.DropNaN(x)
	if len(data) < need {
		return nil, core.NewInsufficientDataError(name, len(data), need)
	}
	return data, nil
}

// Mean is the arithmetic mean.
func Mean(x []float64) (float64, error) {
	data, err := clean(x, "mean", 1)
	if err != nil {
		return 0, err
	}
	return stats.Mean(data)
}

// GeometricMean requires strictly positive values.
func GeometricMean(x []float64) (float64, error) {
	data, err := clean(x, "geometric mean", 1)
	if err != nil {
		return 0, err
	}
	for _, v := range data {
		if v <= 0 {
			return 0, core.NewValidationError("geometric mean", "values must be positive")
		}
	}
	// Log-space to avoid overflow of the running product.
	logSum := 0.0
	for _, v := range data {
		logSum += math.Log(v)
	}
	return math.Exp(logSum / float64(len(data))), nil
}

// HarmonicMean requires strictly positive values.
func HarmonicMean(x []float64) (float64, error) {
	data, err := clean(x, "harmonic mean", 1)
	if err != nil {
		return 0, err
	}
	for _, v := range data {
		if v <= 0 {
			return 0, core.NewValidationError("harmonic mean", "values must be positive")
		}
	}
	return stats.HarmonicMean(data)
}

// TrimmedMean drops floor(n*prop) values from each end before averaging.
func TrimmedMean(x []float64, prop float64) (float64, error) {
	if prop < 0 || prop >= 0.5 {
		return 0, core.NewValidationError("trim proportion", fmt.Sprintf("must be in [0, 0.5), got %v", prop))
	}
	data, err := clean(x, "trimmed mean", 1)
	if err != nil {
		return 0, err
	}
	sort.Float64s(data)
	g := int(math.Floor(float64(len(data)) * prop))
	return stats.Mean(data[g : len(data)-g])
}

// Winsorize replaces the floor(n*prop) smallest and largest values by their
// nearest remaining neighbour. The result is sorted.
func Winsorize(x []float64, prop float64) ([]float64, error) {
	if prop < 0 || prop >= 0.5 {
		return nil, core.NewValidationError("winsorize proportion", fmt.Sprintf("must be in [0, 0.5), got %v", prop))
	}
	data, err := clean(x, "winsorize", 1)
	if err != nil {
		return nil, err
	}
	sort.Float64s(data)
	n := len(data)
	g := int(math.Floor(float64(n) * prop))
	for i := 0; i < g; i++ {
		data[i] = data[g]
		data[n-1-i] = data[n-1-g]
	}
	return data, nil
}

// WinsorizedMean is the mean of the winsorized sample.
func WinsorizedMean(x []float64, prop float64) (float64, error) {
	w, err := Winsorize(x, prop)
	if err != nil {
		return 0, err
	}
	return stats.Mean(w)
}

// WinsorizedVariance is the sample variance of the winsorized sample.
func WinsorizedVariance(x []float64, prop float64) (float64, error) {
	w, err := Winsorize(x, prop)
	if err != nil {
		return 0, err
	}
	if len(w) < 2 {
		return 0, core.NewInsufficientDataError("winsorized variance", len(w), 2)
	}
	return stats.SampleVariance(w)
}

// Midrange is (min + max) / 2.
func Midrange(x []float64) (float64, error) {
	data, err := clean(x, "midrange", 1)
	if err != nil {
		return 0, err
	}
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	return (lo + hi) / 2, nil
}

// Midhinge is the average of the Tukey hinges.
func Midhinge(x []float64) (float64, error) {
	data, err := clean(x, "midhinge", 2)
	if err != nil {
		return 0, err
	}
	return stats.Midhinge(data)
}

// Trimean is (Q1 + 2·Q2 + Q3) / 4 with Tukey hinges.
func Trimean(x []float64) (float64, error) {
	data, err := clean(x, "trimean", 2)
	if err != nil {
		return 0, err
	}
	return stats.Trimean(data)
}
