package centraltendency

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

// Median of the non-missing values.
func Median(x []float64) (float64, error) {
	data, err := clean(x, "median", 1)
	if err != nil {
		return 0, err
	}
	return stats.Median(data)
}

// TieRule decides what an ordinal median reports when the two middle
// observations fall in different categories.
type TieRule string

const (
	TieLow     TieRule = "low"
	TieHigh    TieRule = "high"
	TieBetween TieRule = "between" // "a / b"
)

// OrdinalMedian finds the median category of ordinal data. The numeric
// median of the 1..k coding is returned alongside the label.
func OrdinalMedian(data []string, levels []string, tie TieRule) (string, float64, error) {
	if len(levels) == 0 {
		levels = tables.Categories(data)
	}
	codes, err := tables.CodeOrdinal(data, levels)
	if err != nil {
		return "", 0, err
	}
	vals, err := clean(codes, "ordinal median", 1)
	if err != nil {
		return "", 0, err
	}
	sort.Float64s(vals)

	n := len(vals)
	lo := vals[(n-1)/2]
	hi := vals[n/2]
	med := (lo + hi) / 2

	if lo == hi {
		return levels[int(lo)-1], med, nil
	}
	switch tie {
	case TieHigh:
		return levels[int(hi)-1], med, nil
	case TieBetween:
		return fmt.Sprintf("%s / %s", levels[int(lo)-1], levels[int(hi)-1]), med, nil
	case TieLow, "":
		return levels[int(lo)-1], med, nil
	}
	return "", 0, core.NewUnknownMethodError("tie rule", string(tie))
}

// Mode returns every value with the highest frequency in order of first
// appearance, plus that frequency. When every value is equally frequent and
// there is more than one distinct value, there is no mode and nil is returned.
func Mode[T comparable](data []T) ([]T, int) {
	counts := make(map[T]int, len(data))
	order := make([]T, 0)
	for _, v := range data {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	modes := make([]T, 0)
	for _, v := range order {
		if counts[v] == maxCount {
			modes = append(modes, v)
		}
	}
	if len(modes) == len(order) && len(order) > 1 {
		return nil, maxCount
	}
	return modes, maxCount
}

// ScaleMode is Mode over the non-missing values of x.
func ScaleMode(x []float64) ([]float64, int, error) {
	data, err := clean(x, "mode", 1)
	if err != nil {
		return nil, 0, err
	}
	modes, freq := Mode(data)
	return modes, freq, nil
}

// CategoricalMode is Mode over the non-empty categories.
func CategoricalMode(data []string) ([]string, int, error) {
	vals := make([]string, 0, len(data))
	for _, v := range data {
		if v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, 0, core.NewInsufficientDataError("mode", 0, 1)
	}
	modes, freq := Mode(vals)
	return modes, freq, nil
}

// HLVariant selects which pairwise averages enter the Hodges-Lehmann estimate.
type HLVariant int

const (
	// WalshWithDiagonal uses (x_i + x_j)/2 for i <= j (Hodges & Lehmann, 1963).
	WalshWithDiagonal HLVariant = iota + 1
	// WalshWithoutDiagonal uses i < j only.
	WalshWithoutDiagonal
	// AllPairs uses every ordered pair i, j.
	AllPairs
)

// HodgesLehmann is the median of the pairwise (Walsh) averages.
func HodgesLehmann(x []float64, variant HLVariant) (float64, error) {
	data, err := clean(x, "Hodges-Lehmann", 1)
	if err != nil {
		return 0, err
	}
	n := len(data)
	if variant == WalshWithoutDiagonal && n < 2 {
		return 0, core.NewInsufficientDataError("Hodges-Lehmann", n, 2)
	}

	walsh := make([]float64, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		start := i
		switch variant {
		case WalshWithoutDiagonal:
			start = i + 1
		case AllPairs:
			start = 0
		case WalshWithDiagonal:
		default:
			return 0, core.NewUnknownMethodError("Hodges-Lehmann variant", fmt.Sprint(int(variant)))
		}
		for j := start; j < n; j++ {
			walsh = append(walsh, (data[i]+data[j])/2)
		}
	}
	return stats.Median(walsh)
}

// HodgesLehmannShift is the median of all differences x_i - y_j, the
// location-shift estimator that accompanies the Mann-Whitney test.
func HodgesLehmannShift(x, y []float64) (float64, error) {
	xs, err := clean(x, "Hodges-Lehmann shift", 1)
	if err != nil {
		return 0, err
	}
	ys, err := clean(y, "Hodges-Lehmann shift", 1)
	if err != nil {
		return 0, err
	}
	diffs := make([]float64, 0, len(xs)*len(ys))
	for _, a := range xs {
		for _, b := range ys {
			diffs = append(diffs, a-b)
		}
	}
	return stats.Median(diffs)
}

// MedianAbsoluteDeviation is median(|x - median(x)|), unscaled.
func MedianAbsoluteDeviation(x []float64) (float64, error) {
	data, err := clean(x, "median absolute deviation", 1)
	if err != nil {
		return 0, err
	}
	med, _ := stats.Median(data)
	dev := make([]float64, len(data))
	for i, v := range data {
		dev[i] = math.Abs(v - med)
	}
	return stats.Median(dev)
}
