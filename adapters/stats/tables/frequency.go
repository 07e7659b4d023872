package tables

import (
	"fmt"
	"math"
	"sort"

	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// Frequencies builds a frequency table. Empty strings count as missing: they
// contribute to Percent but not to ValidPercent. With an explicit order the
// categories appear in that order (including ones never observed); values
// outside the order are treated as missing.
func Frequencies(data []string, order []string) ([]stats.FrequencyRow, error) {
	if len(data) == 0 {
		return nil, core.NewInsufficientDataError("frequency table", 0, 1)
	}

	cats := order
	if len(cats) == 0 {
		cats = Categories(data)
	}
	counts, valid := CountCategories(data, cats)

	total := float64(len(data))
	rows := make([]stats.FrequencyRow, len(cats))
	cum := 0.0
	for i, c := range cats {
		cnt := counts[i]
		row := stats.FrequencyRow{
			Category: c,
			Count:    cnt,
			Percent:  100 * float64(cnt) / total,
		}
		if valid > 0 {
			row.ValidPercent = 100 * float64(cnt) / float64(valid)
			cum += row.ValidPercent
			row.CumulativePercent = cum
		}
		rows[i] = row
	}
	return rows, nil
}

// Categories returns the distinct non-empty values in sorted order.
func Categories(data []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range data {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CountCategories counts each category of cats in data and returns the
// counts along with the number of values that matched any category.
func CountCategories(data []string, cats []string) ([]int, int) {
	idx := indexOf(cats)
	counts := make([]int, len(cats))
	valid := 0
	for _, v := range data {
		if i, ok := idx[v]; ok {
			counts[i]++
			valid++
		}
	}
	return counts, valid
}

// CodeOrdinal maps ordinal categories to the scores 1..k following levels.
// Without levels the sorted distinct values are used. Missing or unknown
// values become NaN.
func CodeOrdinal(data []string, levels []string) ([]float64, error) {
	if len(levels) == 0 {
		levels = Categories(data)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no categories to code", core.ErrInsufficientData)
	}
	idx := indexOf(levels)
	out := make([]float64, len(data))
	for i, v := range data {
		if k, ok := idx[v]; ok {
			out[i] = float64(k + 1)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Group is the set of scores belonging to one category of a grouping variable.
type Group struct {
	Label  string
	Scores []float64
}

// SplitByGroup divides scores by the category in groups. Pairs with a
// missing group or a NaN score are dropped. With order only those groups are
// returned, in that order; otherwise groups are sorted by label.
func SplitByGroup(groups []string, scores []float64, order []string) ([]Group, error) {
	if len(groups) != len(scores) {
		return nil, fmt.Errorf("%w: %d groups and %d scores", core.ErrLengthMismatch, len(groups), len(scores))
	}

	byLabel := make(map[string][]float64)
	for i, g := range groups {
		if g == "" || math.IsNaN(scores[i]) {
			continue
		}
		byLabel[g] = append(byLabel[g], scores[i])
	}

	labels := order
	if len(labels) == 0 {
		labels = make([]string, 0, len(byLabel))
		for l := range byLabel {
			labels = append(labels, l)
		}
		sort.Strings(labels)
	}

	out := make([]Group, 0, len(labels))
	for _, l := range labels {
		out = append(out, Group{Label: l, Scores: byLabel[l]})
	}
	return out, nil
}

// DropNaN returns the values that are not NaN.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// PairwiseComplete keeps the positions where both x and y are present.
func PairwiseComplete(x, y []float64) ([]float64, []float64, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d and %d", core.ErrLengthMismatch, len(x), len(y))
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys, nil
}

// BinaryCounts counts the successes in data, where success is the category
// named by success. With an empty success label the first category in
// sorted order is the success.
func BinaryCounts(data []string, success string) (k, n int, label string, err error) {
	cats := Categories(data)
	if len(cats) == 0 {
		return 0, 0, "", core.NewInsufficientDataError("binary counts", 0, 1)
	}
	if success == "" {
		success = cats[0]
	}
	if len(cats) > 2 {
		return 0, 0, "", fmt.Errorf("%w: expected at most two categories, got %d", core.ErrInvalidInput, len(cats))
	}
	for _, v := range data {
		if v == "" {
			continue
		}
		n++
		if v == success {
			k++
		}
	}
	return k, n, success, nil
}
