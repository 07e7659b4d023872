// Package tables builds the contingency tables, frequency tables and ordinal
// codings that the association measures and tests are computed from.
package tables

import (
	"fmt"
	"math"
	"sort"

	"stikpet/domain/core"
)

// Crosstab is an r×c table of counts cross-classifying two categorical variables.
type Crosstab struct {
	RowLabels []string
	ColLabels []string
	Counts    [][]float64
}

// NewCrosstab builds a contingency table from two categorical fields. Pairs
// where either value is empty are dropped. When rowOrder or colOrder is
// given it fixes both the categories and their order; values outside it are
// dropped. Otherwise categories are sorted alphabetically.
func NewCrosstab(field1, field2 []string, rowOrder, colOrder []string) (*Crosstab, error) {
	if len(field1) != len(field2) {
		return nil, fmt.Errorf("%w: %d and %d", core.ErrLengthMismatch, len(field1), len(field2))
	}

	rows := rowOrder
	if len(rows) == 0 {
		rows = distinctPaired(field1, field2)
	}
	cols := colOrder
	if len(cols) == 0 {
		cols = distinctPaired(field2, field1)
	}

	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)

	counts := make([][]float64, len(rows))
	for i := range counts {
		counts[i] = make([]float64, len(cols))
	}

	used := 0
	for i := range field1 {
		if field1[i] == "" || field2[i] == "" {
			continue
		}
		r, okR := rowIdx[field1[i]]
		c, okC := colIdx[field2[i]]
		if !okR || !okC {
			continue
		}
		counts[r][c]++
		used++
	}

	if used == 0 {
		return nil, fmt.Errorf("%w: no complete pairs for cross table", core.ErrInsufficientData)
	}

	return &Crosstab{RowLabels: rows, ColLabels: cols, Counts: counts}, nil
}

// FromCounts wraps an existing matrix of counts. Labels default to 1..r and 1..c.
func FromCounts(counts [][]float64) (*Crosstab, error) {
	if len(counts) == 0 || len(counts[0]) == 0 {
		return nil, fmt.Errorf("%w: empty table", core.ErrInvalidInput)
	}
	cols := len(counts[0])
	copied := make([][]float64, len(counts))
	for i, row := range counts {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: ragged table at row %d", core.ErrInvalidInput, i)
		}
		for _, v := range row {
			if v < 0 || math.IsNaN(v) {
				return nil, fmt.Errorf("%w: counts must be non-negative", core.ErrInvalidInput)
			}
		}
		copied[i] = append([]float64(nil), row...)
	}
	return &Crosstab{
		RowLabels: numberedLabels(len(counts)),
		ColLabels: numberedLabels(cols),
		Counts:    copied,
	}, nil
}

func numberedLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i+1)
	}
	return labels
}

func distinctPaired(primary, other []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for i, v := range primary {
		if v == "" || other[i] == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func indexOf(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return idx
}

// Rows and Cols return the table dimensions.
func (t *Crosstab) Rows() int { return len(t.Counts) }
func (t *Crosstab) Cols() int { return len(t.ColLabels) }

// RowTotals returns the row margins.
func (t *Crosstab) RowTotals() []float64 {
	out := make([]float64, t.Rows())
	for i, row := range t.Counts {
		for _, v := range row {
			out[i] += v
		}
	}
	return out
}

// ColTotals returns the column margins.
func (t *Crosstab) ColTotals() []float64 {
	out := make([]float64, t.Cols())
	for _, row := range t.Counts {
		for j, v := range row {
			out[j] += v
		}
	}
	return out
}

// Total is the grand total.
func (t *Crosstab) Total() float64 {
	total := 0.0
	for _, v := range t.RowTotals() {
		total += v
	}
	return total
}

// Expected returns the counts expected under independence.
func (t *Crosstab) Expected() [][]float64 {
	rt, ct, n := t.RowTotals(), t.ColTotals(), t.Total()
	out := make([][]float64, t.Rows())
	for i := range out {
		out[i] = make([]float64, t.Cols())
		for j := range out[i] {
			out[i][j] = rt[i] * ct[j] / n
		}
	}
	return out
}

// StandardizedResiduals are (O - E) / sqrt(E).
func (t *Crosstab) StandardizedResiduals() [][]float64 {
	exp := t.Expected()
	out := make([][]float64, t.Rows())
	for i := range out {
		out[i] = make([]float64, t.Cols())
		for j := range out[i] {
			if exp[i][j] > 0 {
				out[i][j] = (t.Counts[i][j] - exp[i][j]) / math.Sqrt(exp[i][j])
			}
		}
	}
	return out
}

// AdjustedResiduals are the standardized residuals divided by their
// standard error, sqrt((1 - row share) * (1 - column share)).
func (t *Crosstab) AdjustedResiduals() [][]float64 {
	rt, ct, n := t.RowTotals(), t.ColTotals(), t.Total()
	std := t.StandardizedResiduals()
	for i := range std {
		for j := range std[i] {
			se := math.Sqrt((1 - rt[i]/n) * (1 - ct[j]/n))
			if se > 0 {
				std[i][j] /= se
			}
		}
	}
	return std
}

// DropEmpty removes rows and columns whose margin is zero.
func (t *Crosstab) DropEmpty() *Crosstab {
	rt, ct := t.RowTotals(), t.ColTotals()
	keepCols := make([]int, 0, len(ct))
	colLabels := make([]string, 0, len(ct))
	for j, v := range ct {
		if v > 0 {
			keepCols = append(keepCols, j)
			colLabels = append(colLabels, t.ColLabels[j])
		}
	}
	out := &Crosstab{ColLabels: colLabels}
	for i, v := range rt {
		if v == 0 {
			continue
		}
		row := make([]float64, len(keepCols))
		for k, j := range keepCols {
			row[k] = t.Counts[i][j]
		}
		out.RowLabels = append(out.RowLabels, t.RowLabels[i])
		out.Counts = append(out.Counts, row)
	}
	return out
}

// Transpose swaps rows and columns.
func (t *Crosstab) Transpose() *Crosstab {
	out := &Crosstab{RowLabels: t.ColLabels, ColLabels: t.RowLabels}
	out.Counts = make([][]float64, t.Cols())
	for j := range out.Counts {
		out.Counts[j] = make([]float64, t.Rows())
		for i := range t.Counts {
			out.Counts[j][i] = t.Counts[i][j]
		}
	}
	return out
}

// Is2x2 reports whether the table has exactly two rows and two columns.
func (t *Crosstab) Is2x2() bool {
	return t.Rows() == 2 && t.Cols() == 2
}

// Cells2x2 returns a, b, c, d of a 2×2 table read row by row.
func (t *Crosstab) Cells2x2() (a, b, c, d float64, err error) {
	if !t.Is2x2() {
		return 0, 0, 0, 0, fmt.Errorf("%w: need a 2x2 table, got %dx%d", core.ErrInvalidInput, t.Rows(), t.Cols())
	}
	return t.Counts[0][0], t.Counts[0][1], t.Counts[1][0], t.Counts[1][1], nil
}

// ChiSquare is Pearson's Σ(O - E)²/E. Cells with zero expected count are skipped.
func (t *Crosstab) ChiSquare() float64 {
	exp := t.Expected()
	chi := 0.0
	for i, row := range t.Counts {
		for j, obs := range row {
			if exp[i][j] > 0 {
				d := obs - exp[i][j]
				chi += d * d / exp[i][j]
			}
		}
	}
	return chi
}

// GStatistic is the likelihood-ratio statistic 2ΣO·ln(O/E).
func (t *Crosstab) GStatistic() float64 {
	exp := t.Expected()
	g := 0.0
	for i, row := range t.Counts {
		for j, obs := range row {
			if obs > 0 && exp[i][j] > 0 {
				g += obs * math.Log(obs/exp[i][j])
			}
		}
	}
	return 2 * g
}

// DF is (r - 1)(c - 1).
func (t *Crosstab) DF() float64 {
	return float64((t.Rows() - 1) * (t.Cols() - 1))
}
