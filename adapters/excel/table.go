package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stikpet/domain/core"
	"stikpet/ports"
)

// Column types reported by InferColumnTypes.
const (
	TypeNumeric     = "numeric"
	TypeCategorical = "categorical"
	TypeString      = "string"
)

// Table gives column access to loaded data.
type Table struct {
	data *ExcelData
}

var _ ports.DataReader = (*Table)(nil)

// NewTable wraps loaded data.
func NewTable(data *ExcelData) *Table {
	return &Table{data: data}
}

// FromColumns builds a table from equally long named columns.
func FromColumns(headers []string, columns [][]string) (*Table, error) {
	if len(headers) != len(columns) {
		return nil, fmt.Errorf("%w: %d headers for %d columns", core.ErrLengthMismatch, len(headers), len(columns))
	}
	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}
	rows := make([]RawRowData, n)
	for i := range rows {
		rows[i] = make(RawRowData, len(headers))
	}
	for j, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", core.ErrLengthMismatch, headers[j], len(col), n)
		}
		for i, v := range col {
			rows[i][headers[j]] = v
		}
	}
	return NewTable(&ExcelData{Headers: headers, Rows: rows}), nil
}

// Data returns the underlying rows.
func (t *Table) Data() *ExcelData { return t.data }

// Headers returns the column names in file order.
func (t *Table) Headers() []string { return t.data.Headers }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return len(t.data.Rows) }

func (t *Table) has(name string) bool {
	for _, h := range t.data.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the raw text of a column; empty cells stay "".
func (t *Table) Column(name string) ([]string, error) {
	if !t.has(name) {
		return nil, core.NewNotFoundError(core.ErrColumnNotFound, name)
	}
	out := make([]string, len(t.data.Rows))
	for i, row := range t.data.Rows {
		out[i] = row[name]
	}
	return out, nil
}

// Numeric parses a column as numbers. Empty cells and the usual missing
// markers become NaN; any other unparsable cell is an error.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, cell := range col {
		if isMissing(cell) {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
		if err != nil {
			return nil, core.NewValidationError(name, fmt.Sprintf("row %d: %q is not a number", i+2, cell))
		}
		out[i] = v
	}
	return out, nil
}

func isMissing(cell string) bool {
	switch strings.ToUpper(strings.TrimSpace(cell)) {
	case "", "NA", "NAN", "N/A", ".":
		return true
	}
	return false
}

// InferColumnTypes labels every column numeric, categorical or string.
// Numeric columns with few distinct integer codes count as categorical, as
// do text columns with few distinct values.
func (t *Table) InferColumnTypes() map[string]string {
	types := make(map[string]string, len(t.data.Headers))
	for _, h := range t.data.Headers {
		valid, numeric, integer := 0, 0, 0
		unique := make(map[string]bool)
		for _, row := range t.data.Rows {
			cell := row[h]
			if isMissing(cell) {
				continue
			}
			valid++
			unique[cell] = true
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				numeric++
				if v == math.Trunc(v) {
					integer++
				}
			}
		}

		lowCardinality := valid > 0 && len(unique) <= 20 && float64(len(unique))/float64(valid) < 0.5
		switch {
		case valid == 0:
			types[h] = TypeString
		case numeric == valid && integer == valid && lowCardinality:
			types[h] = TypeCategorical
		case numeric == valid:
			types[h] = TypeNumeric
		case lowCardinality:
			types[h] = TypeCategorical
		default:
			types[h] = TypeString
		}
	}
	return types
}
