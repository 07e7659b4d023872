package effectsize

import (
	"math"

	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

// Direction selects which variable of a crosstab is predicted.
type Direction string

const (
	Symmetric    Direction = "symmetric"
	RowsGivenCol Direction = "rows"    // rows are the dependent variable
	ColsGivenRow Direction = "columns" // columns are the dependent variable
)

func checkTable(ct *tables.Crosstab, name string) error {
	if ct == nil || ct.Rows() < 2 || ct.Cols() < 2 {
		return core.NewValidationError(name, "need at least a 2x2 table")
	}
	if ct.Total() <= 0 {
		return core.NewInsufficientDataError(name, 0, 1)
	}
	return nil
}

// CramerV is √(χ²/(n·min(r-1, c-1))). With bergsma the bias correction of
// Bergsma (2013) is applied to φ² and the table dimensions.
func CramerV(ct *tables.Crosstab, bergsma bool) (float64, error) {
	if err := checkTable(ct, "Cramer V"); err != nil {
		return 0, err
	}
	n := ct.Total()
	r, c := float64(ct.Rows()), float64(ct.Cols())
	phi2 := ct.ChiSquare() / n
	if !bergsma {
		return math.Sqrt(phi2 / math.Min(r-1, c-1)), nil
	}
	if n <= 1 {
		return 0, core.NewInsufficientDataError("Cramer V", int(n), 2)
	}
	phi2c := math.Max(0, phi2-(r-1)*(c-1)/(n-1))
	rc := r - (r-1)*(r-1)/(n-1)
	cc := c - (c-1)*(c-1)/(n-1)
	den := math.Min(rc-1, cc-1)
	if den <= 0 {
		return 0, core.NewDegenerateError("corrected table dimension is not positive")
	}
	return math.Sqrt(phi2c / den), nil
}

// TschuprowT is √(χ²/(n·√((r-1)(c-1)))).
func TschuprowT(ct *tables.Crosstab) (float64, error) {
	if err := checkTable(ct, "Tschuprow T"); err != nil {
		return 0, err
	}
	r, c := float64(ct.Rows()), float64(ct.Cols())
	return math.Sqrt(ct.ChiSquare() / (ct.Total() * math.Sqrt((r-1)*(c-1)))), nil
}

// ContingencyC is Pearson's √(χ²/(χ² + n)).
func ContingencyC(ct *tables.Crosstab) (float64, error) {
	if err := checkTable(ct, "contingency coefficient"); err != nil {
		return 0, err
	}
	chi2 := ct.ChiSquare()
	return math.Sqrt(chi2 / (chi2 + ct.Total())), nil
}

// Phi is the signed (ad - bc)/√((a+b)(c+d)(a+c)(b+d)) of a 2x2 table.
func Phi(ct *tables.Crosstab) (float64, error) {
	a, b, c, d, err := ct.Cells2x2()
	if err != nil {
		return 0, err
	}
	den := math.Sqrt((a + b) * (c + d) * (a + c) * (b + d))
	if den == 0 {
		return 0, core.NewDegenerateError("empty margin")
	}
	return (a*d - b*c) / den, nil
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}

// GoodmanKruskalLambda is the proportional reduction in prediction error of
// the modal category.
func GoodmanKruskalLambda(ct *tables.Crosstab, dir Direction) (float64, error) {
	if err := checkTable(ct, "Goodman-Kruskal lambda"); err != nil {
		return 0, err
	}
	n := ct.Total()
	sumRowMax := 0.0
	for _, row := range ct.Counts {
		sumRowMax += maxOf(row)
	}
	t := ct.Transpose()
	sumColMax := 0.0
	for _, col := range t.Counts {
		sumColMax += maxOf(col)
	}
	maxC, maxR := maxOf(ct.ColTotals()), maxOf(ct.RowTotals())

	var num, den float64
	switch dir {
	case ColsGivenRow:
		num, den = sumRowMax-maxC, n-maxC
	case RowsGivenCol:
		num, den = sumColMax-maxR, n-maxR
	case Symmetric, "":
		num, den = sumRowMax+sumColMax-maxC-maxR, 2*n-maxC-maxR
	default:
		return 0, core.NewUnknownMethodError("direction", string(dir))
	}
	if den == 0 {
		return 0, core.NewDegenerateError("dependent variable has a single category")
	}
	return num / den, nil
}

func tauColsGivenRow(ct *tables.Crosstab) (float64, error) {
	n := ct.Total()
	rt := ct.RowTotals()
	sumCond := 0.0
	for i, row := range ct.Counts {
		if rt[i] == 0 {
			continue
		}
		for _, v := range row {
			sumCond += v * v / (n * rt[i])
		}
	}
	sumMarg := 0.0
	for _, c := range ct.ColTotals() {
		sumMarg += (c / n) * (c / n)
	}
	if sumMarg == 1 {
		return 0, core.NewDegenerateError("dependent variable has a single category")
	}
	return (sumCond - sumMarg) / (1 - sumMarg), nil
}

// GoodmanKruskalTau is the proportional reduction in variation of the
// dependent variable. It is asymmetric; Symmetric returns the mean of both
// directions.
func GoodmanKruskalTau(ct *tables.Crosstab, dir Direction) (float64, error) {
	if err := checkTable(ct, "Goodman-Kruskal tau"); err != nil {
		return 0, err
	}
	switch dir {
	case ColsGivenRow:
		return tauColsGivenRow(ct)
	case RowsGivenCol:
		return tauColsGivenRow(ct.Transpose())
	case Symmetric, "":
		a, err := tauColsGivenRow(ct)
		if err != nil {
			return 0, err
		}
		b, err := tauColsGivenRow(ct.Transpose())
		if err != nil {
			return 0, err
		}
		return (a + b) / 2, nil
	}
	return 0, core.NewUnknownMethodError("direction", string(dir))
}

func entropy(counts []float64, n float64) float64 {
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / n
			h -= p * math.Log(p)
		}
	}
	return h
}

// TheilU is the uncertainty coefficient (H(X) + H(Y) - H(X,Y)) / H(dependent).
func TheilU(ct *tables.Crosstab, dir Direction) (float64, error) {
	if err := checkTable(ct, "Theil U"); err != nil {
		return 0, err
	}
	n := ct.Total()
	hr := entropy(ct.RowTotals(), n)
	hc := entropy(ct.ColTotals(), n)
	var cells []float64
	for _, row := range ct.Counts {
		cells = append(cells, row...)
	}
	mutual := hr + hc - entropy(cells, n)

	var den float64
	switch dir {
	case ColsGivenRow:
		den = hc
	case RowsGivenCol:
		den = hr
	case Symmetric, "":
		mutual *= 2
		den = hr + hc
	default:
		return 0, core.NewUnknownMethodError("direction", string(dir))
	}
	if den == 0 {
		return 0, core.NewDegenerateError("zero entropy")
	}
	return mutual / den, nil
}

func agreement(ct *tables.Crosstab, name string) (po float64, rowP, colP []float64, err error) {
	if err := checkTable(ct, name); err != nil {
		return 0, nil, nil, err
	}
	if ct.Rows() != ct.Cols() {
		return 0, nil, nil, core.NewValidationError(name, "table must be square")
	}
	n := ct.Total()
	for i := range ct.Counts {
		po += ct.Counts[i][i] / n
	}
	rowP, colP = ct.RowTotals(), ct.ColTotals()
	for i := range rowP {
		rowP[i] /= n
		colP[i] /= n
	}
	return po, rowP, colP, nil
}

// CohenKappa is (p_o - p_e)/(1 - p_e) with p_e from the product of margins.
func CohenKappa(ct *tables.Crosstab) (float64, error) {
	po, rowP, colP, err := agreement(ct, "Cohen kappa")
	if err != nil {
		return 0, err
	}
	pe := 0.0
	for i := range rowP {
		pe += rowP[i] * colP[i]
	}
	if pe == 1 {
		return 0, core.NewDegenerateError("expected agreement is 1")
	}
	return (po - pe) / (1 - pe), nil
}

// ScottPi is kappa with p_e taken from the pooled margins.
func ScottPi(ct *tables.Crosstab) (float64, error) {
	po, rowP, colP, err := agreement(ct, "Scott pi")
	if err != nil {
		return 0, err
	}
	pe := 0.0
	for i := range rowP {
		m := (rowP[i] + colP[i]) / 2
		pe += m * m
	}
	if pe == 1 {
		return 0, core.NewDegenerateError("expected agreement is 1")
	}
	return (po - pe) / (1 - pe), nil
}
