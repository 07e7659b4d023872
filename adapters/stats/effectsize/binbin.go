package effectsize

import (
	"math"
	"sort"

	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
)

// Cells is a 2x2 table read row by row:
//
//	a b
//	c d
type Cells struct {
	A, B, C, D float64
}

// CellsOf reads the four cells of a 2x2 crosstab.
func CellsOf(ct *tables.Crosstab) (Cells, error) {
	a, b, c, d, err := ct.Cells2x2()
	if err != nil {
		return Cells{}, err
	}
	return Cells{a, b, c, d}, nil
}

// N is the table total.
func (t Cells) N() float64 { return t.A + t.B + t.C + t.D }

// haldane adds 0.5 to every cell when any cell is zero.
func (t Cells) haldane() Cells {
	if t.A == 0 || t.B == 0 || t.C == 0 || t.D == 0 {
		return Cells{t.A + 0.5, t.B + 0.5, t.C + 0.5, t.D + 0.5}
	}
	return t
}

// OddsRatio is ad/bc, with the Haldane-Anscombe correction for zero cells.
func OddsRatio(t Cells) (float64, error) {
	if t.N() <= 0 {
		return 0, core.NewInsufficientDataError("odds ratio", 0, 1)
	}
	h := t.haldane()
	return (h.A * h.D) / (h.B * h.C), nil
}

// YuleQ is (OR - 1)/(OR + 1).
func YuleQ(t Cells) (float64, error) {
	or, err := OddsRatio(t)
	if err != nil {
		return 0, err
	}
	return (or - 1) / (or + 1), nil
}

// YuleY is (√OR - 1)/(√OR + 1), the coefficient of colligation.
func YuleY(t Cells) (float64, error) {
	or, err := OddsRatio(t)
	if err != nil {
		return 0, err
	}
	s := math.Sqrt(or)
	return (s - 1) / (s + 1), nil
}

// Digby is (OR^¾ - 1)/(OR^¾ + 1).
func Digby(t Cells) (float64, error) {
	or, err := OddsRatio(t)
	if err != nil {
		return 0, err
	}
	s := math.Pow(or, 0.75)
	return (s - 1) / (s + 1), nil
}

// PearsonQ2 is Pearson's Q2 = cos(π/(1 + √OR)).
func PearsonQ2(t Cells) (float64, error) {
	or, err := OddsRatio(t)
	if err != nil {
		return 0, err
	}
	return math.Cos(math.Pi / (1 + math.Sqrt(or))), nil
}

// ColeC7 is Cole's (1949) coefficient of interspecific association. The
// denominator depends on the sign of ad - bc and on whether a <= d.
func ColeC7(t Cells) (float64, error) {
	diff := t.A*t.D - t.B*t.C
	var den float64
	switch {
	case diff >= 0:
		den = (t.A + t.B) * (t.B + t.D)
	case t.A <= t.D:
		den = (t.A + t.B) * (t.A + t.C)
	default:
		den = (t.B + t.D) * (t.C + t.D)
	}
	if den == 0 {
		if diff == 0 {
			return 0, nil
		}
		return 0, core.NewDegenerateError("empty margin")
	}
	return diff / den, nil
}

func ratio(num, den float64, what string) (float64, error) {
	if den == 0 {
		return 0, core.NewDegenerateError(what + " is undefined for this table")
	}
	return num / den, nil
}

// Jaccard is a/(a + b + c).
func Jaccard(t Cells) (float64, error) { return ratio(t.A, t.A+t.B+t.C, "Jaccard") }

// Dice is 2a/(2a + b + c).
func Dice(t Cells) (float64, error) { return ratio(2*t.A, 2*t.A+t.B+t.C, "Dice") }

// SimpleMatching is (a + d)/n.
func SimpleMatching(t Cells) (float64, error) {
	return ratio(t.A+t.D, t.N(), "simple matching")
}

// Forbes is n·a/((a + b)(a + c)).
func Forbes(t Cells) (float64, error) {
	return ratio(t.N()*t.A, (t.A+t.B)*(t.A+t.C), "Forbes")
}

// McConnaughey is (a² - bc)/((a + b)(a + c)).
func McConnaughey(t Cells) (float64, error) {
	return ratio(t.A*t.A-t.B*t.C, (t.A+t.B)*(t.A+t.C), "McConnaughey")
}

var binBinMeasures = map[string]func(Cells) (float64, error){
	"odds-ratio":      OddsRatio,
	"yule-q":          YuleQ,
	"yule-y":          YuleY,
	"digby":           Digby,
	"pearson-q2":      PearsonQ2,
	"cole-c7":         ColeC7,
	"jaccard":         Jaccard,
	"dice":            Dice,
	"simple-matching": SimpleMatching,
	"forbes":          Forbes,
	"mcconnaughey":    McConnaughey,
	"phi": func(t Cells) (float64, error) {
		ct, err := tables.FromCounts([][]float64{{t.A, t.B}, {t.C, t.D}})
		if err != nil {
			return 0, err
		}
		return Phi(ct)
	},
}

// BinBinMeasures lists the names BinBin accepts.
func BinBinMeasures() []string {
	out := make([]string, 0, len(binBinMeasures))
	for k := range binBinMeasures {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BinBin computes the named association measure for a 2x2 table.
func BinBin(t Cells, measure string) (float64, error) {
	f, ok := binBinMeasures[measure]
	if !ok {
		return 0, core.NewUnknownMethodError("binary association measure", measure)
	}
	return f(t)
}
