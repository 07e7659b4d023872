package correlation

import (
	"math"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// Concordance holds the pair counts of an ordered crosstab. Agree and
// Disagree are per cell: the number of observations in cells that are
// concordant or discordant with that cell.
type Concordance struct {
	N          float64
	Concordant float64
	Discordant float64
	Agree      [][]float64
	Disagree   [][]float64
}

// ConcordanceCounts counts concordant and discordant pairs. Row and column
// order of the crosstab is taken as the ordinal order.
func ConcordanceCounts(ct *tables.Crosstab) Concordance {
	r, c := ct.Rows(), ct.Cols()
	out := Concordance{N: ct.Total(), Agree: make([][]float64, r), Disagree: make([][]float64, r)}
	for i := 0; i < r; i++ {
		out.Agree[i] = make([]float64, c)
		out.Disagree[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			for k := 0; k < r; k++ {
				for l := 0; l < c; l++ {
					switch {
					case (k > i && l > j) || (k < i && l < j):
						out.Agree[i][j] += ct.Counts[k][l]
					case (k > i && l < j) || (k < i && l > j):
						out.Disagree[i][j] += ct.Counts[k][l]
					}
				}
			}
			out.Concordant += ct.Counts[i][j] * out.Agree[i][j]
			out.Discordant += ct.Counts[i][j] * out.Disagree[i][j]
		}
	}
	// each pair was seen from both cells
	out.Concordant /= 2
	out.Discordant /= 2
	return out
}

// sigma0 is √(Σ n_ij (A_ij - D_ij)² - 4(C - D)²/n), the null standard error
// of C - D shared by gamma, Somers' d and tau-c.
func (c Concordance) sigma0(ct *tables.Crosstab) float64 {
	sum := 0.0
	for i, row := range ct.Counts {
		for j, v := range row {
			d := c.Agree[i][j] - c.Disagree[i][j]
			sum += v * d * d
		}
	}
	s := c.Concordant - c.Discordant
	return math.Sqrt(math.Max(0, sum-4*s*s/c.N))
}

func (c Concordance) zTest(name string, ct *tables.Crosstab, alt stats.Alternative) stats.TestResult {
	res := stats.TestResult{Test: name, N: int(c.N)}
	if s0 := c.sigma0(ct); s0 > 0 {
		res.Statistic = (c.Concordant - c.Discordant) / s0
	}
	res.PValue = distributions.NormalPValue(res.Statistic, alt)
	return res
}

func checkOrdinal(ct *tables.Crosstab, name string) error {
	if ct == nil || ct.Rows() < 2 || ct.Cols() < 2 {
		return core.NewValidationError(name, "need at least a 2x2 table")
	}
	return nil
}

// GoodmanKruskalGamma is (C - D)/(C + D). The asymptotic standard error
// under the alternative is reported as Extra["ASE1"].
func GoodmanKruskalGamma(ct *tables.Crosstab, alt stats.Alternative) (stats.Correlation, error) {
	if err := checkOrdinal(ct, "Goodman-Kruskal gamma"); err != nil {
		return stats.Correlation{}, err
	}
	c := ConcordanceCounts(ct)
	if c.Concordant+c.Discordant == 0 {
		return stats.Correlation{}, core.NewDegenerateError("no untied pairs")
	}
	gamma := (c.Concordant - c.Discordant) / (c.Concordant + c.Discordant)

	p, q := 2*c.Concordant, 2*c.Discordant
	sum := 0.0
	for i, row := range ct.Counts {
		for j, v := range row {
			d := q*c.Agree[i][j] - p*c.Disagree[i][j]
			sum += v * d * d
		}
	}
	test := c.zTest("Goodman-Kruskal gamma z-test", ct, alt)
	test.Extra = map[string]float64{"ASE1": 4 / ((p + q) * (p + q)) * math.Sqrt(sum)}
	return stats.Correlation{Measure: "goodman-kruskal-gamma", Coefficient: gamma, N: int(c.N), Test: test}, nil
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

// SomersD is 2(C - D)/(n² - Σ m²) where m are the margins of the
// independent variable. Symmetric uses the mean of both denominators.
func SomersD(ct *tables.Crosstab, dir effectsize.Direction, alt stats.Alternative) (stats.Correlation, error) {
	if err := checkOrdinal(ct, "Somers d"); err != nil {
		return stats.Correlation{}, err
	}
	c := ConcordanceCounts(ct)
	n2 := c.N * c.N
	wr := n2 - sumSquares(ct.RowTotals())
	wc := n2 - sumSquares(ct.ColTotals())

	var den float64
	switch dir {
	case effectsize.ColsGivenRow:
		den = wr / 2
	case effectsize.RowsGivenCol:
		den = wc / 2
	case effectsize.Symmetric, "":
		den = (wr + wc) / 4
	default:
		return stats.Correlation{}, core.NewUnknownMethodError("direction", string(dir))
	}
	if den == 0 {
		return stats.Correlation{}, core.NewDegenerateError("all pairs tied on the independent variable")
	}
	return stats.Correlation{
		Measure:     "somers-d",
		Coefficient: (c.Concordant - c.Discordant) / den,
		N:           int(c.N),
		Test:        c.zTest("Somers d z-test", ct, alt),
	}, nil
}

// StuartTauC is 2m(C - D)/(n²(m - 1)) with m = min(rows, cols).
func StuartTauC(ct *tables.Crosstab, alt stats.Alternative) (stats.Correlation, error) {
	if err := checkOrdinal(ct, "Stuart tau-c"); err != nil {
		return stats.Correlation{}, err
	}
	c := ConcordanceCounts(ct)
	m := float64(min(ct.Rows(), ct.Cols()))
	return stats.Correlation{
		Measure:     "stuart-tau-c",
		Coefficient: 2 * m * (c.Concordant - c.Discordant) / (c.N * c.N * (m - 1)),
		N:           int(c.N),
		Test:        c.zTest("Stuart tau-c z-test", ct, alt),
	}, nil
}
