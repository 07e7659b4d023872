package catalogue

import (
	"stikpet/adapters/stats/tables"
	"stikpet/domain/stats"
)

func estimate(measure string, v float64, n int) Outcome {
	return Outcome{Estimate: &stats.Estimate{Measure: measure, Value: v, N: n}}
}

func interpreted(o Outcome, label stats.Interpretation) Outcome {
	o.Interpretation = &label
	return o
}

func testOutcome(r stats.TestResult, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Test: &r}, nil
}

func correlationOutcome(r stats.Correlation, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	o := Outcome{Correlation: &r}
	return o, nil
}

func validN(x []float64) int {
	return len(tables.DropNaN(x))
}

func validPairs(x, y []float64) int {
	xs, _, err := tables.PairwiseComplete(x, y)
	if err != nil {
		return 0
	}
	return len(xs)
}

func countAll(gs []tables.Group) int {
	n := 0
	for _, g := range gs {
		n += validN(g.Scores)
	}
	return n
}
