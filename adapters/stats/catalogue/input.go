package catalogue

import (
	"encoding/json"
	"fmt"

	"stikpet/adapters/stats/hypothesis"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// Input carries the data and parameters for one procedure run. Scale data
// uses NaN for missing values, categorical data the empty string.
type Input struct {
	Scale   Values   `json:"scale,omitempty"`
	Scale2  Values   `json:"scale2,omitempty"`
	Field   []string `json:"field,omitempty"`
	Field2  []string `json:"field2,omitempty"`
	Levels  []string `json:"levels,omitempty"`  // Category order of Field
	Levels2 []string `json:"levels2,omitempty"` // Category order of Field2
	Groups  []string `json:"groups,omitempty"`  // Group label per Scale value
	Matrix  []Values `json:"matrix,omitempty"`  // Subjects × conditions for repeated measures
	Params  Params   `json:"params"`
}

// Values is scale data. In JSON a missing value is null or "NaN".
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	out := make([]stats.Float, len(v))
	for i, x := range v {
		out[i] = stats.Float(x)
	}
	return json.Marshal(out)
}

func (v *Values) UnmarshalJSON(b []byte) error {
	var in []stats.Float
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*v = make(Values, len(in))
	for i, x := range in {
		(*v)[i] = float64(x)
	}
	return nil
}

// Params are the optional knobs shared by the procedures. Zero values mean
// the documented default of each procedure. Trim and Lambda are pointers
// because zero is a meaningful setting for both.
type Params struct {
	Mu          float64           `json:"mu,omitempty"`
	Sigma       float64           `json:"sigma,omitempty"`
	P0          float64           `json:"p0,omitempty" validate:"omitempty,gt=0,lt=1"`
	Trim        *float64          `json:"trim,omitempty" validate:"omitempty,gte=0,lt=0.5"`
	Lambda      *float64          `json:"lambda,omitempty"`
	Success     string            `json:"success,omitempty"`
	Alternative stats.Alternative `json:"alternative,omitempty" validate:"omitempty,oneof=two-sided less greater"`
	Correction  stats.Correction  `json:"correction,omitempty" validate:"omitempty,oneof=none yates williams pearson"`
	Method      string            `json:"method,omitempty"`
	Direction   string            `json:"direction,omitempty" validate:"omitempty,oneof=symmetric rows columns"`
	Adjust      string            `json:"adjust,omitempty" validate:"omitempty,oneof=bonferroni holm hochberg bh none"`
	Expected    []float64         `json:"expected,omitempty"`
	Continuity  bool              `json:"continuity,omitempty"`
	Exact       bool              `json:"exact,omitempty"`
}

func (p Params) alt() stats.Alternative {
	if p.Alternative == "" {
		return stats.TwoSided
	}
	return p.Alternative
}

func (p Params) p0() float64 {
	if p.P0 == 0 {
		return 0.5
	}
	return p.P0
}

func (p Params) trim(def float64) float64 {
	if p.Trim == nil {
		return def
	}
	return *p.Trim
}

func (in Input) needScale() ([]float64, error) {
	if len(in.Scale) == 0 {
		return nil, core.NewValidationError("scale", "required")
	}
	return in.Scale, nil
}

func (in Input) needPair() ([]float64, []float64, error) {
	if len(in.Scale) == 0 || len(in.Scale2) == 0 {
		return nil, nil, core.NewValidationError("scale, scale2", "both required")
	}
	return in.Scale, in.Scale2, nil
}

func (in Input) needField() ([]string, error) {
	if len(in.Field) == 0 {
		return nil, core.NewValidationError("field", "required")
	}
	return in.Field, nil
}

// groups splits Scale by Groups, ordered by Levels when given.
func (in Input) groups(min int) ([]tables.Group, error) {
	if len(in.Scale) == 0 || len(in.Groups) == 0 {
		return nil, core.NewValidationError("scale, groups", "both required")
	}
	gs, err := tables.SplitByGroup(in.Groups, in.Scale, in.Levels)
	if err != nil {
		return nil, err
	}
	if len(gs) < min {
		return nil, core.NewValidationError("groups", fmt.Sprintf("need at least %d groups, got %d", min, len(gs)))
	}
	return gs, nil
}

// twoGroups returns the scores of exactly two groups.
func (in Input) twoGroups() ([]float64, []float64, error) {
	gs, err := in.groups(2)
	if err != nil {
		return nil, nil, err
	}
	if len(gs) != 2 {
		return nil, nil, core.NewValidationError("groups", fmt.Sprintf("need exactly two groups, got %d", len(gs)))
	}
	return gs[0].Scores, gs[1].Scores, nil
}

func scoresOf(gs []tables.Group) [][]float64 {
	out := make([][]float64, len(gs))
	for i, g := range gs {
		out[i] = g.Scores
	}
	return out
}

// crosstab cross-classifies Field (rows) by Field2 (columns).
func (in Input) crosstab() (*tables.Crosstab, error) {
	if len(in.Field) == 0 || len(in.Field2) == 0 {
		return nil, core.NewValidationError("field, field2", "both required")
	}
	return tables.NewCrosstab(in.Field, in.Field2, in.Levels, in.Levels2)
}

// rows returns Matrix, or Scale and Scale2 as subjects × 2 conditions.
func (in Input) rows() ([][]float64, error) {
	if len(in.Matrix) > 0 {
		out := make([][]float64, len(in.Matrix))
		for i, row := range in.Matrix {
			out[i] = row
		}
		return out, nil
	}
	x, y, err := in.needPair()
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, core.ErrLengthMismatch
	}
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = []float64{x[i], y[i]}
	}
	return out, nil
}

// gof tabulates Field against the expected weights.
func (in Input) gof() (cats []string, obs, exp []float64, err error) {
	data, err := in.needField()
	if err != nil {
		return nil, nil, nil, err
	}
	cats = in.Levels
	if len(cats) == 0 {
		cats = tables.Categories(data)
	}
	obs, exp, err = hypothesis.GOFCounts(data, cats, in.Params.Expected)
	return cats, obs, exp, err
}
