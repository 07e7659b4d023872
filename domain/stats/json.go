package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 whose JSON form can carry NaN and ±Inf, written as the
// strings "NaN", "+Inf" and "-Inf". JSON null decodes to NaN.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := string(b)
	switch s {
	case "null", `"NaN"`:
		*f = Float(math.NaN())
		return nil
	case `"+Inf"`, `"Inf"`:
		*f = Float(math.Inf(1))
		return nil
	case `"-Inf"`:
		*f = Float(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("stats.Float: %w", err)
	}
	*f = Float(v)
	return nil
}

func toFloatMap(m map[string]float64) map[string]Float {
	if m == nil {
		return nil
	}
	out := make(map[string]Float, len(m))
	for k, v := range m {
		out[k] = Float(v)
	}
	return out
}

func fromFloatMap(m map[string]Float) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

type testResultJSON struct {
	Test      string           `json:"test"`
	Statistic Float            `json:"statistic"`
	DF        Float            `json:"df,omitempty"`
	DF2       Float            `json:"df2,omitempty"`
	PValue    Float            `json:"p_value"`
	N         int              `json:"n"`
	Extra     map[string]Float `json:"extra,omitempty"`
}

func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(testResultJSON{
		Test:      r.Test,
		Statistic: Float(r.Statistic),
		DF:        Float(r.DF),
		DF2:       Float(r.DF2),
		PValue:    Float(r.PValue),
		N:         r.N,
		Extra:     toFloatMap(r.Extra),
	})
}

func (r *TestResult) UnmarshalJSON(b []byte) error {
	var w testResultJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = TestResult{
		Test:      w.Test,
		Statistic: float64(w.Statistic),
		DF:        float64(w.DF),
		DF2:       float64(w.DF2),
		PValue:    float64(w.PValue),
		N:         w.N,
		Extra:     fromFloatMap(w.Extra),
	}
	return nil
}

type estimateJSON struct {
	Measure string           `json:"measure"`
	Value   Float            `json:"value"`
	N       int              `json:"n"`
	Extra   map[string]Float `json:"extra,omitempty"`
}

func (e Estimate) MarshalJSON() ([]byte, error) {
	return json.Marshal(estimateJSON{
		Measure: e.Measure,
		Value:   Float(e.Value),
		N:       e.N,
		Extra:   toFloatMap(e.Extra),
	})
}

func (e *Estimate) UnmarshalJSON(b []byte) error {
	var w estimateJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Estimate{Measure: w.Measure, Value: float64(w.Value), N: w.N, Extra: fromFloatMap(w.Extra)}
	return nil
}

type comparisonJSON struct {
	Group1    string `json:"group1"`
	Group2    string `json:"group2"`
	Statistic Float  `json:"statistic"`
	PValue    Float  `json:"p_value"`
	AdjustedP Float  `json:"adjusted_p"`
	Test      string `json:"test"`
}

func (c Comparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(comparisonJSON{
		Group1:    c.Group1,
		Group2:    c.Group2,
		Statistic: Float(c.Statistic),
		PValue:    Float(c.PValue),
		AdjustedP: Float(c.AdjustedP),
		Test:      c.Test,
	})
}

func (c *Comparison) UnmarshalJSON(b []byte) error {
	var w comparisonJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*c = Comparison{
		Group1:    w.Group1,
		Group2:    w.Group2,
		Statistic: float64(w.Statistic),
		PValue:    float64(w.PValue),
		AdjustedP: float64(w.AdjustedP),
		Test:      w.Test,
	}
	return nil
}
