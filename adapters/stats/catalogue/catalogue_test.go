package catalogue

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/domain/core"
)

func groupedInput() Input {
	return Input{
		Scale:  []float64{1, 2, 3, 4, 5, 6, math.NaN()},
		Groups: []string{"a", "a", "a", "b", "b", "b", "b"},
	}
}

func TestListAndLookup(t *testing.T) {
	c := New(Options{})

	all := c.List("")
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.True(t, prev.Kind < cur.Kind || prev.Kind == cur.Kind && prev.Name < cur.Name, "%v before %v", prev, cur)
	}

	tests := c.List(KindTest)
	require.NotEmpty(t, tests)
	for _, info := range tests {
		assert.Equal(t, KindTest, info.Kind)
	}

	p, err := c.Lookup("welch-t")
	require.NoError(t, err)
	assert.Equal(t, KindTest, p.Kind())

	_, err = c.Lookup("astrology")
	assert.ErrorIs(t, err, core.ErrProcedureNotFound)
}

func TestEveryKindIsPopulated(t *testing.T) {
	c := New(Options{})
	for _, k := range []Kind{KindTable, KindLocation, KindEffectSize, KindCorrelation, KindTest, KindPostHoc} {
		assert.NotEmpty(t, c.List(k), "kind %s", k)
	}
}

func TestRunLocationAndTable(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	out, err := c.Run(ctx, "mean", Input{Scale: []float64{1, 2, 3, 4, math.NaN()}})
	require.NoError(t, err)
	require.NotNil(t, out.Estimate)
	assert.Equal(t, "mean", out.Procedure)
	assert.Equal(t, KindLocation, out.Kind)
	assert.InDelta(t, 2.5, out.Estimate.Value, 1e-12)
	assert.Equal(t, 4, out.Estimate.N)

	freq, err := c.Run(ctx, "frequencies", Input{Field: []string{"x", "y", "x", ""}})
	require.NoError(t, err)
	require.Len(t, freq.Frequencies, 2)

	_, err = c.Run(ctx, "mean", Input{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRunTests(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	field := []string{"a", "a", "a", "a", "a", "a", "a", "b", "b", "b"}
	bin, err := c.Run(ctx, "binomial", Input{Field: field, Params: Params{Success: "a"}})
	require.NoError(t, err)
	require.NotNil(t, bin.Test)
	assert.InDelta(t, 0.34375, bin.Test.PValue, 1e-12)

	anova, err := c.Run(ctx, "fisher-owa", groupedInput())
	require.NoError(t, err)
	assert.InDelta(t, 13.5, anova.Test.Statistic, 1e-9)

	kw, err := c.Run(ctx, "kruskal-wallis", groupedInput())
	require.NoError(t, err)
	assert.InDelta(t, 27.0/7, kw.Test.Statistic, 1e-9)

	_, err = c.Run(ctx, "z-one-sample", Input{Scale: []float64{1, 2, 3}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = c.Run(ctx, "welch-t", Input{Scale: []float64{1, 2, 3}, Groups: []string{"a", "b", "c"}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestZeroTrimIsHonoured(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	zero := 0.0

	trimmed, err := c.Run(ctx, "trimmed-mean", Input{Scale: x})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, trimmed.Estimate.Value, 1e-12)

	untrimmed, err := c.Run(ctx, "trimmed-mean", Input{Scale: x, Params: Params{Trim: &zero}})
	require.NoError(t, err)
	assert.InDelta(t, 14.5, untrimmed.Estimate.Value, 1e-12)

	in := groupedInput()
	in.Params.Trim = &zero
	yuen, err := c.Run(ctx, "yuen-t", in)
	require.NoError(t, err)
	welch, err := c.Run(ctx, "welch-t", groupedInput())
	require.NoError(t, err)
	assert.InDelta(t, welch.Test.Statistic, yuen.Test.Statistic, 1e-12)

	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"trim":0}`), &p))
	require.NotNil(t, p.Trim)
	assert.Equal(t, 0.0, *p.Trim)
}

func TestRunEffectSizesAndCorrelations(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	eta, err := c.Run(ctx, "eta-squared", groupedInput())
	require.NoError(t, err)
	assert.InDelta(t, 13.5/17.5, eta.Estimate.Value, 1e-9)
	require.NotNil(t, eta.Interpretation)
	assert.Equal(t, "large", eta.Interpretation.Label)

	r, err := c.Run(ctx, "pearson", Input{Scale: []float64{1, 2, 3, 4, 5}, Scale2: []float64{2, 4, 5, 4, 5}})
	require.NoError(t, err)
	require.NotNil(t, r.Correlation)
	assert.InDelta(t, 6/math.Sqrt(60), r.Correlation.Coefficient, 1e-12)
	assert.NotNil(t, r.Interpretation)

	cv, err := c.Run(ctx, "cramer-v", Input{
		Field:  []string{"m", "m", "f", "f"},
		Field2: []string{"y", "y", "n", "n"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cv.Estimate.Value, 1e-12)

	or, err := c.Run(ctx, "bin-bin", Input{
		Field:  []string{"m", "m", "m", "f", "f", "f"},
		Field2: []string{"y", "y", "n", "n", "n", "y"},
		Params: Params{Method: "yule-q"},
	})
	require.NoError(t, err)
	// rows f,m and columns n,y give a=2 b=1 c=1 d=2, so OR = 4 and Q = 3/5.
	assert.InDelta(t, 0.6, or.Estimate.Value, 1e-12)
}

func TestRunPostHoc(t *testing.T) {
	c := New(Options{})
	in := Input{
		Scale:  []float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Groups: []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"},
		Params: Params{Method: "student", Adjust: "holm"},
	}
	out, err := c.Run(context.Background(), "pairwise", in)
	require.NoError(t, err)
	require.Len(t, out.Comparisons, 3)
	for _, row := range out.Comparisons {
		assert.GreaterOrEqual(t, row.AdjustedP, row.PValue)
	}

	in.Params.Method = "bogus"
	_, err = c.Run(context.Background(), "pairwise", in)
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestRunAll(t *testing.T) {
	c := New(Options{MaxConcurrency: 2})
	names := []string{"fisher-owa", "welch-owa", "kruskal-wallis", "pearson"}

	results, err := c.RunAll(context.Background(), names, groupedInput())
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, res := range results[:3] {
		assert.Equal(t, names[i], res.Procedure)
		assert.Empty(t, res.Error)
		assert.NotNil(t, res.Outcome)
	}
	// pearson needs scale2; the failure stays local to its entry.
	assert.Nil(t, results[3].Outcome)
	assert.Contains(t, results[3].Error, "pearson")

	_, err = c.RunAll(context.Background(), []string{"mean", "nope"}, groupedInput())
	assert.ErrorIs(t, err, core.ErrProcedureNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RunAll(ctx, names, groupedInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInputJSONCarriesMissingValues(t *testing.T) {
	in := Input{Scale: Values{1, math.NaN(), 3}, Matrix: []Values{{1, 0}, {math.NaN(), 1}}}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Input
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out.Scale, 3)
	assert.True(t, math.IsNaN(out.Scale[1]))
	assert.True(t, math.IsNaN(out.Matrix[1][0]))

	require.NoError(t, json.Unmarshal([]byte(`{"scale":[2,null,4],"params":{}}`), &out))
	assert.True(t, math.IsNaN(out.Scale[1]))
}
