package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestResultJSONKeepsNonFiniteValues(t *testing.T) {
	in := TestResult{
		Test:      "Pearson t-test",
		Statistic: math.Inf(1),
		DF:        3,
		PValue:    0,
		N:         5,
		Extra:     map[string]float64{"z": math.NaN(), "U": 4},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"statistic":"+Inf"`)
	assert.NotContains(t, string(b), `"df2"`)

	var out TestResult
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, math.IsInf(out.Statistic, 1))
	assert.True(t, math.IsNaN(out.Extra["z"]))
	assert.Equal(t, 4.0, out.Extra["U"])
	assert.Equal(t, in.Test, out.Test)
	assert.Equal(t, 3.0, out.DF)
}

func TestCorrelationJSONUsesNestedTest(t *testing.T) {
	c := Correlation{Measure: "pearson", Coefficient: 1, N: 4, Test: TestResult{Test: "t", Statistic: math.Inf(1)}}
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var out Correlation
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, math.IsInf(out.Test.Statistic, 1))
}

func TestFloatNullIsNaN(t *testing.T) {
	var v []Float
	require.NoError(t, json.Unmarshal([]byte(`[1.5, null, "-Inf"]`), &v))
	assert.Equal(t, Float(1.5), v[0])
	assert.True(t, math.IsNaN(float64(v[1])))
	assert.True(t, math.IsInf(float64(v[2]), -1))
}

func TestComparisonJSONKeepsNaN(t *testing.T) {
	c := Comparison{Group1: "a", Group2: "b", Statistic: math.NaN(), PValue: math.NaN(), AdjustedP: math.NaN(), Test: "Welch t"}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"statistic":"NaN"`)

	var out Comparison
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "b", out.Group2)
	assert.True(t, math.IsNaN(out.AdjustedP))
}
