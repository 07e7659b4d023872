package stats

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEST OUTCOMES
// ============================================================================

// TestResult is the outcome of one significance test.
// INVARIANTS:
// - PValue is in [0, 1]
// - N counts the observations left after missing values were dropped
type TestResult struct {
	Test      string             `json:"test"`
	Statistic float64            `json:"statistic"`
	DF        float64            `json:"df,omitempty"`
	DF2       float64            `json:"df2,omitempty"` // Denominator df for F tests
	PValue    float64            `json:"p_value"`
	N         int                `json:"n"`
	Extra     map[string]float64 `json:"extra,omitempty"` // Secondary quantities (z, U, critical values)
}

// Significant reports whether the p-value is below alpha.
func (r TestResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

func (r TestResult) String() string {
	if r.DF2 > 0 {
		return fmt.Sprintf("%s: statistic=%.4f, df=(%.4g, %.4g), p=%.4g, n=%d", r.Test, r.Statistic, r.DF, r.DF2, r.PValue, r.N)
	}
	if r.DF > 0 {
		return fmt.Sprintf("%s: statistic=%.4f, df=%.4g, p=%.4g, n=%d", r.Test, r.Statistic, r.DF, r.PValue, r.N)
	}
	return fmt.Sprintf("%s: statistic=%.4f, p=%.4g, n=%d", r.Test, r.Statistic, r.PValue, r.N)
}

// Estimate is a single descriptive value: an effect size or a location measure.
type Estimate struct {
	Measure string             `json:"measure"`
	Value   float64            `json:"value"`
	N       int                `json:"n"`
	Extra   map[string]float64 `json:"extra,omitempty"`
}

// Correlation is a coefficient together with its significance test.
type Correlation struct {
	Measure     string     `json:"measure"`
	Coefficient float64    `json:"coefficient"`
	N           int        `json:"n"`
	Test        TestResult `json:"test"`
}

// ============================================================================
// SMALL SUMMARY TABLES
// ============================================================================

// FrequencyRow is one line of a frequency table.
type FrequencyRow struct {
	Category          string  `json:"category"`
	Count             int     `json:"count"`
	Percent           float64 `json:"percent"`
	ValidPercent      float64 `json:"valid_percent"`
	CumulativePercent float64 `json:"cumulative_percent"`
}

// Comparison is one row of a post-hoc table.
type Comparison struct {
	Group1    string  `json:"group1"`
	Group2    string  `json:"group2"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	AdjustedP float64 `json:"adjusted_p"`
	Test      string  `json:"test"`
}

// Interpretation is a rule-of-thumb label for an effect size.
type Interpretation struct {
	Label  string `json:"label"`  // "negligible", "small", "medium", "large"
	Source string `json:"source"` // Citation of the rule of thumb
}

// ============================================================================
// TEST PARAMETERS
// ============================================================================

// Alternative selects the tail(s) of a significance test.
type Alternative string

const (
	TwoSided Alternative = "two-sided"
	Less     Alternative = "less"
	Greater  Alternative = "greater"
)

// ParseAlternative accepts the usual spellings; the empty string means two-sided.
func ParseAlternative(s string) (Alternative, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "two-sided", "two.sided", "two_sided", "two":
		return TwoSided, nil
	case "less", "lower", "left":
		return Less, nil
	case "greater", "upper", "right":
		return Greater, nil
	}
	return "", fmt.Errorf("unknown alternative %q", s)
}

// Correction selects a continuity or small-sample correction.
type Correction string

const (
	NoCorrection Correction = "none"
	Yates        Correction = "yates"
	Williams     Correction = "williams"
	PearsonCorr  Correction = "pearson"
)
