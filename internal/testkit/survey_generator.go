package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"stikpet/adapters/excel"
)

// SurveyConfig configures the survey data generator
type SurveyConfig struct {
	Respondents  int     `json:"respondents"`
	MissingRate  float64 `json:"missing_rate"`  // Share of blank cells per column
	GroupEffect  float64 `json:"group_effect"`  // Mean shift of score between adjacent groups
	PretestSlope float64 `json:"pretest_slope"` // Dependence of posttest on pretest
	Seed         int64   `json:"seed"`
}

// DefaultSurveyConfig returns sensible defaults for survey generation
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Respondents:  120,
		MissingRate:  0.03,
		GroupEffect:  4,
		PretestSlope: 0.8,
		Seed:         42,
	}
}

// Survey column names.
var SurveyColumns = []string{"gender", "school", "rating", "passed", "pretest", "posttest", "hours"}

// SurveyRatings is the order of the Likert column.
var SurveyRatings = []string{"very bad", "bad", "neutral", "good", "very good"}

// SurveyGenerator produces a deterministic questionnaire with nominal,
// ordinal, binary and scale columns whose relations are known.
type SurveyGenerator struct {
	config SurveyConfig
	rng    *rand.Rand
}

// NewSurveyGenerator creates a new survey generator
func NewSurveyGenerator(config SurveyConfig) *SurveyGenerator {
	return &SurveyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Columns generates the survey as named text columns.
func (g *SurveyGenerator) Columns() map[string][]string {
	n := g.config.Respondents
	cols := make(map[string][]string, len(SurveyColumns))
	for _, c := range SurveyColumns {
		cols[c] = make([]string, n)
	}

	schools := []string{"north", "east", "west"}
	for i := 0; i < n; i++ {
		gender := "female"
		if g.rng.Float64() < 0.45 {
			gender = "male"
		}
		school := g.rng.Intn(len(schools))
		pretest := 50 + 10*g.rng.NormFloat64()
		posttest := 10 + g.config.PretestSlope*pretest + g.config.GroupEffect*float64(school) + 5*g.rng.NormFloat64()
		hours := math.Max(0, 6+0.1*(posttest-50)+2*g.rng.NormFloat64())

		// Ratings follow posttest so ordinal measures have a signal.
		level := int(math.Round((posttest - 50) / 8))
		level = max(-2, min(2, level)) + 2
		passed := "no"
		if posttest >= 50 {
			passed = "yes"
		}

		cols["gender"][i] = gender
		cols["school"][i] = schools[school]
		cols["rating"][i] = SurveyRatings[level]
		cols["passed"][i] = passed
		cols["pretest"][i] = strconv.FormatFloat(math.Round(pretest*10)/10, 'f', -1, 64)
		cols["posttest"][i] = strconv.FormatFloat(math.Round(posttest*10)/10, 'f', -1, 64)
		cols["hours"][i] = strconv.FormatFloat(math.Round(hours*4)/4, 'f', -1, 64)
	}

	for _, c := range SurveyColumns {
		for i := range cols[c] {
			if g.rng.Float64() < g.config.MissingRate {
				cols[c][i] = ""
			}
		}
	}
	return cols
}

// Table generates the survey as a column table.
func (g *SurveyGenerator) Table() (*excel.Table, error) {
	cols := g.Columns()
	ordered := make([][]string, len(SurveyColumns))
	for i, c := range SurveyColumns {
		ordered[i] = cols[c]
	}
	return excel.FromColumns(SurveyColumns, ordered)
}
