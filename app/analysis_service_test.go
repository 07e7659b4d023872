package app

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/adapters/excel"
	"stikpet/adapters/stats/catalogue"
	"stikpet/domain/analysis"
	"stikpet/domain/core"
	"stikpet/internal"
	"stikpet/internal/errors"
	"stikpet/internal/testkit"
)

func newService(t *testing.T, opts AnalysisOptions) (*AnalysisService, *testkit.InMemoryAnalysisRepository) {
	t.Helper()
	repo := testkit.NewInMemoryAnalysisRepository()
	svc := NewAnalysisService(catalogue.New(catalogue.Options{}), repo, internal.NewLogger(internal.LogLevelError), opts)
	return svc, repo
}

func groups() catalogue.Input {
	return catalogue.Input{
		Scale:  catalogue.Values{1, 2, 3, 4, 5, 6},
		Groups: []string{"a", "a", "a", "b", "b", "b"},
	}
}

func TestRunStoresAnalysis(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, AnalysisOptions{Alpha: 0.05})

	res, err := svc.Run(ctx, "fisher-owa", groups())
	require.NoError(t, err)
	require.NotNil(t, res.Outcome.Test)
	assert.InDelta(t, 13.5, res.Outcome.Test.Statistic, 1e-9)
	require.NotNil(t, res.Significant)
	assert.True(t, *res.Significant)
	assert.False(t, res.Cached)

	stored, err := repo.Get(ctx, res.Analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, "fisher-owa", stored.Procedure)
	assert.Equal(t, string(catalogue.KindTest), stored.Kind)

	a, out, err := svc.Get(ctx, res.Analysis.ID.String())
	require.NoError(t, err)
	assert.Equal(t, res.Analysis.ID, a.ID)
	assert.InDelta(t, 13.5, out.Test.Statistic, 1e-9)
}

func TestRunReusesCachedOutcome(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, AnalysisOptions{ReuseCached: true})

	first, err := svc.Run(ctx, "mean", catalogue.Input{Scale: catalogue.Values{1, 2, math.NaN(), 5}})
	require.NoError(t, err)
	second, err := svc.Run(ctx, "mean", catalogue.Input{Scale: catalogue.Values{1, 2, math.NaN(), 5}})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Analysis.ID, second.Analysis.ID)
	assert.InDelta(t, 8.0/3, second.Outcome.Estimate.Value, 1e-12)

	all, err := repo.List(ctx, analysis.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunErrorsCarryCodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, AnalysisOptions{})

	_, err := svc.Run(ctx, "astrology", groups())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.Run(ctx, "mean", catalogue.Input{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	in := groups()
	in.Params.P0 = 1.5
	_, err = svc.Run(ctx, "binomial", in)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, _, err = svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

var errStoreDown = fmt.Errorf("store down")

// brokenRepository fails every write and listing.
type brokenRepository struct {
	*testkit.InMemoryAnalysisRepository
}

func (brokenRepository) Save(context.Context, *analysis.Analysis) error { return errStoreDown }

func (brokenRepository) List(context.Context, analysis.Filter) ([]*analysis.Analysis, error) {
	return nil, errStoreDown
}

func TestRepositoryFailuresAreDatabaseErrors(t *testing.T) {
	ctx := context.Background()
	repo := brokenRepository{testkit.NewInMemoryAnalysisRepository()}
	svc := NewAnalysisService(catalogue.New(catalogue.Options{}), repo, internal.NewLogger(internal.LogLevelError), AnalysisOptions{})

	_, err := svc.Run(ctx, "mean", groups())
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.List(ctx, analysis.Filter{})
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetUndecodableOutcomeIsInternal(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, AnalysisOptions{})
	a := &analysis.Analysis{
		ID:        core.NewAnalysisID(),
		Procedure: "mean",
		Outcome:   []byte(`"not an outcome"`),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Save(ctx, a))

	_, _, err := svc.Get(ctx, a.ID.String())
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))

	_, _, err = svc.Get(ctx, core.NewAnalysisID().String())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRunBattery(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, AnalysisOptions{})

	results, err := svc.RunBattery(ctx, []string{"welch-t", "mann-whitney", "pearson"}, groups())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NotNil(t, results[0].Outcome)
	assert.NotNil(t, results[1].Outcome)
	assert.NotEmpty(t, results[2].Error)

	stored, err := repo.List(ctx, analysis.Filter{Kind: string(catalogue.KindTest)})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	_, err = svc.RunBattery(ctx, nil, groups())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBuildInput(t *testing.T) {
	table, err := excel.FromColumns(
		[]string{"school", "pre", "post", "rating"},
		[][]string{
			{"n", "n", "e", "e"},
			{"10", "12", "", "9"},
			{"11", "15", "14", "8"},
			{"low", "high", "high", ""},
		},
	)
	require.NoError(t, err)

	in, err := BuildInput(table, ColumnSelection{Scale: "post", Groups: "school", Matrix: []string{"pre", "post"}, Field: "rating"}, catalogue.Params{})
	require.NoError(t, err)
	assert.Equal(t, catalogue.Values{11, 15, 14, 8}, in.Scale)
	assert.Equal(t, []string{"n", "n", "e", "e"}, in.Groups)
	require.Len(t, in.Matrix, 4)
	assert.True(t, math.IsNaN(in.Matrix[2][0]))
	assert.Equal(t, 14.0, in.Matrix[2][1])
	assert.Equal(t, "", in.Field[3])

	_, err = BuildInput(table, ColumnSelection{Scale: "rating"}, catalogue.Params{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = BuildInput(table, ColumnSelection{Scale: "nope"}, catalogue.Params{})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
