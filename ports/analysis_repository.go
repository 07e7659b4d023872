package ports

import (
	"context"

	"stikpet/domain/analysis"
	"stikpet/domain/core"
)

// AnalysisRepository persists procedure runs.
type AnalysisRepository interface {
	Save(ctx context.Context, a *analysis.Analysis) error
	Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error)
	List(ctx context.Context, filter analysis.Filter) ([]*analysis.Analysis, error)
	// FindByHash returns the most recent run with the same procedure and
	// inputs, or core.ErrAnalysisNotFound.
	FindByHash(ctx context.Context, hash core.InputHash) (*analysis.Analysis, error)
}
