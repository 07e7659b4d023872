package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stikpet/adapters/excel"
	"stikpet/adapters/stats/catalogue"
	"stikpet/domain/analysis"
	"stikpet/domain/core"
	"stikpet/ports"
)

// TestKit bundles an in-memory repository, a catalogue and a deterministic
// survey table for tests, the CLI and the API without a database.
type TestKit struct {
	repo      *InMemoryAnalysisRepository
	catalogue *catalogue.Catalogue
	table     *excel.Table
}

// NewTestKit creates a kit over a generated survey.
func NewTestKit() (*TestKit, error) {
	table, err := NewSurveyGenerator(DefaultSurveyConfig()).Table()
	if err != nil {
		return nil, fmt.Errorf("failed to generate survey fixture: %w", err)
	}
	return &TestKit{
		repo:      NewInMemoryAnalysisRepository(),
		catalogue: catalogue.New(catalogue.Options{}),
		table:     table,
	}, nil
}

// NewTestKitWithFile creates a kit over a data file instead of the survey.
func NewTestKitWithFile(path string) (*TestKit, error) {
	table, err := excel.NewDataReader(path).Load()
	if err != nil {
		return nil, err
	}
	return &TestKit{
		repo:      NewInMemoryAnalysisRepository(),
		catalogue: catalogue.New(catalogue.Options{}),
		table:     table,
	}, nil
}

// Repository returns the shared in-memory repository.
func (t *TestKit) Repository() ports.AnalysisRepository { return t.repo }

// Catalogue returns the procedure catalogue.
func (t *TestKit) Catalogue() *catalogue.Catalogue { return t.catalogue }

// Reader returns the loaded data table.
func (t *TestKit) Reader() ports.DataReader { return t.table }

// InMemoryAnalysisRepository implements ports.AnalysisRepository in memory.
type InMemoryAnalysisRepository struct {
	analyses map[core.AnalysisID]*analysis.Analysis
	mu       sync.RWMutex
}

var _ ports.AnalysisRepository = (*InMemoryAnalysisRepository)(nil)

func NewInMemoryAnalysisRepository() *InMemoryAnalysisRepository {
	return &InMemoryAnalysisRepository{analyses: make(map[core.AnalysisID]*analysis.Analysis)}
}

func (s *InMemoryAnalysisRepository) Save(ctx context.Context, a *analysis.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID.IsEmpty() {
		a.ID = core.NewAnalysisID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	stored := *a
	s.analyses[a.ID] = &stored
	return nil
}

func (s *InMemoryAnalysisRepository) Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[id]
	if !ok {
		return nil, core.NewNotFoundError(core.ErrAnalysisNotFound, id.String())
	}
	out := *a
	return &out, nil
}

func (s *InMemoryAnalysisRepository) FindByHash(ctx context.Context, hash core.InputHash) (*analysis.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *analysis.Analysis
	for _, a := range s.analyses {
		if a.InputHash == hash && (newest == nil || a.CreatedAt.After(newest.CreatedAt)) {
			newest = a
		}
	}
	if newest == nil {
		return nil, core.NewNotFoundError(core.ErrAnalysisNotFound, "input hash "+hash.String())
	}
	out := *newest
	return &out, nil
}

func (s *InMemoryAnalysisRepository) List(ctx context.Context, filter analysis.Filter) ([]*analysis.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*analysis.Analysis
	for _, a := range s.analyses {
		if filter.Procedure != "" && a.Procedure != filter.Procedure {
			continue
		}
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		out := *a
		results = append(results, &out)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}
