package app

import (
	"context"
	"encoding/json"
	"time"

	"stikpet/adapters/stats/catalogue"
	"stikpet/domain/analysis"
	"stikpet/domain/core"
	"stikpet/internal"
	"stikpet/internal/errors"
	"stikpet/ports"

	"github.com/go-playground/validator/v10"
)

// AnalysisService runs catalogue procedures and keeps a record of every run
type AnalysisService struct {
	catalogue *catalogue.Catalogue
	repo      ports.AnalysisRepository
	logger    *internal.Logger
	validate  *validator.Validate
	opts      AnalysisOptions
}

// AnalysisOptions tune the service
type AnalysisOptions struct {
	// Alpha is the significance level used to flag test outcomes.
	Alpha float64
	// ReuseCached returns a stored outcome when the same procedure already
	// ran on identical input.
	ReuseCached bool
}

// RunResult is one procedure run with its stored record
type RunResult struct {
	Analysis    *analysis.Analysis `json:"analysis"`
	Outcome     catalogue.Outcome  `json:"outcome"`
	Significant *bool              `json:"significant,omitempty"`
	Cached      bool               `json:"cached"`
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(cat *catalogue.Catalogue, repo ports.AnalysisRepository, logger *internal.Logger, opts AnalysisOptions) *AnalysisService {
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = 0.05
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		catalogue: cat,
		repo:      repo,
		logger:    logger.Named("analysis"),
		validate:  validator.New(),
		opts:      opts,
	}
}

// Catalogue returns the procedures the service can run
func (s *AnalysisService) Catalogue() *catalogue.Catalogue {
	return s.catalogue
}

func (s *AnalysisService) checkParams(p catalogue.Params) error {
	if err := s.validate.Struct(p); err != nil {
		return errors.ValidationError(err.Error())
	}
	return nil
}

// Fingerprint hashes a procedure name with its input.
func Fingerprint(name string, in catalogue.Input) (core.InputHash, []byte, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to encode input")
	}
	return core.ComputeInputHash(name, map[string]interface{}{"input": string(raw)}), raw, nil
}

// Run executes one procedure, stores the outcome and returns both
func (s *AnalysisService) Run(ctx context.Context, name string, in catalogue.Input) (*RunResult, error) {
	if err := s.checkParams(in.Params); err != nil {
		return nil, err
	}
	proc, err := s.catalogue.Lookup(name)
	if err != nil {
		return nil, errors.FromDomain(err)
	}

	hash, raw, err := Fingerprint(name, in)
	if err != nil {
		return nil, err
	}
	if s.opts.ReuseCached {
		if cached, err := s.repo.FindByHash(ctx, hash); err == nil {
			var out catalogue.Outcome
			if err := json.Unmarshal(cached.Outcome, &out); err == nil {
				s.logger.Debug("reusing analysis %s for %s", cached.ID, name)
				return s.result(cached, out, true), nil
			}
		}
	}

	start := time.Now()
	out, err := proc.Run(ctx, in)
	if err != nil {
		s.logger.Debug("%s failed: %v", name, err)
		return nil, errors.FromDomain(err)
	}
	elapsed := time.Since(start)

	a, err := s.store(ctx, name, out, hash, raw, elapsed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("%s completed in %s (analysis %s)", name, elapsed, a.ID)
	return s.result(a, out, false), nil
}

func (s *AnalysisService) store(ctx context.Context, name string, out catalogue.Outcome, hash core.InputHash, raw []byte, elapsed time.Duration) (*analysis.Analysis, error) {
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode outcome of %s", name)
	}
	a := &analysis.Analysis{
		ID:        core.NewAnalysisID(),
		Procedure: name,
		Kind:      string(out.Kind),
		InputHash: hash,
		Input:     raw,
		Outcome:   encoded,
		RuntimeMs: elapsed.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, errors.DatabaseError(err, "failed to save analysis "+a.ID.String())
	}
	return a, nil
}

func (s *AnalysisService) result(a *analysis.Analysis, out catalogue.Outcome, cached bool) *RunResult {
	res := &RunResult{Analysis: a, Outcome: out, Cached: cached}
	if out.Test != nil {
		sig := out.Test.Significant(s.opts.Alpha)
		res.Significant = &sig
	} else if out.Correlation != nil {
		sig := out.Correlation.Test.Significant(s.opts.Alpha)
		res.Significant = &sig
	}
	return res
}

// RunBattery runs several procedures on the same input concurrently and
// stores every successful outcome. Failures are reported per procedure.
func (s *AnalysisService) RunBattery(ctx context.Context, names []string, in catalogue.Input) ([]catalogue.BatteryResult, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput("battery needs at least one procedure")
	}
	if err := s.checkParams(in.Params); err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := s.catalogue.RunAll(ctx, names, in)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	elapsed := time.Since(start)

	failed := 0
	for _, r := range results {
		if r.Outcome == nil {
			failed++
			continue
		}
		hash, raw, err := Fingerprint(r.Procedure, in)
		if err != nil {
			return nil, err
		}
		if _, err := s.store(ctx, r.Procedure, *r.Outcome, hash, raw, elapsed); err != nil {
			return nil, err
		}
	}
	s.logger.Info("battery of %d procedures completed in %s (%d failed)", len(names), elapsed, failed)
	return results, nil
}

// Get loads a stored analysis together with its decoded outcome
func (s *AnalysisService) Get(ctx context.Context, id string) (*analysis.Analysis, catalogue.Outcome, error) {
	aid, err := core.ParseAnalysisID(id)
	if err != nil {
		return nil, catalogue.Outcome{}, errors.InvalidInput(err.Error())
	}
	a, err := s.repo.Get(ctx, aid)
	if err != nil {
		return nil, catalogue.Outcome{}, errors.FromDomain(err)
	}
	var out catalogue.Outcome
	if err := json.Unmarshal(a.Outcome, &out); err != nil {
		return nil, catalogue.Outcome{}, errors.InternalError(err, "failed to decode analysis "+a.ID.String())
	}
	return a, out, nil
}

// List returns stored analyses, newest first
func (s *AnalysisService) List(ctx context.Context, filter analysis.Filter) ([]*analysis.Analysis, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError(err, "failed to list analyses")
	}
	return list, nil
}
