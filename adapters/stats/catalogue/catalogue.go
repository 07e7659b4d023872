// Package catalogue registers every statistical procedure under a stable
// name so that the API, the CLI and batteries can run them uniformly.
package catalogue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"stikpet/adapters/stats/kendall"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// Kind groups procedures by the statistical family they belong to.
type Kind string

const (
	KindTable       Kind = "table"
	KindLocation    Kind = "central-tendency"
	KindEffectSize  Kind = "effect-size"
	KindCorrelation Kind = "correlation"
	KindTest        Kind = "test"
	KindPostHoc     Kind = "post-hoc"
)

// Outcome is what a procedure produces. Exactly one of the result fields
// is set, plus an optional interpretation for effect sizes.
type Outcome struct {
	Procedure      string                `json:"procedure"`
	Kind           Kind                  `json:"kind"`
	Test           *stats.TestResult     `json:"test,omitempty"`
	Estimate       *stats.Estimate       `json:"estimate,omitempty"`
	Correlation    *stats.Correlation    `json:"correlation,omitempty"`
	Frequencies    []stats.FrequencyRow  `json:"frequencies,omitempty"`
	Comparisons    []stats.Comparison    `json:"comparisons,omitempty"`
	Interpretation *stats.Interpretation `json:"interpretation,omitempty"`
}

// Procedure is one named, runnable computation.
type Procedure interface {
	Name() string
	Kind() Kind
	Description() string
	Run(ctx context.Context, in Input) (Outcome, error)
}

// Info describes a procedure for listings.
type Info struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
}

type procedure struct {
	name, desc string
	kind       Kind
	run        func(ctx context.Context, c *Catalogue, in Input) (Outcome, error)
	cat        *Catalogue
}

func (p *procedure) Name() string        { return p.name }
func (p *procedure) Kind() Kind          { return p.kind }
func (p *procedure) Description() string { return p.desc }

func (p *procedure) Run(ctx context.Context, in Input) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	out, err := p.run(ctx, p.cat, in)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", p.name, err)
	}
	out.Procedure = p.name
	out.Kind = p.kind
	return out, nil
}

// Options configure a Catalogue.
type Options struct {
	// KendallExactLimit is the largest n for the exact Kendall distribution.
	KendallExactLimit int
	// MaxConcurrency bounds RunAll; zero means one goroutine per procedure.
	MaxConcurrency int
}

// Catalogue is the registry of procedures.
type Catalogue struct {
	mu      sync.RWMutex
	byName  map[string]Procedure
	order   []string
	opts    Options
	kendall kendall.Distribution
}

// New returns a catalogue with every built-in procedure registered.
func New(opts Options) *Catalogue {
	if opts.KendallExactLimit <= 0 {
		opts.KendallExactLimit = kendall.DefaultExactLimit
	}
	c := &Catalogue{
		byName:  make(map[string]Procedure),
		opts:    opts,
		kendall: kendall.Distribution{ExactLimit: opts.KendallExactLimit},
	}
	registerTables(c)
	registerLocation(c)
	registerEffectSizes(c)
	registerCorrelations(c)
	registerTests(c)
	registerPostHoc(c)
	return c
}

func (c *Catalogue) add(name string, kind Kind, desc string, run func(context.Context, *Catalogue, Input) (Outcome, error)) {
	c.Register(&procedure{name: name, kind: kind, desc: desc, run: run, cat: c})
}

// Register adds or replaces a procedure.
func (c *Catalogue) Register(p Procedure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[p.Name()]; !exists {
		c.order = append(c.order, p.Name())
	}
	c.byName[p.Name()] = p
}

// Lookup finds a procedure by name.
func (c *Catalogue) Lookup(name string) (Procedure, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	if !ok {
		return nil, core.NewNotFoundError(core.ErrProcedureNotFound, name)
	}
	return p, nil
}

// List returns every procedure, optionally restricted to one kind, sorted
// by kind and then name.
func (c *Catalogue) List(kind Kind) []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Info, 0, len(c.order))
	for _, name := range c.order {
		p := c.byName[name]
		if kind != "" && p.Kind() != kind {
			continue
		}
		out = append(out, Info{Name: p.Name(), Kind: p.Kind(), Description: p.Description()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Run executes one procedure by name.
func (c *Catalogue) Run(ctx context.Context, name string, in Input) (Outcome, error) {
	p, err := c.Lookup(name)
	if err != nil {
		return Outcome{}, err
	}
	return p.Run(ctx, in)
}

// BatteryResult is one entry of a RunAll battery. A failing procedure
// reports its error without stopping the others.
type BatteryResult struct {
	Procedure string   `json:"procedure"`
	Outcome   *Outcome `json:"outcome,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RunAll runs the named procedures concurrently on the same input. Unknown
// names fail the whole battery before anything runs; a cancelled context
// stops it.
func (c *Catalogue) RunAll(ctx context.Context, names []string, in Input) ([]BatteryResult, error) {
	procs := make([]Procedure, len(names))
	for i, name := range names {
		p, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		procs[i] = p
	}

	results := make([]BatteryResult, len(procs))
	g, gctx := errgroup.WithContext(ctx)
	if c.opts.MaxConcurrency > 0 {
		g.SetLimit(c.opts.MaxConcurrency)
	}
	for i, p := range procs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := BatteryResult{Procedure: p.Name()}
			out, err := p.Run(gctx, in)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Outcome = &out
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
