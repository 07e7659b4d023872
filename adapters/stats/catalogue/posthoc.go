package catalogue

import (
	"context"

	"stikpet/adapters/stats/hypothesis"
	"stikpet/adapters/stats/posthoc"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func (p Params) adjust() posthoc.AdjustMethod {
	if p.Adjust == "" {
		return posthoc.Bonferroni
	}
	return posthoc.AdjustMethod(p.Adjust)
}

func comparisons(rows []stats.Comparison, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Comparisons: rows}, nil
}

// pairwiseTest resolves the two-sample test named by method.
func pairwiseTest(p Params) (posthoc.TwoSampleTest, error) {
	alt := p.alt()
	switch p.Method {
	case "", "welch":
		return func(x, y []float64) (stats.TestResult, error) { return hypothesis.WelchT(x, y, alt) }, nil
	case "student":
		return func(x, y []float64) (stats.TestResult, error) { return hypothesis.StudentTIndependent(x, y, alt) }, nil
	case "mann-whitney":
		return func(x, y []float64) (stats.TestResult, error) {
			return hypothesis.MannWhitney(x, y, alt, hypothesis.RankAuto, p.Continuity)
		}, nil
	case "brunner-munzel":
		return func(x, y []float64) (stats.TestResult, error) { return hypothesis.BrunnerMunzel(x, y, alt) }, nil
	}
	return nil, core.NewUnknownMethodError("pairwise test", p.Method)
}

func registerPostHoc(c *Catalogue) {
	c.add("pairwise", KindPostHoc, "Pairwise two-sample tests (method welch, student, mann-whitney or brunner-munzel) with p-value adjustment",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			gs, err := in.groups(2)
			if err != nil {
				return Outcome{}, err
			}
			t, err := pairwiseTest(in.Params)
			if err != nil {
				return Outcome{}, err
			}
			return comparisons(posthoc.Pairwise(gs, t, in.Params.adjust()))
		})
	c.add("dunn", KindPostHoc, "Dunn's mean-rank comparisons after Kruskal-Wallis",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			gs, err := in.groups(2)
			if err != nil {
				return Outcome{}, err
			}
			return comparisons(posthoc.Dunn(gs, in.Params.adjust()))
		})
	c.add("residuals-gof", KindPostHoc, "Standardized residual z-tests per category after a goodness-of-fit test",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			cats, obs, exp, err := in.gof()
			if err != nil {
				return Outcome{}, err
			}
			return comparisons(posthoc.ResidualsGOF(cats, obs, exp, in.Params.adjust()))
		})
	c.add("pairwise-binomial-gof", KindPostHoc, "Pairwise binomial tests between categories after a goodness-of-fit test",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			cats, obs, exp, err := in.gof()
			if err != nil {
				return Outcome{}, err
			}
			return comparisons(posthoc.PairwiseBinomialGOF(cats, obs, exp, in.Params.adjust()))
		})
}
