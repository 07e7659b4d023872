// Package posthoc runs follow-up comparisons after an omnibus test and
// adjusts their p-values for multiple testing.
package posthoc

import (
	"fmt"
	"math"
	"sort"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/ranks"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

// AdjustMethod names a multiple-testing correction.
type AdjustMethod string

const (
	Bonferroni AdjustMethod = "bonferroni"
	Holm       AdjustMethod = "holm"
	Hochberg   AdjustMethod = "hochberg"
	BH         AdjustMethod = "bh" // Benjamini-Hochberg false discovery rate
	NoAdjust   AdjustMethod = "none"
)

// AdjustPValues returns adjusted p-values in the order of p.
func AdjustPValues(p []float64, method AdjustMethod) ([]float64, error) {
	m := len(p)
	out := make([]float64, m)
	if m == 0 {
		return out, nil
	}
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })
	fm := float64(m)

	switch method {
	case NoAdjust, "":
		copy(out, p)
	case Bonferroni:
		for i, v := range p {
			out[i] = math.Min(1, v*fm)
		}
	case Holm:
		running := 0.0
		for rank, idx := range order {
			running = math.Max(running, math.Min(1, (fm-float64(rank))*p[idx]))
			out[idx] = running
		}
	case Hochberg:
		running := 1.0
		for rank := m - 1; rank >= 0; rank-- {
			idx := order[rank]
			running = math.Min(running, (fm-float64(rank))*p[idx])
			out[idx] = running
		}
	case BH:
		running := 1.0
		for rank := m - 1; rank >= 0; rank-- {
			idx := order[rank]
			running = math.Min(running, p[idx]*fm/float64(rank+1))
			out[idx] = running
		}
	default:
		return nil, core.NewUnknownMethodError("p-value adjustment", string(method))
	}
	return out, nil
}

// TwoSampleTest is any test comparing two independent samples.
type TwoSampleTest func(x, y []float64) (stats.TestResult, error)

func adjust(rows []stats.Comparison, method AdjustMethod) ([]stats.Comparison, error) {
	p := make([]float64, len(rows))
	for i, r := range rows {
		p[i] = r.PValue
	}
	adj, err := AdjustPValues(p, method)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AdjustedP = adj[i]
	}
	return rows, nil
}

// Pairwise applies test to every pair of groups.
func Pairwise(groups []tables.Group, test TwoSampleTest, method AdjustMethod) ([]stats.Comparison, error) {
	if len(groups) < 2 {
		return nil, core.NewValidationError("pairwise", "need at least two groups")
	}
	var rows []stats.Comparison
	for i := 0; i < len(groups)-1; i++ {
		for j := i + 1; j < len(groups); j++ {
			res, err := test(groups[i].Scores, groups[j].Scores)
			if err != nil {
				return nil, fmt.Errorf("%s vs %s: %w", groups[i].Label, groups[j].Label, err)
			}
			rows = append(rows, stats.Comparison{
				Group1:    groups[i].Label,
				Group2:    groups[j].Label,
				Statistic: res.Statistic,
				PValue:    res.PValue,
				Test:      res.Test,
			})
		}
	}
	return adjust(rows, method)
}

// Dunn compares mean ranks after a Kruskal-Wallis test, with the standard
// error corrected for ties (Dunn, 1964).
func Dunn(groups []tables.Group, method AdjustMethod) ([]stats.Comparison, error) {
	var all []float64
	clean := make([]tables.Group, 0, len(groups))
	for _, g := range groups {
		s := tables.DropNaN(g.Scores)
		if len(s) == 0 {
			continue
		}
		clean = append(clean, tables.Group{Label: g.Label, Scores: s})
		all = append(all, s...)
	}
	if len(clean) < 2 {
		return nil, core.NewValidationError("Dunn", "need at least two non-empty groups")
	}
	r := ranks.Average(all)
	n := float64(len(all))
	meanRank := make([]float64, len(clean))
	at := 0
	for i, g := range clean {
		sum := 0.0
		for _, v := range r[at : at+len(g.Scores)] {
			sum += v
		}
		meanRank[i] = sum / float64(len(g.Scores))
		at += len(g.Scores)
	}
	base := n*(n+1)/12 - ranks.TieCorrection(all)/(12*(n-1))

	var rows []stats.Comparison
	for i := 0; i < len(clean)-1; i++ {
		for j := i + 1; j < len(clean); j++ {
			se := math.Sqrt(base * (1/float64(len(clean[i].Scores)) + 1/float64(len(clean[j].Scores))))
			z := 0.0
			if se > 0 {
				z = (meanRank[i] - meanRank[j]) / se
			}
			rows = append(rows, stats.Comparison{
				Group1:    clean[i].Label,
				Group2:    clean[j].Label,
				Statistic: z,
				PValue:    distributions.NormalPValue(z, stats.TwoSided),
				Test:      "Dunn",
			})
		}
	}
	return adjust(rows, method)
}

// ResidualsGOF tests every category of a goodness-of-fit table with its
// adjusted residual (O - E)/√(E(1 - E/n)).
func ResidualsGOF(categories []string, obs, exp []float64, method AdjustMethod) ([]stats.Comparison, error) {
	if len(categories) != len(obs) || len(obs) != len(exp) {
		return nil, core.ErrLengthMismatch
	}
	n := 0.0
	for _, o := range obs {
		n += o
	}
	if n == 0 {
		return nil, core.NewInsufficientDataError("GoF residuals", 0, 1)
	}
	rows := make([]stats.Comparison, len(obs))
	for i, o := range obs {
		z := 0.0
		if se := math.Sqrt(exp[i] * (1 - exp[i]/n)); se > 0 {
			z = (o - exp[i]) / se
		}
		rows[i] = stats.Comparison{
			Group1:    categories[i],
			Group2:    "expected",
			Statistic: z,
			PValue:    distributions.NormalPValue(z, stats.TwoSided),
			Test:      "adjusted residual z",
		}
	}
	return adjust(rows, method)
}

// PairwiseBinomialGOF runs an exact binomial test on every pair of
// categories: category i out of the pair total, against the share its
// expected count has within the pair.
func PairwiseBinomialGOF(categories []string, obs, exp []float64, method AdjustMethod) ([]stats.Comparison, error) {
	if len(categories) != len(obs) || len(obs) != len(exp) {
		return nil, core.ErrLengthMismatch
	}
	if len(obs) < 2 {
		return nil, core.NewValidationError("pairwise binomial", "need at least two categories")
	}
	var rows []stats.Comparison
	for i := 0; i < len(obs)-1; i++ {
		for j := i + 1; j < len(obs); j++ {
			k := int(math.Round(obs[i]))
			total := k + int(math.Round(obs[j]))
			p := 1.0
			if total > 0 && exp[i]+exp[j] > 0 {
				p0 := exp[i] / (exp[i] + exp[j])
				p = distributions.BinomialPValue(k, total, p0, stats.TwoSided, distributions.BinomialDouble)
			}
			rows = append(rows, stats.Comparison{
				Group1:    categories[i],
				Group2:    categories[j],
				Statistic: float64(k),
				PValue:    p,
				Test:      "exact binomial",
			})
		}
	}
	return adjust(rows, method)
}
