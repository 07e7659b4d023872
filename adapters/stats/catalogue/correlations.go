package catalogue

import (
	"context"

	"stikpet/adapters/stats/correlation"
	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/stats"
)

func correlate(c *Catalogue, name, desc string, run runFunc) {
	c.add(name, KindCorrelation, desc, func(ctx context.Context, c *Catalogue, in Input) (Outcome, error) {
		o, err := run(ctx, c, in)
		if err != nil {
			return Outcome{}, err
		}
		r := o.Correlation.Coefficient
		label := effectsize.InterpretR(r)
		o.Interpretation = &label
		return o, nil
	})
}

// scalePair registers a correlation between Scale and Scale2.
func scalePair(c *Catalogue, name, desc string, f func(c *Catalogue, x, y []float64, alt stats.Alternative) (stats.Correlation, error)) {
	correlate(c, name, desc, func(_ context.Context, c *Catalogue, in Input) (Outcome, error) {
		x, y, err := in.needPair()
		if err != nil {
			return Outcome{}, err
		}
		return correlationOutcome(f(c, x, y, in.Params.alt()))
	})
}

// binaryScale registers a correlation between the binary Field and Scale.
func binaryScale(c *Catalogue, name, desc string, f func(field []string, scores []float64, success string, alt stats.Alternative) (stats.Correlation, error)) {
	correlate(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		field, err := in.needField()
		if err != nil {
			return Outcome{}, err
		}
		x, err := in.needScale()
		if err != nil {
			return Outcome{}, err
		}
		return correlationOutcome(f(field, x, in.Params.Success, in.Params.alt()))
	})
}

// ordinalTable registers a concordance-based measure over the ordered
// crosstab of Field by Field2.
func ordinalTable(c *Catalogue, name, desc string, f func(ct *tables.Crosstab, p Params) (stats.Correlation, error)) {
	correlate(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		ct, err := in.crosstab()
		if err != nil {
			return Outcome{}, err
		}
		return correlationOutcome(f(ct, in.Params))
	})
}

func registerCorrelations(c *Catalogue) {
	scalePair(c, "pearson", "Pearson product-moment correlation with t test", func(_ *Catalogue, x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
		return correlation.Pearson(x, y, alt)
	})
	scalePair(c, "spearman", "Spearman rank correlation with t test", func(_ *Catalogue, x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
		return correlation.Spearman(x, y, alt)
	})
	scalePair(c, "kendall-tau-a", "Kendall tau-a", func(c *Catalogue, x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
		return correlation.KendallTauA(x, y, alt, c.kendall)
	})
	scalePair(c, "kendall-tau-b", "Kendall tau-b, adjusted for ties", func(c *Catalogue, x, y []float64, alt stats.Alternative) (stats.Correlation, error) {
		return correlation.KendallTauB(x, y, alt, c.kendall)
	})

	binaryScale(c, "point-biserial", "Point-biserial correlation of a binary field with scores", correlation.PointBiserial)
	binaryScale(c, "biserial", "Biserial correlation assuming a latent normal dichotomy", correlation.Biserial)
	binaryScale(c, "rank-biserial", "Rank-biserial correlation with Mann-Whitney test", correlation.RankBiserial)

	ordinalTable(c, "goodman-kruskal-gamma", "Goodman-Kruskal gamma of two ordinal fields", func(ct *tables.Crosstab, p Params) (stats.Correlation, error) {
		return correlation.GoodmanKruskalGamma(ct, p.alt())
	})
	ordinalTable(c, "somers-d", "Somers' d (direction symmetric, rows or columns)", func(ct *tables.Crosstab, p Params) (stats.Correlation, error) {
		return correlation.SomersD(ct, effectsize.Direction(p.Direction), p.alt())
	})
	ordinalTable(c, "stuart-tau-c", "Stuart-Kendall tau-c", func(ct *tables.Crosstab, p Params) (stats.Correlation, error) {
		return correlation.StuartTauC(ct, p.alt())
	})
}
