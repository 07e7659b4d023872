package catalogue

import (
	"context"

	"stikpet/adapters/stats/effectsize"
	"stikpet/adapters/stats/hypothesis"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/stats"
)

type runFunc = func(context.Context, *Catalogue, Input) (Outcome, error)

func effect(c *Catalogue, name, desc string, run runFunc) {
	c.add(name, KindEffectSize, desc, run)
}

// proportion returns the share of the success category of Field.
func (in Input) proportion() (float64, int, error) {
	data, err := in.needField()
	if err != nil {
		return 0, 0, err
	}
	k, n, _, err := tables.BinaryCounts(data, in.Params.Success)
	if err != nil {
		return 0, 0, err
	}
	return float64(k) / float64(n), n, nil
}

func registerEffectSizes(c *Catalogue) {
	registerOneSampleEffects(c)
	registerTwoSampleEffects(c)
	registerGroupEffects(c)
	registerTableEffects(c)
}

func registerOneSampleEffects(c *Catalogue) {
	effect(c, "cohen-d-one-sample", "Cohen's d against the hypothesized mean mu",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			x, err := in.needScale()
			if err != nil {
				return Outcome{}, err
			}
			d, err := effectsize.CohenDOneSample(x, in.Params.Mu)
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate("cohen-d", d, validN(x)), effectsize.InterpretCohenD(d)), nil
		})
	effect(c, "hedges-g-one-sample", "Hedges' g against mu; exact uses the gamma-function correction",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			x, err := in.needScale()
			if err != nil {
				return Outcome{}, err
			}
			g, err := effectsize.HedgesGOneSample(x, in.Params.Mu, in.Params.Exact)
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate("hedges-g", g, validN(x)), effectsize.InterpretCohenD(g)), nil
		})
	effect(c, "dependent-rank-biserial", "Matched-pairs rank-biserial correlation of scale - mu",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			x, err := in.needScale()
			if err != nil {
				return Outcome{}, err
			}
			r, err := effectsize.DependentRankBiserial(x, in.Params.Mu)
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate("rank-biserial", r, validN(x)), effectsize.InterpretR(r)), nil
		})
	effect(c, "cohen-h-one-sample", "Cohen's h between the success share and p0",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			p, n, err := in.proportion()
			if err != nil {
				return Outcome{}, err
			}
			h, err := effectsize.CohenHOneSample(p, in.Params.p0())
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate("cohen-h", h, n), effectsize.InterpretCohenH(h)), nil
		})
	effect(c, "cohen-g", "Cohen's g, the success share minus one half",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			p, n, err := in.proportion()
			if err != nil {
				return Outcome{}, err
			}
			g, err := effectsize.CohenG(p)
			if err != nil {
				return Outcome{}, err
			}
			return estimate("cohen-g", g, n), nil
		})
	effect(c, "alt-ratio", "Alternative ratio, the success share over p0",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			p, n, err := in.proportion()
			if err != nil {
				return Outcome{}, err
			}
			r, err := effectsize.AltRatio(p, in.Params.p0())
			if err != nil {
				return Outcome{}, err
			}
			return estimate("alt-ratio", r, n), nil
		})

	gofEffect := func(name, desc string, f func(chi2 float64, n int, exp []float64) (float64, error), interpret bool) {
		effect(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			_, obs, exp, err := in.gof()
			if err != nil {
				return Outcome{}, err
			}
			res, err := hypothesis.PearsonGOF(obs, exp, stats.NoCorrection)
			if err != nil {
				return Outcome{}, err
			}
			v, err := f(res.Statistic, res.N, exp)
			if err != nil {
				return Outcome{}, err
			}
			o := estimate(name, v, res.N)
			if interpret {
				o = interpreted(o, effectsize.InterpretCohenW(v))
			}
			return o, nil
		})
	}
	gofEffect("cohen-w", "Cohen's w from the Pearson goodness-of-fit chi-square", func(chi2 float64, n int, _ []float64) (float64, error) {
		return effectsize.CohenW(chi2, n)
	}, true)
	gofEffect("cramer-v-gof", "Cramer's V for a goodness-of-fit test", func(chi2 float64, n int, exp []float64) (float64, error) {
		return effectsize.CramerVGOF(chi2, n, len(exp))
	}, false)
	gofEffect("johnston-berry-mielke-e", "Johnston-Berry-Mielke E for a goodness-of-fit test", func(chi2 float64, n int, exp []float64) (float64, error) {
		props := make([]float64, len(exp))
		for i, e := range exp {
			props[i] = e / float64(n)
		}
		return effectsize.JohnstonBerryMielkeE(chi2, n, props)
	}, false)
}

// twoGroupEffect registers an effect size over the two groups of Scale.
func twoGroupEffect(c *Catalogue, name, desc string, f func(x, y []float64, p Params) (float64, error), label func(float64) stats.Interpretation) {
	effect(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		x, y, err := in.twoGroups()
		if err != nil {
			return Outcome{}, err
		}
		v, err := f(x, y, in.Params)
		if err != nil {
			return Outcome{}, err
		}
		o := estimate(name, v, validN(x)+validN(y))
		if label != nil {
			o = interpreted(o, label(v))
		}
		return o, nil
	})
}

func registerTwoSampleEffects(c *Catalogue) {
	twoGroupEffect(c, "cohen-ds", "Cohen's d_s with pooled standard deviation", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.CohenDs(x, y)
	}, effectsize.InterpretCohenD)
	twoGroupEffect(c, "hedges-g", "Hedges' g for two independent samples", func(x, y []float64, p Params) (float64, error) {
		return effectsize.HedgesG(x, y, p.Exact)
	}, effectsize.InterpretCohenD)
	twoGroupEffect(c, "glass-delta", "Glass's delta with the second group as control", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.GlassDelta(x, y)
	}, effectsize.InterpretCohenD)
	twoGroupEffect(c, "vargha-delaney-a", "Vargha-Delaney A, P(X > Y) + P(X = Y)/2", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.VarghaDelaneyA(x, y)
	}, nil)
	twoGroupEffect(c, "common-language", "McGraw-Wong common language effect size", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.CommonLanguageNormal(x, y)
	}, nil)
	twoGroupEffect(c, "cliff-delta", "Cliff's delta", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.CliffDelta(x, y)
	}, nil)
	twoGroupEffect(c, "rank-biserial-independent", "Glass's rank-biserial correlation", func(x, y []float64, _ Params) (float64, error) {
		return effectsize.RankBiserialIndependent(x, y)
	}, effectsize.InterpretR)
	twoGroupEffect(c, "rosenthal-correlation", "Rosenthal's r = z/sqrt(n) from the Mann-Whitney normal approximation", func(x, y []float64, p Params) (float64, error) {
		res, err := hypothesis.MannWhitney(x, y, stats.TwoSided, hypothesis.RankNormal, p.Continuity)
		if err != nil {
			return 0, err
		}
		return effectsize.RosenthalCorrelation(res.Extra["z"], res.N)
	}, effectsize.InterpretR)

	effect(c, "cohen-d-paired", "Cohen's d_z for paired samples",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			x, y, err := in.needPair()
			if err != nil {
				return Outcome{}, err
			}
			d, err := effectsize.CohenDPaired(x, y)
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate("cohen-dz", d, validPairs(x, y)), effectsize.InterpretCohenD(d)), nil
		})
}

func registerGroupEffects(c *Catalogue) {
	anova := func(name, desc string, f func([][]float64) (float64, error)) {
		effect(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			gs, err := in.groups(2)
			if err != nil {
				return Outcome{}, err
			}
			v, err := f(scoresOf(gs))
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate(name, v, countAll(gs)), effectsize.InterpretEtaSquared(v)), nil
		})
	}
	anova("eta-squared", "Eta squared of a one-way design", effectsize.EtaSquared)
	anova("omega-squared", "Omega squared of a one-way design", effectsize.OmegaSquared)
	anova("epsilon-squared", "Epsilon squared of a one-way design", effectsize.EpsilonSquared)

	effect(c, "cohen-f", "Cohen's f from eta squared",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			gs, err := in.groups(2)
			if err != nil {
				return Outcome{}, err
			}
			eta, err := effectsize.EtaSquared(scoresOf(gs))
			if err != nil {
				return Outcome{}, err
			}
			f, err := effectsize.EtaSquaredToF(eta)
			if err != nil {
				return Outcome{}, err
			}
			return estimate("cohen-f", f, countAll(gs)), nil
		})

	kw := func(name, desc string, f func(h float64, k, n int) (float64, error)) {
		effect(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			gs, err := in.groups(2)
			if err != nil {
				return Outcome{}, err
			}
			res, err := hypothesis.KruskalWallis(scoresOf(gs))
			if err != nil {
				return Outcome{}, err
			}
			v, err := f(res.Statistic, int(res.DF)+1, res.N)
			if err != nil {
				return Outcome{}, err
			}
			return interpreted(estimate(name, v, res.N), effectsize.InterpretEtaSquared(v)), nil
		})
	}
	kw("eta-squared-kw", "Eta squared from the Kruskal-Wallis H", effectsize.EtaSquaredKW)
	kw("epsilon-squared-kw", "Epsilon squared from the Kruskal-Wallis H", func(h float64, _, n int) (float64, error) {
		return effectsize.EpsilonSquaredKW(h, n)
	})
}

// tableEffect registers an association measure over the crosstab of Field by Field2.
func tableEffect(c *Catalogue, name, desc string, f func(ct *tables.Crosstab, p Params) (float64, error), label func(ct *tables.Crosstab, v float64) *stats.Interpretation) {
	effect(c, name, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		ct, err := in.crosstab()
		if err != nil {
			return Outcome{}, err
		}
		v, err := f(ct, in.Params)
		if err != nil {
			return Outcome{}, err
		}
		o := estimate(name, v, int(ct.Total()))
		if label != nil {
			o.Interpretation = label(ct, v)
		}
		return o, nil
	})
}

func cramerLabel(ct *tables.Crosstab, v float64) *stats.Interpretation {
	l := effectsize.InterpretCramerV(v, min(ct.Rows(), ct.Cols())-1)
	return &l
}

func registerTableEffects(c *Catalogue) {
	tableEffect(c, "cramer-v", "Cramer's V; method bergsma applies the bias correction", func(ct *tables.Crosstab, p Params) (float64, error) {
		return effectsize.CramerV(ct, p.Method == "bergsma")
	}, cramerLabel)
	tableEffect(c, "tschuprow-t", "Tschuprow's T", func(ct *tables.Crosstab, _ Params) (float64, error) {
		return effectsize.TschuprowT(ct)
	}, nil)
	tableEffect(c, "contingency-c", "Pearson's contingency coefficient", func(ct *tables.Crosstab, _ Params) (float64, error) {
		return effectsize.ContingencyC(ct)
	}, nil)
	tableEffect(c, "phi", "Phi coefficient of a 2x2 table", func(ct *tables.Crosstab, _ Params) (float64, error) {
		return effectsize.Phi(ct)
	}, cramerLabel)
	tableEffect(c, "goodman-kruskal-lambda", "Goodman-Kruskal lambda (direction symmetric, rows or columns)", func(ct *tables.Crosstab, p Params) (float64, error) {
		return effectsize.GoodmanKruskalLambda(ct, effectsize.Direction(p.Direction))
	}, nil)
	tableEffect(c, "goodman-kruskal-tau", "Goodman-Kruskal tau (direction symmetric, rows or columns)", func(ct *tables.Crosstab, p Params) (float64, error) {
		return effectsize.GoodmanKruskalTau(ct, effectsize.Direction(p.Direction))
	}, nil)
	tableEffect(c, "theil-u", "Theil's uncertainty coefficient (direction symmetric, rows or columns)", func(ct *tables.Crosstab, p Params) (float64, error) {
		return effectsize.TheilU(ct, effectsize.Direction(p.Direction))
	}, nil)
	tableEffect(c, "cohen-kappa", "Cohen's kappa for a square agreement table", func(ct *tables.Crosstab, _ Params) (float64, error) {
		return effectsize.CohenKappa(ct)
	}, nil)
	tableEffect(c, "scott-pi", "Scott's pi for a square agreement table", func(ct *tables.Crosstab, _ Params) (float64, error) {
		return effectsize.ScottPi(ct)
	}, nil)
	tableEffect(c, "bin-bin", "Association measure of a 2x2 table named by method (odds-ratio, yule-q, ...)", func(ct *tables.Crosstab, p Params) (float64, error) {
		cells, err := effectsize.CellsOf(ct)
		if err != nil {
			return 0, err
		}
		measure := p.Method
		if measure == "" {
			measure = "odds-ratio"
		}
		return effectsize.BinBin(cells, measure)
	}, nil)
}
