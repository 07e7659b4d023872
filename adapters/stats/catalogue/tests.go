package catalogue

import (
	"context"

	"stikpet/adapters/stats/distributions"
	"stikpet/adapters/stats/hypothesis"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/core"
	"stikpet/domain/stats"
)

func (p Params) corr() stats.Correction {
	if p.Correction == "" {
		return stats.NoCorrection
	}
	return p.Correction
}

func test(c *Catalogue, name, desc string, run func(in Input) (stats.TestResult, error)) {
	c.add(name, KindTest, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		return testOutcome(run(in))
	})
}

func oneScale(c *Catalogue, name, desc string, f func(x []float64, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		x, err := in.needScale()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(x, in.Params)
	})
}

func oneField(c *Catalogue, name, desc string, f func(data []string, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		data, err := in.needField()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(data, in.Params)
	})
}

func gofTest(c *Catalogue, name, desc string, f func(obs, exp []float64, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		_, obs, exp, err := in.gof()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(obs, exp, in.Params)
	})
}

func twoGroupTest(c *Catalogue, name, desc string, f func(x, y []float64, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		x, y, err := in.twoGroups()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(x, y, in.Params)
	})
}

func pairedTest(c *Catalogue, name, desc string, f func(x, y []float64, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		x, y, err := in.needPair()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(x, y, in.Params)
	})
}

func manyGroupTest(c *Catalogue, name, desc string, f func(groups [][]float64, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		gs, err := in.groups(2)
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(scoresOf(gs), in.Params)
	})
}

func tableTest(c *Catalogue, name, desc string, f func(ct *tables.Crosstab, p Params) (stats.TestResult, error)) {
	test(c, name, desc, func(in Input) (stats.TestResult, error) {
		ct, err := in.crosstab()
		if err != nil {
			return stats.TestResult{}, err
		}
		return f(ct, in.Params)
	})
}

func registerTests(c *Catalogue) {
	registerOneSampleTests(c)
	registerGOFTests(c)
	registerTwoSampleTests(c)
	registerPairedTests(c)
	registerGroupTests(c)
	registerTableTests(c)
}

func registerOneSampleTests(c *Catalogue) {
	oneField(c, "binomial", "Exact binomial test of the success share against p0 (method double, small-p or equal-distance)", func(data []string, p Params) (stats.TestResult, error) {
		method := distributions.BinomialMethod(p.Method)
		if method == "" {
			method = distributions.BinomialDouble
		}
		return hypothesis.Binomial(data, p.Success, p.p0(), p.alt(), method)
	})
	oneField(c, "score-one-sample", "One-sample score z-test for a proportion", func(data []string, p Params) (stats.TestResult, error) {
		return hypothesis.ScoreOneSample(data, p.Success, p.p0(), p.alt(), p.corr())
	})
	oneField(c, "wald-one-sample", "One-sample Wald z-test for a proportion", func(data []string, p Params) (stats.TestResult, error) {
		return hypothesis.WaldOneSample(data, p.Success, p.p0(), p.alt(), p.corr())
	})

	oneScale(c, "sign", "One-sample sign test of the median against mu", func(x []float64, p Params) (stats.TestResult, error) {
		return hypothesis.Sign(x, p.Mu, p.alt())
	})
	oneScale(c, "wilcoxon-one-sample", "One-sample Wilcoxon signed-rank test against mu", func(x []float64, p Params) (stats.TestResult, error) {
		return hypothesis.WilcoxonOneSample(x, p.Mu, p.alt(), p.Continuity)
	})
	oneScale(c, "trinomial", "Trinomial test of the median against mu, counting ties", func(x []float64, p Params) (stats.TestResult, error) {
		return hypothesis.Trinomial(x, p.Mu, p.alt())
	})
	oneScale(c, "student-t-one-sample", "One-sample Student t-test against mu", func(x []float64, p Params) (stats.TestResult, error) {
		return hypothesis.StudentTOneSample(x, p.Mu, p.alt())
	})
	oneScale(c, "z-one-sample", "One-sample z-test against mu with known sigma", func(x []float64, p Params) (stats.TestResult, error) {
		if p.Sigma <= 0 {
			return stats.TestResult{}, core.NewValidationError("sigma", "must be positive")
		}
		return hypothesis.ZOneSample(x, p.Mu, p.Sigma, p.alt())
	})
	oneScale(c, "trimmed-mean-one-sample", "One-sample trimmed mean test against mu (default trim 0.2)", func(x []float64, p Params) (stats.TestResult, error) {
		return hypothesis.TrimmedMeanOneSample(x, p.Mu, p.trim(0.2), p.alt())
	})
}

func registerGOFTests(c *Catalogue) {
	gof := func(name, desc string, f func(obs, exp []float64, corr stats.Correction) (stats.TestResult, error)) {
		gofTest(c, name, desc, func(obs, exp []float64, p Params) (stats.TestResult, error) {
			return f(obs, exp, p.corr())
		})
	}
	gof("pearson-gof", "Pearson chi-square goodness-of-fit", hypothesis.PearsonGOF)
	gof("g-gof", "G (likelihood ratio) goodness-of-fit", hypothesis.GGOF)
	gof("freeman-tukey-gof", "Freeman-Tukey goodness-of-fit", hypothesis.FreemanTukeyGOF)
	gof("neyman-gof", "Neyman goodness-of-fit", hypothesis.NeymanGOF)
	gof("mod-log-likelihood-gof", "Modified log-likelihood goodness-of-fit", hypothesis.ModLogLikelihoodGOF)
	gofTest(c, "power-divergence-gof", "Cressie-Read power divergence goodness-of-fit (lambda defaults to 2/3)", func(obs, exp []float64, p Params) (stats.TestResult, error) {
		lambda := hypothesis.LambdaCressieRead
		if p.Lambda != nil {
			lambda = *p.Lambda
		}
		return hypothesis.PowerDivergenceGOF(obs, exp, lambda, p.corr())
	})
	gofTest(c, "multinomial-gof", "Exact multinomial goodness-of-fit", func(obs, exp []float64, _ Params) (stats.TestResult, error) {
		return hypothesis.MultinomialGOF(obs, exp)
	})
}

func registerTwoSampleTests(c *Catalogue) {
	twoGroupTest(c, "student-t-independent", "Student t-test for two independent samples", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.StudentTIndependent(x, y, p.alt())
	})
	twoGroupTest(c, "welch-t", "Welch t-test for two independent samples", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.WelchT(x, y, p.alt())
	})
	twoGroupTest(c, "yuen-t", "Yuen trimmed-means test (default trim 0.2)", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.YuenT(x, y, p.trim(0.2), p.alt())
	})
	twoGroupTest(c, "z-independent", "Two-sample z-test; sigma is the common known standard deviation", func(x, y []float64, p Params) (stats.TestResult, error) {
		if p.Sigma <= 0 {
			return stats.TestResult{}, core.NewValidationError("sigma", "must be positive")
		}
		return hypothesis.ZIndependent(x, y, p.Sigma, p.Sigma, p.alt())
	})
	twoGroupTest(c, "mann-whitney", "Mann-Whitney U test (method auto, exact or normal)", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.MannWhitney(x, y, p.alt(), hypothesis.RankMethod(p.Method), p.Continuity)
	})
	twoGroupTest(c, "brunner-munzel", "Brunner-Munzel test", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.BrunnerMunzel(x, y, p.alt())
	})
	twoGroupTest(c, "fligner-policello", "Fligner-Policello robust rank order test", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.FlignerPolicello(x, y, p.alt())
	})
}

func registerPairedTests(c *Catalogue) {
	pairedTest(c, "paired-t", "Paired t-test of scale against scale2", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.PairedT(x, y, p.alt())
	})
	pairedTest(c, "wilcoxon-paired", "Wilcoxon signed-rank test of paired differences", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.WilcoxonPaired(x, y, p.alt(), p.Continuity)
	})
	pairedTest(c, "sign-paired", "Sign test of paired differences", func(x, y []float64, p Params) (stats.TestResult, error) {
		return hypothesis.SignPaired(x, y, p.alt())
	})

	repeated := func(name, desc string, f func([][]float64) (stats.TestResult, error)) {
		test(c, name, desc, func(in Input) (stats.TestResult, error) {
			rows, err := in.rows()
			if err != nil {
				return stats.TestResult{}, err
			}
			return f(rows)
		})
	}
	repeated("cochran-q", "Cochran's Q for binary repeated measures", hypothesis.CochranQ)
	repeated("friedman", "Friedman rank test for repeated measures", hypothesis.Friedman)
}

func registerGroupTests(c *Catalogue) {
	plain := func(name, desc string, f func([][]float64) (stats.TestResult, error)) {
		manyGroupTest(c, name, desc, func(groups [][]float64, _ Params) (stats.TestResult, error) {
			return f(groups)
		})
	}
	plain("fisher-owa", "Fisher one-way ANOVA", hypothesis.FisherOWA)
	plain("welch-owa", "Welch one-way ANOVA", hypothesis.WelchOWA)
	plain("brown-forsythe-owa", "Brown-Forsythe one-way ANOVA for means", hypothesis.BrownForsytheOWA)
	plain("alexander-govern", "Alexander-Govern test of equal means", hypothesis.AlexanderGovern)
	plain("ozdemir-kurt", "Ozdemir-Kurt B2 test of equal means", hypothesis.OzdemirKurt)
	plain("kruskal-wallis", "Kruskal-Wallis H test", hypothesis.KruskalWallis)
	manyGroupTest(c, "levene", "Levene test of equal variances (method mean, median or trimmed)", func(groups [][]float64, p Params) (stats.TestResult, error) {
		center := hypothesis.LeveneCenter(p.Method)
		if center == "" {
			center = hypothesis.CenterMean
		}
		return hypothesis.Levene(groups, center)
	})
	manyGroupTest(c, "mood-median", "Mood's median test", func(groups [][]float64, p Params) (stats.TestResult, error) {
		return hypothesis.MoodMedian(groups, p.corr())
	})
}

func registerTableTests(c *Catalogue) {
	tableTest(c, "pearson-independence", "Pearson chi-square test of independence", func(ct *tables.Crosstab, p Params) (stats.TestResult, error) {
		return hypothesis.PearsonIndependence(ct, p.corr())
	})
	tableTest(c, "g-independence", "G test of independence", func(ct *tables.Crosstab, p Params) (stats.TestResult, error) {
		return hypothesis.GIndependence(ct, p.corr())
	})
	tableTest(c, "fisher-exact", "Fisher exact test of a 2x2 table", func(ct *tables.Crosstab, p Params) (stats.TestResult, error) {
		return hypothesis.FisherExact(ct, p.alt())
	})
	tableTest(c, "mcnemar", "McNemar test of a paired 2x2 table", func(ct *tables.Crosstab, p Params) (stats.TestResult, error) {
		return hypothesis.McNemar(ct, p.corr())
	})
	tableTest(c, "mcnemar-bowker", "McNemar-Bowker symmetry test of a square table", func(ct *tables.Crosstab, _ Params) (stats.TestResult, error) {
		return hypothesis.McNemarBowker(ct)
	})
	tableTest(c, "two-proportion-z", "Two-proportion z-test; rows are the samples, the first column counts successes", func(ct *tables.Crosstab, p Params) (stats.TestResult, error) {
		a, b, cc, d, err := ct.Cells2x2()
		if err != nil {
			return stats.TestResult{}, err
		}
		return hypothesis.TwoProportionZ(int(a), int(a+b), int(cc), int(cc+d), p.alt(), p.corr())
	})
}
