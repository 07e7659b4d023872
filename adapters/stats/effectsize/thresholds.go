package effectsize

import (
	"math"

	"stikpet/domain/stats"
)

const (
	cohen1988  = "Cohen (1988)"
	rea1992    = "Rea and Parker (1992)"
	chen2010   = "Chen, Cohen and Chen (2010)"
	negligible = "negligible"
)

type cutoffs struct {
	small, medium, large float64
	source               string
}

func (c cutoffs) label(v float64) stats.Interpretation {
	v = math.Abs(v)
	label := negligible
	switch {
	case v >= c.large:
		label = "large"
	case v >= c.medium:
		label = "medium"
	case v >= c.small:
		label = "small"
	}
	return stats.Interpretation{Label: label, Source: c.source}
}

// InterpretCohenD labels |d| with 0.2/0.5/0.8.
func InterpretCohenD(d float64) stats.Interpretation {
	return cutoffs{0.2, 0.5, 0.8, cohen1988}.label(d)
}

// InterpretCohenH labels |h| with 0.2/0.5/0.8.
func InterpretCohenH(h float64) stats.Interpretation {
	return cutoffs{0.2, 0.5, 0.8, cohen1988}.label(h)
}

// InterpretR labels |r| with 0.1/0.3/0.5.
func InterpretR(r float64) stats.Interpretation {
	return cutoffs{0.1, 0.3, 0.5, cohen1988}.label(r)
}

// InterpretCohenW labels w with 0.1/0.3/0.5.
func InterpretCohenW(w float64) stats.Interpretation {
	return cutoffs{0.1, 0.3, 0.5, cohen1988}.label(w)
}

// InterpretEtaSquared labels η² with 0.01/0.06/0.14.
func InterpretEtaSquared(eta2 float64) stats.Interpretation {
	return cutoffs{0.01, 0.06, 0.14, cohen1988}.label(eta2)
}

// InterpretCramerV converts Cohen's w cutoffs by √df*, where df* is
// min(r-1, c-1). For df* = 1 the Rea and Parker (1992) scale is used.
func InterpretCramerV(v float64, df int) stats.Interpretation {
	if df <= 1 {
		c := cutoffs{0.1, 0.2, 0.4, rea1992}
		out := c.label(v)
		if math.Abs(v) >= 0.6 {
			out.Label = "very large"
		}
		return out
	}
	s := math.Sqrt(float64(df))
	return cutoffs{0.1 / s, 0.3 / s, 0.5 / s, cohen1988}.label(v)
}

// InterpretOddsRatio labels an odds ratio; values below 1 are inverted first.
func InterpretOddsRatio(or float64) stats.Interpretation {
	if or > 0 && or < 1 {
		or = 1 / or
	}
	return cutoffs{1.68, 3.47, 6.71, chen2010}.label(or)
}
