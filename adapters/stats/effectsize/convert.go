package effectsize

import (
	"math"

	"stikpet/domain/core"
)

// OddsRatioToD uses Chinn's (2000) ln(OR)·√3/π.
func OddsRatioToD(or float64) (float64, error) {
	if or <= 0 {
		return 0, core.NewValidationError("odds ratio", "must be positive")
	}
	return math.Log(or) * math.Sqrt(3) / math.Pi, nil
}

// DToOddsRatio inverts OddsRatioToD.
func DToOddsRatio(d float64) float64 {
	return math.Exp(d * math.Pi / math.Sqrt(3))
}

// DToR converts Cohen's d to a point-biserial r assuming equal group sizes.
func DToR(d float64) float64 {
	return d / math.Sqrt(d*d+4)
}

// RToD is 2r/√(1 - r²).
func RToD(r float64) (float64, error) {
	if r <= -1 || r >= 1 {
		return 0, core.NewValidationError("r", "must be in (-1, 1)")
	}
	return 2 * r / math.Sqrt(1-r*r), nil
}

// EtaSquaredToF converts η² to Cohen's f.
func EtaSquaredToF(eta2 float64) (float64, error) {
	return CohenF(eta2)
}
