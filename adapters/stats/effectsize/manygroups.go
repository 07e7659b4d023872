package effectsize

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stikpet/domain/core"
)

// ANOVASums holds the one-way sums of squares shared by the ANOVA effect sizes.
type ANOVASums struct {
	K, N      int
	SSBetween float64
	SSWithin  float64
	SSTotal   float64
	MSWithin  float64
}

// OneWaySums computes the sums of squares of a one-way design. NaN values
// must already be removed.
func OneWaySums(groups [][]float64) (ANOVASums, error) {
	s := ANOVASums{}
	all := make([]float64, 0)
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		s.K++
		all = append(all, g...)
	}
	s.N = len(all)
	if s.K < 2 || s.N <= s.K {
		return s, core.NewInsufficientDataError("one-way sums of squares", s.N, s.K+1)
	}
	grand := stat.Mean(all, nil)
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		m := stat.Mean(g, nil)
		s.SSBetween += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			s.SSWithin += (v - m) * (v - m)
		}
	}
	s.SSTotal = s.SSBetween + s.SSWithin
	s.MSWithin = s.SSWithin / float64(s.N-s.K)
	return s, nil
}

// EtaSquared is SS_between / SS_total.
func EtaSquared(groups [][]float64) (float64, error) {
	s, err := OneWaySums(groups)
	if err != nil {
		return 0, err
	}
	if s.SSTotal == 0 {
		return 0, core.NewDegenerateError("zero total variance")
	}
	return s.SSBetween / s.SSTotal, nil
}

// OmegaSquared is (SS_b - (k-1)MS_w) / (SS_t + MS_w) (Hays, 1963).
func OmegaSquared(groups [][]float64) (float64, error) {
	s, err := OneWaySums(groups)
	if err != nil {
		return 0, err
	}
	if s.SSTotal == 0 {
		return 0, core.NewDegenerateError("zero total variance")
	}
	return (s.SSBetween - float64(s.K-1)*s.MSWithin) / (s.SSTotal + s.MSWithin), nil
}

// EpsilonSquared is (SS_b - (k-1)MS_w) / SS_t (Kelley, 1935).
func EpsilonSquared(groups [][]float64) (float64, error) {
	s, err := OneWaySums(groups)
	if err != nil {
		return 0, err
	}
	if s.SSTotal == 0 {
		return 0, core.NewDegenerateError("zero total variance")
	}
	return (s.SSBetween - float64(s.K-1)*s.MSWithin) / s.SSTotal, nil
}

// CohenF is √(η² / (1 - η²)).
func CohenF(eta2 float64) (float64, error) {
	if eta2 < 0 || eta2 >= 1 {
		return 0, core.NewValidationError("eta squared", "must be in [0, 1)")
	}
	return math.Sqrt(eta2 / (1 - eta2)), nil
}

// EtaSquaredKW is (H - k + 1)/(n - k) for a Kruskal-Wallis H.
func EtaSquaredKW(h float64, k, n int) (float64, error) {
	if n <= k {
		return 0, core.NewInsufficientDataError("eta squared (Kruskal-Wallis)", n, k+1)
	}
	return (h - float64(k) + 1) / float64(n-k), nil
}

// EpsilonSquaredKW is H / ((n² - 1)/(n + 1)) (Tomczak & Tomczak, 2014).
func EpsilonSquaredKW(h float64, n int) (float64, error) {
	if n < 2 {
		return 0, core.NewInsufficientDataError("epsilon squared (Kruskal-Wallis)", n, 2)
	}
	fn := float64(n)
	return h / ((fn*fn - 1) / (fn + 1)), nil
}
