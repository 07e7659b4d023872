package centraltendency

import (
	"math"
	"sort"

	"stikpet/domain/core"
)

// QuantileMethod names one of the Hyndman & Fan (1996) sample quantile definitions.
type QuantileMethod string

const (
	InvertedCDF         QuantileMethod = "inverted-cdf"          // type 1
	AveragedInvertedCDF QuantileMethod = "averaged-inverted-cdf" // type 2
	ClosestObservation  QuantileMethod = "closest-observation"   // type 3
	InterpolatedCDF     QuantileMethod = "interpolated-cdf"      // type 4
	Hazen               QuantileMethod = "hazen"                 // type 5
	Weibull             QuantileMethod = "weibull"               // type 6
	Linear              QuantileMethod = "linear"                // type 7
	MedianUnbiased      QuantileMethod = "median-unbiased"       // type 8
	NormalUnbiased      QuantileMethod = "normal-unbiased"       // type 9

	// Discontinuous variants of Linear on the 0-based position (n-1)p.
	Nearest  QuantileMethod = "nearest"  // round half to even
	Midpoint QuantileMethod = "midpoint" // mean of the order statistics either side
)

// Quantile returns the p-th sample quantile using method. An empty method means Linear.
func Quantile(x []float64, p float64, method QuantileMethod) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, core.NewValidationError("quantile", "p must be in [0, 1]")
	}
	data, err := clean(x, "quantile", 1)
	if err != nil {
		return 0, err
	}
	sort.Float64s(data)
	return sortedQuantile(data, p, method)
}

func sortedQuantile(s []float64, p float64, method QuantileMethod) (float64, error) {
	n := float64(len(s))
	at := func(i int) float64 { // 1-based with clamping
		if i < 1 {
			i = 1
		}
		if i > len(s) {
			i = len(s)
		}
		return s[i-1]
	}

	switch method {
	case InvertedCDF:
		np := n * p
		if np <= 0 {
			return s[0], nil
		}
		return at(int(math.Ceil(np - 1e-12))), nil
	case AveragedInvertedCDF:
		np := n * p
		j := math.Floor(np + 1e-12)
		if np-j > 1e-12 {
			return at(int(j) + 1), nil
		}
		if j <= 0 {
			return s[0], nil
		}
		if int(j) >= len(s) {
			return s[len(s)-1], nil
		}
		return (at(int(j)) + at(int(j)+1)) / 2, nil
	case ClosestObservation:
		np := n*p - 0.5
		j := math.Floor(np)
		g := np - j
		if g == 0 && int(j)%2 == 0 {
			return at(int(j)), nil
		}
		return at(int(j) + 1), nil
	case Nearest:
		return s[int(math.RoundToEven((n-1)*p))], nil
	case Midpoint:
		v := (n - 1) * p
		return (s[int(math.Floor(v))] + s[int(math.Ceil(v))]) / 2, nil
	}

	// continuous types: h is a 1-based fractional position
	var h float64
	switch method {
	case InterpolatedCDF:
		h = n * p
	case Hazen:
		h = n*p + 0.5
	case Weibull:
		h = (n + 1) * p
	case MedianUnbiased:
		h = (n+1.0/3.0)*p + 1.0/3.0
	case NormalUnbiased:
		h = (n+0.25)*p + 3.0/8.0
	case Linear, "":
		h = (n-1)*p + 1
	default:
		return 0, core.NewUnknownMethodError("quantile method", string(method))
	}

	lo := math.Floor(h)
	frac := h - lo
	if h <= 1 {
		return s[0], nil
	}
	if h >= n {
		return s[len(s)-1], nil
	}
	return at(int(lo)) + frac*(at(int(lo)+1)-at(int(lo))), nil
}

// Quartiles returns Q1, Q2 and Q3 under method.
func Quartiles(x []float64, method QuantileMethod) (q1, q2, q3 float64, err error) {
	data, err := clean(x, "quartiles", 1)
	if err != nil {
		return 0, 0, 0, err
	}
	sort.Float64s(data)
	if q1, err = sortedQuantile(data, 0.25, method); err != nil {
		return 0, 0, 0, err
	}
	q2, _ = sortedQuantile(data, 0.5, method)
	q3, _ = sortedQuantile(data, 0.75, method)
	return q1, q2, q3, nil
}

// IQR is Q3 - Q1.
func IQR(x []float64, method QuantileMethod) (float64, error) {
	q1, _, q3, err := Quartiles(x, method)
	if err != nil {
		return 0, err
	}
	return q3 - q1, nil
}

// Deciles returns the nine cut points D1..D9.
func Deciles(x []float64, method QuantileMethod) ([]float64, error) {
	data, err := clean(x, "deciles", 1)
	if err != nil {
		return nil, err
	}
	sort.Float64s(data)
	out := make([]float64, 9)
	for i := range out {
		if out[i], err = sortedQuantile(data, float64(i+1)/10, method); err != nil {
			return nil, err
		}
	}
	return out, nil
}
