package catalogue

import (
	"context"
	"strconv"
	"strings"

	"stikpet/adapters/stats/centraltendency"
	"stikpet/adapters/stats/tables"
	"stikpet/domain/stats"
)

func registerTables(c *Catalogue) {
	c.add("frequencies", KindTable, "Frequency table with percent, valid percent and cumulative percent",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			data, err := in.needField()
			if err != nil {
				return Outcome{}, err
			}
			rows, err := tables.Frequencies(data, in.Levels)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Frequencies: rows}, nil
		})
}

// scaleLocation registers a location measure over Scale.
func scaleLocation(c *Catalogue, name, desc string, f func(x []float64, p Params) (float64, error)) {
	c.add(name, KindLocation, desc, func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
		x, err := in.needScale()
		if err != nil {
			return Outcome{}, err
		}
		v, err := f(x, in.Params)
		if err != nil {
			return Outcome{}, err
		}
		return estimate(name, v, validN(x)), nil
	})
}

func registerLocation(c *Catalogue) {
	scaleLocation(c, "mean", "Arithmetic mean", func(x []float64, _ Params) (float64, error) {
		return centraltendency.Mean(x)
	})
	scaleLocation(c, "geometric-mean", "Geometric mean of positive values", func(x []float64, _ Params) (float64, error) {
		return centraltendency.GeometricMean(x)
	})
	scaleLocation(c, "harmonic-mean", "Harmonic mean of positive values", func(x []float64, _ Params) (float64, error) {
		return centraltendency.HarmonicMean(x)
	})
	scaleLocation(c, "trimmed-mean", "Mean after trimming a proportion (default 0.1) from each end", func(x []float64, p Params) (float64, error) {
		return centraltendency.TrimmedMean(x, p.trim(0.1))
	})
	scaleLocation(c, "winsorized-mean", "Mean after winsorizing a proportion (default 0.1) at each end", func(x []float64, p Params) (float64, error) {
		return centraltendency.WinsorizedMean(x, p.trim(0.1))
	})
	scaleLocation(c, "median", "Median", func(x []float64, _ Params) (float64, error) {
		return centraltendency.Median(x)
	})
	scaleLocation(c, "midrange", "Average of minimum and maximum", func(x []float64, _ Params) (float64, error) {
		return centraltendency.Midrange(x)
	})
	scaleLocation(c, "midhinge", "Average of the first and third quartile", func(x []float64, _ Params) (float64, error) {
		return centraltendency.Midhinge(x)
	})
	scaleLocation(c, "trimean", "Tukey's trimean", func(x []float64, _ Params) (float64, error) {
		return centraltendency.Trimean(x)
	})
	scaleLocation(c, "hodges-lehmann", "Hodges-Lehmann estimator (method 1: Walsh averages with diagonal, 2: without, 3: all pairs)", func(x []float64, p Params) (float64, error) {
		variant := centraltendency.WalshWithDiagonal
		switch p.Method {
		case "2", "without-diagonal":
			variant = centraltendency.WalshWithoutDiagonal
		case "3", "all-pairs":
			variant = centraltendency.AllPairs
		}
		return centraltendency.HodgesLehmann(x, variant)
	})
	scaleLocation(c, "median-absolute-deviation", "Median absolute deviation from the median", func(x []float64, _ Params) (float64, error) {
		return centraltendency.MedianAbsoluteDeviation(x)
	})
	scaleLocation(c, "iqr", "Interquartile range with a Hyndman-Fan quantile method", func(x []float64, p Params) (float64, error) {
		return centraltendency.IQR(x, centraltendency.QuantileMethod(p.Method))
	})

	c.add("mode", KindLocation, "Most frequent value(s) of scale or categorical data",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			if len(in.Field) > 0 {
				modes, count, err := centraltendency.CategoricalMode(in.Field)
				if err != nil {
					return Outcome{}, err
				}
				return estimate("mode: "+strings.Join(modes, ", "), float64(count), len(in.Field)), nil
			}
			x, err := in.needScale()
			if err != nil {
				return Outcome{}, err
			}
			modes, count, err := centraltendency.ScaleMode(x)
			if err != nil {
				return Outcome{}, err
			}
			o := estimate("mode", float64(count), validN(x))
			o.Estimate.Extra = make(map[string]float64, len(modes))
			for i, m := range modes {
				o.Estimate.Extra["mode_"+strconv.Itoa(i+1)] = m
			}
			return o, nil
		})

	c.add("ordinal-median", KindLocation, "Median category of ordinal data in the order given by levels",
		func(_ context.Context, _ *Catalogue, in Input) (Outcome, error) {
			data, err := in.needField()
			if err != nil {
				return Outcome{}, err
			}
			tie := centraltendency.TieBetween
			if in.Params.Method != "" {
				tie = centraltendency.TieRule(in.Params.Method)
			}
			label, v, err := centraltendency.OrdinalMedian(data, in.Levels, tie)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Estimate: &stats.Estimate{Measure: "ordinal median: " + label, Value: v, N: len(data)}}, nil
		})
}
