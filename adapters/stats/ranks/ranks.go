// Package ranks converts scores into ranks. Every rank-based procedure in the
// catalogue goes through these helpers so ties are treated the same way
// everywhere.
package ranks

import (
	"math"
	"sort"
)

// Method selects how tied values are ranked.
type Method string

const (
	AverageMethod Method = "average" // midranks
	MinMethod     Method = "min"
	MaxMethod     Method = "max"
	DenseMethod   Method = "dense"
	OrdinalMethod Method = "ordinal" // first occurrence first
)

type pair struct {
	value float64
	index int
}

func sortedPairs(data []float64) []pair {
	pairs := make([]pair, len(data))
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})
	return pairs
}

// Rank converts values to ranks starting at 1 using the given tie method.
func Rank(data []float64, method Method) []float64 {
	n := len(data)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	pairs := sortedPairs(data)
	dense := 0.0

	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		dense++

		for k := i; k < j; k++ {
			var r float64
			switch method {
			case MinMethod:
				r = float64(i + 1)
			case MaxMethod:
				r = float64(j)
			case DenseMethod:
				r = dense
			case OrdinalMethod:
				r = float64(k + 1)
			default:
				r = float64(i+1) + float64(j-i-1)/2.0
			}
			ranks[pairs[k].index] = r
		}

		i = j
	}

	return ranks
}

// Average assigns midranks to tied values.
func Average(data []float64) []float64 {
	return Rank(data, AverageMethod)
}

// TieGroups returns the size of every group of tied values with more than one member.
func TieGroups(data []float64) []int {
	counts := make(map[float64]int, len(data))
	for _, v := range data {
		counts[v]++
	}
	groups := make([]int, 0)
	for _, c := range counts {
		if c > 1 {
			groups = append(groups, c)
		}
	}
	sort.Ints(groups)
	return groups
}

// TieCorrection returns Σ(t³ - t) over all tie groups.
func TieCorrection(data []float64) float64 {
	total := 0.0
	for _, t := range TieGroups(data) {
		ft := float64(t)
		total += ft*ft*ft - ft
	}
	return total
}

// Signed holds the ranks of the absolute non-zero differences split by sign.
type Signed struct {
	Ranks     []float64 // Rank of |d| among the non-zero differences
	Positive  []bool
	Zeros     int
	RankPlus  float64 // Sum of ranks of positive differences
	RankMinus float64 // Sum of ranks of negative differences
	TieSum    float64 // Σ(t³ - t) over tied |d|
}

// SignedRanks ranks the absolute values of the non-zero differences, as
// used by the Wilcoxon signed-rank family. NaN differences are skipped.
func SignedRanks(diffs []float64) Signed {
	abs := make([]float64, 0, len(diffs))
	pos := make([]bool, 0, len(diffs))
	zeros := 0
	for _, d := range diffs {
		if math.IsNaN(d) {
			continue
		}
		if d == 0 {
			zeros++
			continue
		}
		abs = append(abs, math.Abs(d))
		pos = append(pos, d > 0)
	}

	r := Average(abs)
	s := Signed{Ranks: r, Positive: pos, Zeros: zeros, TieSum: TieCorrection(abs)}
	for i, rank := range r {
		if pos[i] {
			s.RankPlus += rank
		} else {
			s.RankMinus += rank
		}
	}
	return s
}
