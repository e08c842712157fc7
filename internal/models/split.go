package models

import (
	"cmp"
	"math"
	"slices"
)

// Split is the winning (feature, threshold) pair of a node. Rows with
// x[Feature] <= Threshold go left.
type Split struct {
	Feature   int
	Threshold float64
	// Variance is the row-weighted sum of child target variances divided by the node size.
	Variance float64
}

type valueTarget struct {
	value  float64
	target float64
}

// findBestSplit scans every midpoint between consecutive distinct values of each candidate
// feature and keeps the lowest weighted child variance. Ties keep the first split found,
// in feature order and then threshold order. ok is false when no candidate satisfies the
// minimum child sizes.
func findBestSplit(d Dataset, rows []int, features []int, minSplit, minLeaf int) (best Split, ok bool) {
	n := len(rows)
	if n < 2 {
		return Split{}, false
	}
	best.Variance = math.Inf(1)
	pairs := make([]valueTarget, n)
	minChild := max(minSplit, minLeaf)

	// Sums run over targets centered on the node mean; with a large offset, sumSq/n - mean²
	// would cancel.
	var shift float64
	for _, r := range rows {
		shift += d.Y[r]
	}
	shift /= float64(n)

	for _, f := range features {
		var sum, sumSq float64
		for i, r := range rows {
			y := d.Y[r] - shift
			pairs[i] = valueTarget{value: d.X[r][f], target: y}
			sum += y
			sumSq += y * y
		}
		slices.SortFunc(pairs, func(a, b valueTarget) int {
			if c := cmp.Compare(a.value, b.value); c != 0 {
				return c
			}
			return cmp.Compare(a.target, b.target)
		})

		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			leftSum += pairs[i].target
			leftSq += pairs[i].target * pairs[i].target
			lo, hi := pairs[i].value, pairs[i+1].value
			if lo == hi {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < minChild || nr < minChild {
				continue
			}
			score := (float64(nl)*variance(leftSum, leftSq, nl) +
				float64(nr)*variance(sum-leftSum, sumSq-leftSq, nr)) / float64(n)
			if score < best.Variance {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = Split{Feature: f, Threshold: thr, Variance: score}
				ok = true
			}
		}
	}
	return best, ok
}

// variance is the population variance from running sums; 0 for empty or singleton sets.
func variance(sum, sumSq float64, n int) float64 {
	if n < 2 {
		return 0
	}
	mean := sum / float64(n)
	v := sumSq/float64(n) - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

func partition(d Dataset, rows []int, s Split) (left, right []int) {
	left = make([]int, 0, len(rows))
	right = make([]int, 0, len(rows))
	for _, r := range rows {
		if d.X[r][s.Feature] <= s.Threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}
