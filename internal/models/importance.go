package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ComputeImportance credits every internal node's feature with 0.5^depth (root depth 0)
// across all trees, then normalizes the scores to sum to 1. Splits near the root touch more
// rows and so weigh more. This depth weighting is a project convention, not the impurity
// decrease definition used elsewhere. A forest made only of leaves yields all zeros.
func ComputeImportance(f *Forest) []float64 {
	imp := make([]float64, f.NumFeatures())
	for _, t := range f.Trees {
		t.Walk(func(n Node, depth int) {
			if !n.IsLeaf() {
				imp[n.Feature] += math.Pow(0.5, float64(depth))
			}
		})
	}
	total := floats.Sum(imp)
	if total > 0 {
		floats.Scale(1/total, imp)
	}
	return imp
}

// FeatureScore pairs a feature name with its importance.
type FeatureScore struct {
	Feature string  `json:"feature" bson:"feature"`
	Score   float64 `json:"score" bson:"score"`
}

// RankImportance returns the importance of each feature, highest first; equal scores keep
// feature order.
func RankImportance(f *Forest) []FeatureScore {
	imp := ComputeImportance(f)
	out := make([]FeatureScore, len(imp))
	for i, s := range imp {
		out[i] = FeatureScore{Feature: f.FeatureNames[i], Score: s}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
