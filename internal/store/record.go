package store

import (
	"errors"
	"fmt"
	"time"

	"statforest/internal/models"
)

// NodeRecord is the nested persistence form of a tree node: internal nodes carry
// featureIndex, threshold, left and right; leaves carry prediction only.
type NodeRecord struct {
	FeatureIndex *int        `json:"featureIndex,omitempty" bson:"feature_index,omitempty"`
	Threshold    *float64    `json:"threshold,omitempty" bson:"threshold,omitempty"`
	Left         *NodeRecord `json:"left,omitempty" bson:"left,omitempty"`
	Right        *NodeRecord `json:"right,omitempty" bson:"right,omitempty"`
	Prediction   *float64    `json:"prediction,omitempty" bson:"prediction,omitempty"`
}

// ModelRecord is everything needed to serve a trained model without retraining.
type ModelRecord struct {
	Name            string                       `json:"name" bson:"name"`
	CreatedAt       time.Time                    `json:"createdAt" bson:"created_at"`
	Hyperparameters models.Hyperparameters       `json:"hyperparameters" bson:"hyperparameters"`
	Standardization models.StandardizationParams `json:"standardization" bson:"standardization"`
	FeatureNames    []string                     `json:"featureNames" bson:"feature_names"`
	Trees           []*NodeRecord                `json:"trees" bson:"trees"`
	TrainMetrics    models.Metrics               `json:"trainMetrics" bson:"train_metrics"`
	TestMetrics     models.Metrics               `json:"testMetrics" bson:"test_metrics"`
	Importance      []models.FeatureScore        `json:"importance" bson:"importance"`
	Tuning          []models.TuningResult        `json:"tuning,omitempty" bson:"tuning,omitempty"`
}

// NewModelRecord snapshots a pipeline. Metrics and tuning results are filled in by the caller.
func NewModelRecord(name string, p *models.Pipeline) *ModelRecord {
	trees := make([]*NodeRecord, len(p.Forest.Trees))
	for i, t := range p.Forest.Trees {
		trees[i] = nest(t, 0)
	}
	return &ModelRecord{
		Name:            name,
		CreatedAt:       time.Now().UTC(),
		Hyperparameters: p.Forest.Params,
		Standardization: p.Scaler,
		FeatureNames:    append([]string(nil), p.Forest.FeatureNames...),
		Trees:           trees,
		Importance:      models.RankImportance(p.Forest),
	}
}

func nest(t *models.Tree, idx int) *NodeRecord {
	n := t.Nodes[idx]
	if n.IsLeaf() {
		v := n.Value
		return &NodeRecord{Prediction: &v}
	}
	f, thr := n.Feature, n.Threshold
	return &NodeRecord{
		FeatureIndex: &f,
		Threshold:    &thr,
		Left:         nest(t, n.Left),
		Right:        nest(t, n.Right),
	}
}

var errMalformed = errors.New("malformed model record")

// Pipeline rebuilds the arena trees and the standardizer from the record.
func (r *ModelRecord) Pipeline() (*models.Pipeline, error) {
	k := len(r.FeatureNames)
	if k == 0 || len(r.Trees) == 0 {
		return nil, fmt.Errorf("%w: %q has no features or no trees", errMalformed, r.Name)
	}
	if len(r.Standardization.Means) != k || len(r.Standardization.StdDevs) != k {
		return nil, fmt.Errorf("%w: standardization covers %d features, want %d", errMalformed, len(r.Standardization.Means), k)
	}
	trees := make([]*models.Tree, len(r.Trees))
	for i, root := range r.Trees {
		var nodes []models.Node
		if _, err := flatten(root, k, &nodes); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", errMalformed, i, err)
		}
		t, err := models.NewTree(nodes)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", errMalformed, i, err)
		}
		trees[i] = t
	}
	forest := &models.Forest{
		Trees:        trees,
		FeatureNames: append([]string(nil), r.FeatureNames...),
		Params:       r.Hyperparameters,
	}
	return &models.Pipeline{Scaler: r.Standardization, Forest: forest}, nil
}

// flatten appends rec and its subtree to nodes in preorder and returns rec's index.
func flatten(rec *NodeRecord, k int, nodes *[]models.Node) (int, error) {
	if rec == nil {
		return 0, errors.New("missing node")
	}
	idx := len(*nodes)
	if rec.Prediction != nil {
		if rec.Left != nil || rec.Right != nil || rec.FeatureIndex != nil {
			return 0, errors.New("leaf with split fields")
		}
		*nodes = append(*nodes, models.Node{Feature: -1, Left: -1, Right: -1, Value: *rec.Prediction})
		return idx, nil
	}
	if rec.FeatureIndex == nil || rec.Threshold == nil {
		return 0, errors.New("internal node without feature or threshold")
	}
	if *rec.FeatureIndex < 0 || *rec.FeatureIndex >= k {
		return 0, fmt.Errorf("feature index %d outside [0, %d)", *rec.FeatureIndex, k)
	}
	*nodes = append(*nodes, models.Node{Feature: *rec.FeatureIndex, Threshold: *rec.Threshold})
	left, err := flatten(rec.Left, k, nodes)
	if err != nil {
		return 0, err
	}
	right, err := flatten(rec.Right, k, nodes)
	if err != nil {
		return 0, err
	}
	(*nodes)[idx].Left = left
	(*nodes)[idx].Right = right
	return idx, nil
}
