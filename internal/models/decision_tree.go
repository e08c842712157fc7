package models

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Node is one slot of a tree arena. Left and Right index into the same arena and are -1
// for leaves; Value is the leaf prediction (the mean target of the node's rows).
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
}

func (n Node) IsLeaf() bool { return n.Left == -1 }

func leafNode(value float64, samples int) Node {
	return Node{Feature: -1, Left: -1, Right: -1, Value: value, Samples: samples}
}

// Tree is an immutable binary regression tree stored as an arena; the root is Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// NewTree checks that nodes form one strict binary tree rooted at index 0: every child
// index is in range and every non-root node has exactly one parent.
func NewTree(nodes []Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, invalidInput("NewTree", "empty arena")
	}
	parents := make([]int, len(nodes))
	for i, n := range nodes {
		if n.IsLeaf() {
			if n.Right != -1 {
				return nil, invalidInput("NewTree", "node %d has a right child but no left", i)
			}
			continue
		}
		for _, c := range [2]int{n.Left, n.Right} {
			if c <= 0 || c >= len(nodes) {
				return nil, invalidInput("NewTree", "node %d points at %d", i, c)
			}
			parents[c]++
		}
		if n.Feature < 0 {
			return nil, invalidInput("NewTree", "node %d has no feature", i)
		}
	}
	for i := 1; i < len(nodes); i++ {
		if parents[i] != 1 {
			return nil, invalidInput("NewTree", "node %d has %d parents", i, parents[i])
		}
	}
	return &Tree{Nodes: nodes}, nil
}

// Predict walks from the root, left when x[feature] <= threshold, until a leaf.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].IsLeaf() {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// Walk visits every node depth-first with its depth; the root has depth 0.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	type frame struct{ idx, depth int }
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Nodes[f.idx]
		fn(n, f.depth)
		if !n.IsLeaf() {
			stack = append(stack, frame{n.Right, f.depth + 1}, frame{n.Left, f.depth + 1})
		}
	}
}

// Depth is the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	d := 0
	t.Walk(func(_ Node, depth int) { d = max(d, depth) })
	return d
}

// treeBuilder grows one tree into an arena. It owns its RandomSource for the duration
// of the build.
type treeBuilder struct {
	data   Dataset
	params Hyperparameters
	nTry   int
	rs     *RandomSource
	nodes  []Node
}

// BuildTree grows a regression tree on d. Leaves are produced, in this order, when the depth
// limit is hit, when the node has fewer than MinSamplesSplit rows, when its targets are all
// equal, or when no valid split exists among the sampled features.
func BuildTree(d Dataset, params Hyperparameters, rs *RandomSource) (*Tree, error) {
	if err := validateMatrix("BuildTree", d.X, d.Y); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return buildTree(d, params, rs)
}

func buildTree(d Dataset, params Hyperparameters, rs *RandomSource) (*Tree, error) {
	nTry, err := params.MaxFeatures.Count(d.NumFeatures())
	if err != nil {
		return nil, invalidInputErr("BuildTree", err)
	}
	b := &treeBuilder{data: d, params: params, nTry: nTry, rs: rs}
	rows := make([]int, d.Len())
	for i := range rows {
		rows[i] = i
	}
	b.build(rows, 0)
	return &Tree{Nodes: b.nodes}, nil
}

func (b *treeBuilder) build(rows []int, depth int) int {
	ys := make([]float64, len(rows))
	for i, r := range rows {
		ys[i] = b.data.Y[r]
	}
	pure := allEqual(ys)
	value := ys[0]
	if !pure {
		value = stat.Mean(ys, nil)
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, leafNode(value, len(rows)))

	if depth >= b.params.MaxDepth || len(rows) < b.params.MinSamplesSplit || pure {
		return idx
	}
	features := b.rs.Sample(b.data.NumFeatures(), b.nTry)
	split, ok := findBestSplit(b.data, rows, features, b.params.MinSamplesSplit, b.params.MinSamplesLeaf)
	if !ok {
		return idx
	}
	leftRows, rightRows := partition(b.data, rows, split)
	left := b.build(leftRows, depth+1)
	right := b.build(rightRows, depth+1)
	b.nodes[idx] = Node{
		Feature:   split.Feature,
		Threshold: split.Threshold,
		Left:      left,
		Right:     right,
		Value:     b.nodes[idx].Value,
		Samples:   len(rows),
	}
	return idx
}

func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func (t *Tree) String() string {
	leaves := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			leaves++
		}
	}
	return fmt.Sprintf("Tree(nodes=%d, leaves=%d, depth=%d)", len(t.Nodes), leaves, t.Depth())
}
