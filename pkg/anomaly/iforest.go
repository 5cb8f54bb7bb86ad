package anomaly

import (
	"math"
	"math/rand"
)

// Isolation forest: observations are isolated by recursive random
// partitioning; points needing fewer partitions to isolate are scored as
// more anomalous. Fixed ensemble size and seed keep results reproducible
// for a given batch.
const (
	treeCount    = 100
	maxSubsample = 256
)

const eulerGamma = 0.5772156649015329

type treeNode struct {
	// Internal nodes split on feature < splitValue; external nodes have a
	// nil left child and record the number of points they hold.
	feature    int
	splitValue float64
	left       *treeNode
	right      *treeNode
	size       int
}

func (n *treeNode) external() bool { return n.left == nil }

type isolationForest struct {
	trees      []*treeNode
	sampleSize int
}

// fitForest builds an ensemble of isolation trees over the data, each on a
// random subsample of at most maxSubsample rows.
func fitForest(data [][]float64, rng *rand.Rand) *isolationForest {
	sampleSize := len(data)
	if sampleSize > maxSubsample {
		sampleSize = maxSubsample
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sampleSize))))

	forest := &isolationForest{
		trees:      make([]*treeNode, 0, treeCount),
		sampleSize: sampleSize,
	}
	for i := 0; i < treeCount; i++ {
		perm := rng.Perm(len(data))[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, idx := range perm {
			sample[j] = data[idx]
		}
		forest.trees = append(forest.trees, buildTree(sample, 0, heightLimit, rng))
	}
	return forest
}

func buildTree(data [][]float64, depth, heightLimit int, rng *rand.Rand) *treeNode {
	if depth >= heightLimit || len(data) <= 1 {
		return &treeNode{size: len(data)}
	}

	// Only features that still vary within this partition are splittable.
	var splittable []int
	for f := 0; f < featureCount; f++ {
		lo, hi := columnRange(data, f)
		if hi > lo {
			splittable = append(splittable, f)
		}
	}
	if len(splittable) == 0 {
		return &treeNode{size: len(data)}
	}

	feature := splittable[rng.Intn(len(splittable))]
	lo, hi := columnRange(data, feature)
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range data {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &treeNode{
		feature:    feature,
		splitValue: split,
		left:       buildTree(left, depth+1, heightLimit, rng),
		right:      buildTree(right, depth+1, heightLimit, rng),
		size:       len(data),
	}
}

func columnRange(data [][]float64, feature int) (lo, hi float64) {
	lo, hi = data[0][feature], data[0][feature]
	for _, row := range data[1:] {
		v := row[feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// score returns the negated anomaly score of a point: values approach -1 for
// easily isolated points and -0.5 for average ones, so lower means more
// anomalous.
func (f *isolationForest) score(point []float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(tree, point, 0)
	}
	avgPath := total / float64(len(f.trees))
	return -math.Pow(2, -avgPath/avgPathLength(f.sampleSize))
}

func pathLength(node *treeNode, point []float64, depth float64) float64 {
	if node.external() {
		return depth + avgPathLength(node.size)
	}
	if point[node.feature] < node.splitValue {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search over n points; it normalizes tree depths across subsample sizes.
func avgPathLength(n int) float64 {
	switch {
	case n > 2:
		h := math.Log(float64(n-1)) + eulerGamma
		return 2*h - 2*float64(n-1)/float64(n)
	case n == 2:
		return 1
	default:
		return 0
	}
}
