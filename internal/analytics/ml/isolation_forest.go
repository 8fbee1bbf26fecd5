package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// isolationTree is a single tree in the forest.
type isolationTree struct {
	splitFeature int
	splitValue   float64
	left         *isolationTree
	right        *isolationTree
	size         int
	isLeaf       bool
}

// IsolationForest scores multivariate samples by how easily random recursive
// partitioning isolates them. Scores are in (0, 1); easily isolated samples
// score closer to 1. The forest is seeded explicitly so a fixed seed yields
// an identical model on identical data.
type IsolationForest struct {
	trees         []*isolationTree
	numTrees      int
	subSampleSize int
	maxDepth      int
	rng           *rand.Rand
}

// NewIsolationForest creates a forest of numTrees trees, each grown on a
// random subsample of at most subSampleSize rows. Tree depth is capped at
// ceil(log2(subSampleSize)), the height beyond which isolation stops being
// informative.
func NewIsolationForest(numTrees, subSampleSize int, seed int64) *IsolationForest {
	if numTrees < 1 {
		numTrees = 1
	}
	if subSampleSize < 2 {
		subSampleSize = 2
	}
	return &IsolationForest{
		trees:         make([]*isolationTree, 0, numTrees),
		numTrees:      numTrees,
		subSampleSize: subSampleSize,
		maxDepth:      int(math.Ceil(math.Log2(float64(subSampleSize)))),
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Fit grows the forest on the given samples. Every sample must have the same
// dimensionality and no NaN values; impute before fitting.
func (f *IsolationForest) Fit(samples [][]float64) error {
	if len(samples) == 0 {
		return errors.New("no samples to fit")
	}
	width := len(samples[0])
	if width == 0 {
		return errors.New("samples have no features")
	}
	for i, s := range samples {
		if len(s) != width {
			return fmt.Errorf("sample %d has %d features, expected %d", i, len(s), width)
		}
	}

	if f.subSampleSize > len(samples) {
		f.subSampleSize = len(samples)
	}
	for i := 0; i < f.numTrees; i++ {
		sample := f.sampleRows(samples)
		f.trees = append(f.trees, f.buildTree(sample, 0))
	}
	return nil
}

// Score returns the anomaly score of one sample.
func (f *IsolationForest) Score(sample []float64) float64 {
	if len(f.trees) == 0 {
		return 0.5
	}
	total := 0.0
	for _, tree := range f.trees {
		total += f.pathLength(tree, sample, 0)
	}
	avg := total / float64(len(f.trees))

	// score = 2^(-avg / c(n)), with c(n) the expected path length of an
	// unsuccessful BST search over the subsample size.
	c := averagePathLength(f.subSampleSize)
	return math.Pow(2, -avg/c)
}

// ScoreAll scores every sample, aligned to the input order.
func (f *IsolationForest) ScoreAll(samples [][]float64) []float64 {
	scores := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = f.Score(s)
	}
	return scores
}

// sampleRows draws a random subsample without replacement.
func (f *IsolationForest) sampleRows(samples [][]float64) [][]float64 {
	n := f.subSampleSize
	if n > len(samples) {
		n = len(samples)
	}
	shuffled := make([][]float64, len(samples))
	copy(shuffled, samples)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := f.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

func (f *IsolationForest) buildTree(samples [][]float64, depth int) *isolationTree {
	if len(samples) <= 1 || depth >= f.maxDepth || allIdentical(samples) {
		return &isolationTree{size: len(samples), isLeaf: true}
	}

	splitFeature := f.rng.Intn(len(samples[0]))
	minVal, maxVal := featureRange(samples, splitFeature)
	splitValue := minVal + f.rng.Float64()*(maxVal-minVal)

	left, right := splitRows(samples, splitFeature, splitValue)
	if len(left) == 0 || len(right) == 0 {
		return &isolationTree{size: len(samples), isLeaf: true}
	}

	return &isolationTree{
		splitFeature: splitFeature,
		splitValue:   splitValue,
		left:         f.buildTree(left, depth+1),
		right:        f.buildTree(right, depth+1),
		size:         len(samples),
	}
}

func (f *IsolationForest) pathLength(tree *isolationTree, sample []float64, depth int) float64 {
	if tree.isLeaf {
		return float64(depth) + averagePathLength(tree.size)
	}
	if sample[tree.splitFeature] < tree.splitValue {
		return f.pathLength(tree.left, sample, depth+1)
	}
	return f.pathLength(tree.right, sample, depth+1)
}

// averagePathLength is c(n) = 2H(n-1) - 2(n-1)/n, the expected path length
// of an unsuccessful search in a BST of n nodes.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	return 2*harmonicNumber(n-1) - 2*float64(n-1)/float64(n)
}

func harmonicNumber(n int) float64 {
	// H(n) ≈ ln(n) + Euler-Mascheroni constant
	return math.Log(float64(n)) + 0.5772156649
}

func allIdentical(samples [][]float64) bool {
	if len(samples) <= 1 {
		return true
	}
	first := samples[0]
	for i := 1; i < len(samples); i++ {
		for j := range first {
			if math.Abs(samples[i][j]-first[j]) > 1e-10 {
				return false
			}
		}
	}
	return true
}

func featureRange(samples [][]float64, feature int) (float64, float64) {
	minVal := samples[0][feature]
	maxVal := samples[0][feature]
	for _, s := range samples {
		v := s[feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func splitRows(samples [][]float64, feature int, splitValue float64) ([][]float64, [][]float64) {
	var left, right [][]float64
	for _, s := range samples {
		if s[feature] < splitValue {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}
