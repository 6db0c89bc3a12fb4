package forest

import (
	"math/rand/v2"
	"sort"
)

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	// dist is set on leaves only and holds the class fractions of the samples
	// that reached the leaf.
	dist []float64
}

func (n *node) leaf() bool {
	return n.dist != nil
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	classes     int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand
}

func (b *treeBuilder) build(indices []int, depth int) *node {
	counts := b.classCounts(indices)
	if b.shouldStop(indices, counts, depth) {
		return b.leafFrom(counts, len(indices))
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.leafFrom(counts, len(indices))
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if b.x[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) shouldStop(indices []int, counts []int, depth int) bool {
	if len(indices) < b.minSplit {
		return true
	}
	if b.maxDepth > 0 && depth >= b.maxDepth {
		return true
	}
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (b *treeBuilder) classCounts(indices []int) []int {
	counts := make([]int, b.classes)
	for _, idx := range indices {
		counts[b.y[idx]]++
	}
	return counts
}

func (b *treeBuilder) leafFrom(counts []int, total int) *node {
	dist := make([]float64, b.classes)
	if total == 0 {
		return &node{dist: dist}
	}
	for class, c := range counts {
		dist[class] = float64(c) / float64(total)
	}
	return &node{dist: dist}
}

// bestSplit scans a random subset of features and returns the threshold with
// the lowest weighted Gini impurity across the two children.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	features := b.rng.Perm(len(b.x[indices[0]]))
	if b.maxFeatures > 0 && b.maxFeatures < len(features) {
		features = features[:b.maxFeatures]
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := 0.0

	sorted := make([]int, len(indices))
	for _, feature := range features {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})

		leftCounts := make([]int, b.classes)
		rightCounts := b.classCounts(sorted)
		total := len(sorted)

		for i := 0; i < total-1; i++ {
			class := b.y[sorted[i]]
			leftCounts[class]++
			rightCounts[class]--

			current := b.x[sorted[i]][feature]
			next := b.x[sorted[i+1]][feature]
			if current == next {
				continue
			}

			leftN := i + 1
			rightN := total - leftN
			score := (float64(leftN)*gini(leftCounts, leftN) + float64(rightN)*gini(rightCounts, rightN)) / float64(total)
			if bestFeature < 0 || score < bestScore {
				bestFeature = feature
				bestThreshold = current + (next-current)/2
				bestScore = score
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

func (n *node) predict(x []float64) []float64 {
	current := n
	for !current.leaf() {
		if x[current.feature] <= current.threshold {
			current = current.left
		} else {
			current = current.right
		}
	}
	return current.dist
}
