// Package forest implements a bagged ensemble of CART classification trees.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sourcegraph/conc/iter"
)

var (
	ErrEmptyTrainingSet = errors.New("training set is empty")
	ErrShapeMismatch    = errors.New("feature and label counts differ")
	ErrInvalidLabel     = errors.New("label out of range")
)

type Config struct {
	Trees int
	Seed  uint64
	// MaxDepth of zero grows trees until leaves are pure.
	MaxDepth        int
	MinSamplesSplit int
	// MaxFeatures of zero uses the square root of the feature count.
	MaxFeatures int
	Classes     int
	Workers     int
}

func DefaultConfig(classes int) Config {
	return Config{
		Trees:           100,
		Seed:            21,
		MinSamplesSplit: 2,
		Classes:         classes,
	}
}

// Forest is immutable after Fit and safe for concurrent prediction.
type Forest struct {
	trees    []*node
	classes  int
	features int
}

// Fit grows cfg.Trees trees, each on a bootstrap sample of the rows. Tree
// seeds are drawn up front so the result does not depend on scheduling.
func Fit(ctx context.Context, x [][]float64, y []int, cfg Config) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(x), len(y))
	}
	if cfg.Classes < 1 {
		return nil, fmt.Errorf("classes must be positive, got %d", cfg.Classes)
	}
	for i, label := range y {
		if label < 0 || label >= cfg.Classes {
			return nil, fmt.Errorf("%w: row %d has label %d", ErrInvalidLabel, i, label)
		}
	}

	features := len(x[0])
	for i, row := range x {
		if len(row) != features {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), features)
		}
	}

	cfg = normalizeConfig(cfg, features)

	master := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	seeds := make([]uint64, cfg.Trees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*node, cfg.Trees)
	runner := iter.Iterator[uint64]{MaxGoroutines: cfg.Workers}
	runner.ForEachIdx(seeds, func(i int, seed *uint64) {
		if ctx.Err() != nil {
			return
		}
		trees[i] = fitTree(x, y, cfg, *seed)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Forest{
		trees:    trees,
		classes:  cfg.Classes,
		features: features,
	}, nil
}

func normalizeConfig(cfg Config, features int) Config {
	if cfg.Trees < 1 {
		cfg.Trees = 100
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = int(math.Sqrt(float64(features)))
	}
	if cfg.MaxFeatures < 1 {
		cfg.MaxFeatures = 1
	}
	if cfg.MaxFeatures > features {
		cfg.MaxFeatures = features
	}
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	return cfg
}

func fitTree(x [][]float64, y []int, cfg Config, seed uint64) *node {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = rng.IntN(len(x))
	}

	builder := &treeBuilder{
		x:           x,
		y:           y,
		classes:     cfg.Classes,
		maxDepth:    cfg.MaxDepth,
		minSplit:    cfg.MinSamplesSplit,
		maxFeatures: cfg.MaxFeatures,
		rng:         rng,
	}
	return builder.build(sample, 0)
}

func (f *Forest) Classes() int {
	return f.classes
}

func (f *Forest) Trees() int {
	return len(f.trees)
}

// PredictProba averages the leaf class distributions of every tree. Classes
// never seen in training get zero.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.features {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), f.features)
	}

	out := make([]float64, f.classes)
	for _, tree := range f.trees {
		for class, p := range tree.predict(x) {
			out[class] += p
		}
	}
	for class := range out {
		out[class] /= float64(len(f.trees))
	}
	return out, nil
}

// Predict returns the most probable class. Ties go to the lowest class index.
func (f *Forest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return Argmax(proba), nil
}

// Argmax returns the index of the largest value, the lowest index on ties.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// Accuracy is the fraction of rows whose predicted class matches the label.
func (f *Forest) Accuracy(x [][]float64, y []int) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return 0, nil
	}

	correct := 0
	for i, row := range x {
		predicted, err := f.Predict(row)
		if err != nil {
			return 0, err
		}
		if predicted == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x)), nil
}
