package forest

import (
	"math"
	"math/rand/v2"
	"sort"
)

// StratifiedSplit partitions row indices into train and test sets keeping
// each label's share roughly equal in both. Each label contributes
// round(count*testFraction) rows to the test set.
func StratifiedSplit(y []int, testFraction float64, seed uint64) (train []int, test []int) {
	if testFraction <= 0 {
		train = make([]int, len(y))
		for i := range train {
			train[i] = i
		}
		return train, nil
	}
	if testFraction > 1 {
		testFraction = 1
	}

	byLabel := make(map[int][]int)
	labels := make([]int, 0)
	for i, label := range y {
		if _, ok := byLabel[label]; !ok {
			labels = append(labels, label)
		}
		byLabel[label] = append(byLabel[label], i)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewPCG(seed, seed))
	for _, label := range labels {
		rows := byLabel[label]
		rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})

		n := int(math.Round(float64(len(rows)) * testFraction))
		test = append(test, rows[:n]...)
		train = append(train, rows[n:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test
}
