package ml

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
)

// Split is the outcome of a train/test partition.
type Split struct {
	XTrain *dataset.Frame
	XTest  *dataset.Frame
	YTrain []float64
	YTest  []float64
}

// StratifiedSplit partitions f and y into train and test subsets,
// keeping the class proportions of y in both. Deterministic for a
// fixed seed.
func StratifiedSplit(f *dataset.Frame, y []float64, testSize float64, seed int64) (*Split, error) {
	if f.NumRows() != len(y) {
		return nil, xe.New(fmt.Sprintf("frame has %d rows, target has %d", f.NumRows(), len(y)))
	}
	if len(y) == 0 {
		return nil, xe.New("can not split an empty dataset")
	}
	if testSize <= 0 || 1 <= testSize {
		return nil, xe.New("test size must be in (0, 1)")
	}

	rng := rand.New(rand.NewSource(seed))

	var trainIdx, testIdx []int
	for _, indices := range classIndices(y) {
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(float64(len(indices)) * testSize)
		if testCount == 0 && len(indices) > 0 {
			testCount = 1
		}
		split := len(indices) - testCount
		trainIdx = append(trainIdx, indices[:split]...)
		testIdx = append(testIdx, indices[split:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) {
		trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
	})
	rng.Shuffle(len(testIdx), func(i, j int) {
		testIdx[i], testIdx[j] = testIdx[j], testIdx[i]
	})

	xTrain, err := f.SelectRows(trainIdx)
	if err != nil {
		return nil, err
	}
	xTest, err := f.SelectRows(testIdx)
	if err != nil {
		return nil, err
	}

	pick := func(idx []int) []float64 {
		out := make([]float64, len(idx))
		for i, j := range idx {
			out[i] = y[j]
		}
		return out
	}

	return &Split{
		XTrain: xTrain,
		XTest:  xTest,
		YTrain: pick(trainIdx),
		YTest:  pick(testIdx),
	}, nil
}

// StratifiedKFold assigns every row to one of `folds` test sets,
// spreading each class evenly across folds. Returns the test-index
// set per fold. Deterministic for a fixed seed.
func StratifiedKFold(y []float64, folds int, seed int64) ([][]int, error) {
	if folds < 2 {
		return nil, xe.New("cross-validation needs at least 2 folds")
	}
	if len(y) < folds {
		return nil, xe.New(fmt.Sprintf("can not make %d folds out of %d rows", folds, len(y)))
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([][]int, folds)
	for _, indices := range classIndices(y) {
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for i, idx := range indices {
			out[i%folds] = append(out[i%folds], idx)
		}
	}
	for _, fold := range out {
		sort.Ints(fold)
	}
	return out, nil
}

// classIndices groups row indices by class, in ascending class order
// so that iteration is deterministic.
func classIndices(y []float64) [][]int {
	byClass := map[float64][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	out := make([][]int, 0, len(classes))
	for _, c := range classes {
		out = append(out, byClass[c])
	}
	return out
}
