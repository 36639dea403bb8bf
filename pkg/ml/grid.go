package ml

import (
	"sort"
	"strconv"

	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils"
	"github.com/leadscore/leadscore/pkg/utils/combination"
)

// ParamGrid spans the hyperparameter search space.
type ParamGrid struct {
	C       []float64
	Penalty []Penalty
}

// DefaultGrid is the production search space.
func DefaultGrid() ParamGrid {
	return ParamGrid{
		C:       []float64{0.1, 1.0, 10.0},
		Penalty: []Penalty{L1, L2},
	}
}

// Params is one point of the grid.
type Params struct {
	C       float64
	Penalty Penalty
}

// SearchResult is the winner of a grid search.
type SearchResult struct {
	// Pipeline is refit on the full training split with the winning
	// parameters.
	Pipeline *Pipeline

	Params Params

	// CVScore is the mean cross-validated AUC of the winner.
	CVScore float64
}

// GridSearchCV fits one pipeline per grid point per fold, scores each
// point by mean AUC over stratified k-fold cross-validation, and
// refits the best point on all of f.
//
// The fold assignment is shared by all candidates, so scores are
// comparable, and the whole search is deterministic for a fixed seed.
func GridSearchCV(
	numeric []string,
	categorical []string,
	grid ParamGrid,
	f *dataset.Frame,
	y []float64,
	folds int,
	seed int64,
) (*SearchResult, error) {
	candidates := expand(grid)
	if len(candidates) == 0 {
		return nil, xe.New("empty parameter grid")
	}

	testFolds, err := StratifiedKFold(y, folds, seed)
	if err != nil {
		return nil, err
	}

	best := SearchResult{CVScore: -1}
	for _, candidate := range candidates {
		total := 0.0
		for _, testIdx := range testFolds {
			score, err := scoreFold(numeric, categorical, candidate, f, y, testIdx)
			if err != nil {
				return nil, err
			}
			total += score
		}
		mean := total / float64(len(testFolds))
		if mean > best.CVScore {
			best.CVScore = mean
			best.Params = candidate
		}
	}

	winner := NewPipeline(
		NewColumnTransformer(numeric, categorical),
		NewLogisticRegression(best.Params.C, best.Params.Penalty),
	)
	if err := winner.Fit(f, y); err != nil {
		return nil, err
	}
	best.Pipeline = winner
	return &best, nil
}

func scoreFold(
	numeric []string,
	categorical []string,
	params Params,
	f *dataset.Frame,
	y []float64,
	testIdx []int,
) (float64, error) {
	inTest := map[int]bool{}
	for _, i := range testIdx {
		inTest[i] = true
	}
	trainIdx := make([]int, 0, len(y)-len(testIdx))
	for i := range y {
		if !inTest[i] {
			trainIdx = append(trainIdx, i)
		}
	}

	xTrain, err := f.SelectRows(trainIdx)
	if err != nil {
		return 0, err
	}
	xTest, err := f.SelectRows(testIdx)
	if err != nil {
		return 0, err
	}
	pick := func(idx []int) []float64 {
		out := make([]float64, len(idx))
		for i, j := range idx {
			out[i] = y[j]
		}
		return out
	}

	p := NewPipeline(
		NewColumnTransformer(numeric, categorical),
		NewLogisticRegression(params.C, params.Penalty),
	)
	if err := p.Fit(xTrain, pick(trainIdx)); err != nil {
		return 0, err
	}
	proba, err := p.PredictProba(xTest)
	if err != nil {
		return 0, err
	}
	return AUC(pick(testIdx), proba), nil
}

// expand enumerates the grid points in a deterministic order, so that
// a tie on CV score always resolves to the same winner.
func expand(grid ParamGrid) []Params {
	points := combination.MapCartesian(map[string][]string{
		"C": utils.Map(grid.C, func(c float64) string {
			return strconv.FormatFloat(c, 'g', -1, 64)
		}),
		"penalty": utils.Map(grid.Penalty, func(p Penalty) string { return string(p) }),
	})

	out := utils.Map(points, func(point map[string]string) Params {
		c, _ := strconv.ParseFloat(point["C"], 64)
		return Params{C: c, Penalty: Penalty(point["penalty"])}
	})
	sort.Slice(out, func(a, b int) bool {
		if out[a].C != out[b].C {
			return out[a].C < out[b].C
		}
		return out[a].Penalty < out[b].Penalty
	})
	return out
}
