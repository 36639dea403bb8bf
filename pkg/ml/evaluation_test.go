package ml_test

import (
	"math"
	"sort"
	"testing"

	"github.com/leadscore/leadscore/pkg/dataset"
	"github.com/leadscore/leadscore/pkg/ml"
	"github.com/leadscore/leadscore/pkg/utils/try"
)

func TestStratifiedSplit(t *testing.T) {
	f := try.To(dataset.New(
		dataset.NumericColumn("x", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}),
	)).OrFatal(t)
	y := []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}

	t.Run("it keeps class proportions", func(t *testing.T) {
		split := try.To(ml.StratifiedSplit(f, y, 0.2, 42)).OrFatal(t)

		if split.XTrain.NumRows() != 8 || split.XTest.NumRows() != 2 {
			t.Fatalf("want 8/2 rows, got %d/%d", split.XTrain.NumRows(), split.XTest.NumRows())
		}
		count := func(labels []float64, class float64) int {
			n := 0
			for _, l := range labels {
				if l == class {
					n++
				}
			}
			return n
		}
		if count(split.YTest, 0) != 1 || count(split.YTest, 1) != 1 {
			t.Errorf("test split lost stratification: %v", split.YTest)
		}
	})

	t.Run("it is deterministic for a fixed seed", func(t *testing.T) {
		a := try.To(ml.StratifiedSplit(f, y, 0.2, 42)).OrFatal(t)
		b := try.To(ml.StratifiedSplit(f, y, 0.2, 42)).OrFatal(t)
		colA, _ := a.XTest.Column("x")
		colB, _ := b.XTest.Column("x")
		for i := range colA.Floats {
			if colA.Floats[i] != colB.Floats[i] {
				t.Fatal("same seed produced different splits")
			}
		}
	})

	t.Run("invalid test sizes are rejected", func(t *testing.T) {
		for _, size := range []float64{0, 1, -0.5, 1.5} {
			if _, err := ml.StratifiedSplit(f, y, size, 42); err == nil {
				t.Errorf("test size %v is accepted", size)
			}
		}
	})
}

func TestStratifiedKFold(t *testing.T) {
	y := []float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}

	t.Run("folds partition all rows exactly once", func(t *testing.T) {
		folds := try.To(ml.StratifiedKFold(y, 3, 42)).OrFatal(t)
		if len(folds) != 3 {
			t.Fatalf("want 3 folds, got %d", len(folds))
		}
		var all []int
		for _, fold := range folds {
			all = append(all, fold...)
		}
		sort.Ints(all)
		if len(all) != len(y) {
			t.Fatalf("folds cover %d rows, want %d", len(all), len(y))
		}
		for i, idx := range all {
			if idx != i {
				t.Fatalf("folds do not partition the rows: %v", all)
			}
		}
	})

	t.Run("each fold sees both classes", func(t *testing.T) {
		folds := try.To(ml.StratifiedKFold(y, 3, 42)).OrFatal(t)
		for n, fold := range folds {
			seen := map[float64]bool{}
			for _, idx := range fold {
				seen[y[idx]] = true
			}
			if !seen[0] || !seen[1] {
				t.Errorf("fold %d is single-class: %v", n, fold)
			}
		}
	})

	t.Run("too few rows is an error", func(t *testing.T) {
		if _, err := ml.StratifiedKFold([]float64{0, 1}, 3, 42); err == nil {
			t.Fatal("2 rows in 3 folds is accepted")
		}
	})
}

func TestAUC(t *testing.T) {
	type When struct {
		yTrue []float64
		proba []float64
	}
	type Then struct {
		auc float64
	}
	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			if got := ml.AUC(when.yTrue, when.proba); math.Abs(got-then.auc) > 1e-12 {
				t.Errorf("want AUC %v, got %v", then.auc, got)
			}
		}
	}

	t.Run("perfect ranking", theory(
		When{yTrue: []float64{0, 0, 1, 1}, proba: []float64{0.1, 0.2, 0.8, 0.9}},
		Then{auc: 1},
	))
	t.Run("inverted ranking", theory(
		When{yTrue: []float64{1, 1, 0, 0}, proba: []float64{0.1, 0.2, 0.8, 0.9}},
		Then{auc: 0},
	))
	t.Run("all scores tied", theory(
		When{yTrue: []float64{0, 1, 0, 1}, proba: []float64{0.5, 0.5, 0.5, 0.5}},
		Then{auc: 0.5},
	))
	t.Run("single class has no ranking information", theory(
		When{yTrue: []float64{1, 1}, proba: []float64{0.2, 0.9}},
		Then{auc: 0.5},
	))
}

func TestEvaluate(t *testing.T) {
	t.Run("confusion matrix and derived metrics", func(t *testing.T) {
		yTrue := []float64{1, 1, 1, 0, 0, 0, 0, 1}
		proba := []float64{0.9, 0.8, 0.2, 0.1, 0.7, 0.3, 0.2, 0.6}
		// predicted: 1, 1, 0, 0, 1, 0, 0, 1
		// tp=3 fn=1 fp=1 tn=3
		m := try.To(ml.Evaluate(yTrue, proba, 0.5)).OrFatal(t)

		if m.Confusion[1][1] != 3 || m.Confusion[1][0] != 1 ||
			m.Confusion[0][1] != 1 || m.Confusion[0][0] != 3 {
			t.Fatalf("unexpected confusion matrix: %v", m.Confusion)
		}
		if m.Precision != 0.75 || m.Recall != 0.75 {
			t.Errorf("want precision/recall 0.75, got %v/%v", m.Precision, m.Recall)
		}
		if m.Accuracy != 0.75 {
			t.Errorf("want accuracy 0.75, got %v", m.Accuracy)
		}
		if math.Abs(m.F1-0.75) > 1e-12 {
			t.Errorf("want F1 0.75, got %v", m.F1)
		}
	})

	t.Run("length mismatch is an error", func(t *testing.T) {
		if _, err := ml.Evaluate([]float64{1}, []float64{0.5, 0.6}, 0.5); err == nil {
			t.Fatal("length mismatch is accepted")
		}
	})
}

func TestGridSearchCV(t *testing.T) {
	// duration separates the classes; enough rows for 5 folds
	durations := make([]float64, 40)
	contacts := make([]string, 40)
	y := make([]float64, 40)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			durations[i] = float64(10 + i)
			y[i] = 0
		} else {
			durations[i] = float64(300 + i)
			y[i] = 1
		}
		contacts[i] = []string{"cellular", "telephone"}[i%2]
	}
	f := try.To(dataset.New(
		dataset.NumericColumn("duration", durations),
		dataset.StringColumn("contact", contacts),
	)).OrFatal(t)

	t.Run("it returns a fitted winner with its CV score", func(t *testing.T) {
		result, err := ml.GridSearchCV(
			[]string{"duration"}, []string{"contact"},
			ml.DefaultGrid(), f, y, 5, 42,
		)
		if err != nil {
			t.Fatal(err)
		}
		if result.Pipeline == nil {
			t.Fatal("winner is not fitted")
		}
		if result.CVScore < 0.9 {
			t.Errorf("separable data should score high, got %v", result.CVScore)
		}
		proba := try.To(result.Pipeline.PredictProba(f)).OrFatal(t)
		if len(proba) != 40 {
			t.Fatalf("want 40 probabilities, got %d", len(proba))
		}
	})

	t.Run("the search is deterministic", func(t *testing.T) {
		a := try.To(ml.GridSearchCV(
			[]string{"duration"}, []string{"contact"},
			ml.DefaultGrid(), f, y, 5, 42,
		)).OrFatal(t)
		b := try.To(ml.GridSearchCV(
			[]string{"duration"}, []string{"contact"},
			ml.DefaultGrid(), f, y, 5, 42,
		)).OrFatal(t)
		if a.Params != b.Params || a.CVScore != b.CVScore {
			t.Errorf("two identical searches disagree: %+v vs %+v", a.Params, b.Params)
		}
	})

	t.Run("an empty grid is an error", func(t *testing.T) {
		_, err := ml.GridSearchCV(
			[]string{"duration"}, []string{"contact"},
			ml.ParamGrid{}, f, y, 5, 42,
		)
		if err == nil {
			t.Fatal("empty grid is accepted")
		}
	})
}
