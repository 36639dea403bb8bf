package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// Penalty selects the regularization term of the estimator.
type Penalty string

const (
	L1 Penalty = "l1"
	L2 Penalty = "l2"
)

// LogisticRegression is a binary classifier trained with full-batch
// gradient descent.
//
// C is the inverse regularization strength, matching the usual
// convention: smaller C means stronger regularization. Training is
// deterministic: weights start at zero and run a fixed number of
// iterations.
type LogisticRegression struct {
	C            float64
	Penalty      Penalty
	MaxIter      int
	LearningRate float64

	Weights []float64
	Bias    float64
}

func NewLogisticRegression(c float64, penalty Penalty) *LogisticRegression {
	return &LogisticRegression{
		C:            c,
		Penalty:      penalty,
		MaxIter:      500,
		LearningRate: 0.1,
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func (m *LogisticRegression) Fit(X mat.Matrix, y []float64) error {
	n, d := X.Dims()
	if n == 0 {
		return xe.New("can not fit on an empty design matrix")
	}
	if len(y) != n {
		return xe.New(fmt.Sprintf("design matrix has %d rows, target has %d", n, len(y)))
	}
	if m.Penalty != L1 && m.Penalty != L2 {
		return xe.New(fmt.Sprintf("unsupported penalty: %s", m.Penalty))
	}
	if m.C <= 0 {
		return xe.New("C must be positive")
	}

	w := mat.NewVecDense(d, nil)
	bias := 0.0
	scores := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	invN := 1 / float64(n)
	// the per-sample regularization weight 1/(C*n)
	reg := 1 / (m.C * float64(n))

	for iter := 0; iter < m.MaxIter; iter++ {
		scores.MulVec(X, w)
		for i := 0; i < n; i++ {
			p := sigmoid(scores.AtVec(i) + bias)
			resid.SetVec(i, p-y[i])
		}

		grad.MulVec(X.T(), resid)
		for j := 0; j < d; j++ {
			g := grad.AtVec(j) * invN
			wj := w.AtVec(j)
			switch m.Penalty {
			case L2:
				g += wj * reg
			case L1:
				g += sign(wj) * reg
			}
			w.SetVec(j, wj-m.LearningRate*g)
		}
		bias -= m.LearningRate * floats.Sum(resid.RawVector().Data) * invN
	}

	m.Weights = make([]float64, d)
	copy(m.Weights, w.RawVector().Data)
	m.Bias = bias
	return nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// PredictProba returns the class-1 probability per row.
func (m *LogisticRegression) PredictProba(X mat.Matrix) ([]float64, error) {
	n, d := X.Dims()
	if m.Weights == nil {
		return nil, xe.New("estimator is not fitted")
	}
	if d != len(m.Weights) {
		return nil, xe.New(fmt.Sprintf(
			"design matrix has %d features, estimator was fitted on %d", d, len(m.Weights),
		))
	}

	w := mat.NewVecDense(len(m.Weights), m.Weights)
	scores := mat.NewVecDense(n, nil)
	scores.MulVec(X, w)

	proba := make([]float64, n)
	for i := range proba {
		proba[i] = sigmoid(scores.AtVec(i) + m.Bias)
	}
	return proba, nil
}

// Predict thresholds PredictProba at 0.5.
func (m *LogisticRegression) Predict(X mat.Matrix) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}
