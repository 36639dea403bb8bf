package ml

import (
	"encoding/gob"
	"io"

	xe "github.com/leadscore/leadscore/pkg/errors"

	"github.com/leadscore/leadscore/pkg/dataset"
)

// Pipeline bundles a fitted preprocessing transform with a fitted
// estimator. The two are created, persisted and loaded together; the
// exact transform fitted during training is always the one applied at
// inference.
type Pipeline struct {
	Preprocessor *ColumnTransformer
	Model        *LogisticRegression
}

func NewPipeline(pre *ColumnTransformer, model *LogisticRegression) *Pipeline {
	return &Pipeline{Preprocessor: pre, Model: model}
}

func (p *Pipeline) Fit(f *dataset.Frame, y []float64) error {
	if err := p.Preprocessor.Fit(f); err != nil {
		return err
	}
	X, err := p.Preprocessor.Transform(f)
	if err != nil {
		return err
	}
	return p.Model.Fit(X, y)
}

func (p *Pipeline) PredictProba(f *dataset.Frame) ([]float64, error) {
	X, err := p.Preprocessor.Transform(f)
	if err != nil {
		return nil, err
	}
	return p.Model.PredictProba(X)
}

func (p *Pipeline) Predict(f *dataset.Frame) ([]float64, error) {
	proba, err := p.PredictProba(f)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(proba))
	for i, pr := range proba {
		if pr >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Encode serializes the fitted pipeline.
func (p *Pipeline) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return xe.WrapWithNote("can not serialize pipeline", err)
	}
	return nil
}

// DecodePipeline reads back a pipeline written by Encode.
func DecodePipeline(r io.Reader) (*Pipeline, error) {
	p := &Pipeline{}
	if err := gob.NewDecoder(r).Decode(p); err != nil {
		return nil, xe.WrapWithNote("can not deserialize pipeline", err)
	}
	return p, nil
}
