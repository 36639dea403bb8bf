package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
)

// NumericFeature is the fitted transform of one numeric column:
// median imputation then standardization.
type NumericFeature struct {
	Name    string
	Imputer MedianImputer
	Scaler  StandardScaler
}

// CategoricalFeature is the fitted transform of one categorical
// column: most-frequent imputation then one-hot encoding.
type CategoricalFeature struct {
	Name    string
	Imputer ModeImputer
	Encoder OneHotEncoder
}

// ColumnTransformer applies per-column transforms declared by the
// schema groups and concatenates the results into one design matrix.
//
// Output layout: all numeric columns first (one feature each, in
// group order), then each categorical column's one-hot block.
type ColumnTransformer struct {
	Numeric     []NumericFeature
	Categorical []CategoricalFeature
}

func NewColumnTransformer(numeric []string, categorical []string) *ColumnTransformer {
	t := &ColumnTransformer{}
	for _, name := range numeric {
		t.Numeric = append(t.Numeric, NumericFeature{Name: name})
	}
	for _, name := range categorical {
		t.Categorical = append(t.Categorical, CategoricalFeature{Name: name})
	}
	return t
}

func (t *ColumnTransformer) Fit(f *dataset.Frame) error {
	for i := range t.Numeric {
		values, err := numericValues(f, t.Numeric[i].Name)
		if err != nil {
			return err
		}
		t.Numeric[i].Imputer.Fit(values)

		imputed := make([]float64, len(values))
		for j, v := range values {
			imputed[j] = t.Numeric[i].Imputer.Apply(v)
		}
		t.Numeric[i].Scaler.Fit(imputed)
	}

	for i := range t.Categorical {
		values, err := stringValues(f, t.Categorical[i].Name)
		if err != nil {
			return err
		}
		t.Categorical[i].Imputer.Fit(values)

		imputed := make([]string, len(values))
		for j, v := range values {
			imputed[j] = t.Categorical[i].Imputer.Apply(v)
		}
		t.Categorical[i].Encoder.Fit(imputed)
	}

	return nil
}

// NumFeatures is the width of the design matrix.
func (t *ColumnTransformer) NumFeatures() int {
	width := len(t.Numeric)
	for _, c := range t.Categorical {
		width += c.Encoder.Width()
	}
	return width
}

// FeatureNames lists the design-matrix columns in output order.
func (t *ColumnTransformer) FeatureNames() []string {
	names := make([]string, 0, t.NumFeatures())
	for _, n := range t.Numeric {
		names = append(names, n.Name)
	}
	for _, c := range t.Categorical {
		for _, cat := range c.Encoder.Categories {
			names = append(names, fmt.Sprintf("%s=%s", c.Name, cat))
		}
	}
	return names
}

func (t *ColumnTransformer) Transform(f *dataset.Frame) (*mat.Dense, error) {
	rows := f.NumRows()
	width := t.NumFeatures()
	if width == 0 {
		return nil, xe.New("column transformer is not fitted")
	}

	out := mat.NewDense(rows, width, nil)

	at := 0
	for i := range t.Numeric {
		values, err := numericValues(f, t.Numeric[i].Name)
		if err != nil {
			return nil, err
		}
		for row, v := range values {
			imputed := t.Numeric[i].Imputer.Apply(v)
			out.Set(row, at, t.Numeric[i].Scaler.Apply(imputed))
		}
		at++
	}

	for i := range t.Categorical {
		values, err := stringValues(f, t.Categorical[i].Name)
		if err != nil {
			return nil, err
		}
		w := t.Categorical[i].Encoder.Width()
		block := make([]float64, w)
		for row, v := range values {
			t.Categorical[i].Encoder.Encode(t.Categorical[i].Imputer.Apply(v), block)
			for j, b := range block {
				out.Set(row, at+j, b)
			}
		}
		at += w
	}

	return out, nil
}

func numericValues(f *dataset.Frame, name string) ([]float64, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, xe.New(fmt.Sprintf("numeric column %s is missing", name))
	}
	if col.Kind != dataset.Numeric {
		return nil, xe.New(fmt.Sprintf("column %s is not numeric", name))
	}
	return col.Floats, nil
}

func stringValues(f *dataset.Frame, name string) ([]string, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, xe.New(fmt.Sprintf("categorical column %s is missing", name))
	}
	if col.Kind != dataset.String {
		return nil, xe.New(fmt.Sprintf("column %s is not categorical", name))
	}
	return col.Strings, nil
}
