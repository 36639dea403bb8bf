// Package features declares the column schema shared by training and
// serving, and the feature-engineering step deriving helper columns.
package features

import (
	"fmt"

	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils"
)

// Schema is the single source of truth for column roles.
//
// The downstream estimator sees exactly the columns listed in
// Categorical and Numeric; a derived column left out of both groups
// would silently vanish from the model, so Validate refuses such a
// schema and both the trainer and the server run it at startup.
type Schema struct {
	// Target is the binary outcome label column.
	Target string

	// Categorical columns are imputed with the most frequent value
	// and one-hot encoded.
	Categorical []string

	// Numeric columns are imputed with the median and standardized.
	Numeric []string

	// Engineered columns are derived by Engineer and must each land
	// in exactly one of the groups above.
	Engineered []string

	// RawNumeric columns are the numeric columns read from the raw
	// file (Numeric minus Engineered).
	RawNumeric []string
}

// Default is the bank-marketing campaign schema.
func Default() Schema {
	return Schema{
		Target: "y",
		Categorical: []string{
			"job", "marital", "education", "default", "housing",
			"loan", "contact", "month", "poutcome",
		},
		Numeric: []string{
			"age", "balance", "day", "duration", "campaign", "pdays", "previous",
			"log_campaign", "log_duration", "is_balance_positive", "has_previous_contact",
		},
		Engineered: []string{
			"is_balance_positive", "log_campaign", "log_duration", "has_previous_contact",
		},
		RawNumeric: []string{
			"age", "balance", "day", "duration", "campaign", "pdays", "previous",
		},
	}
}

// Validate checks the internal consistency of the schema.
func (s Schema) Validate() error {
	if s.Target == "" {
		return xe.New("schema: target column is empty")
	}

	seen := map[string]string{}
	for _, group := range []struct {
		name    string
		columns []string
	}{
		{"categorical", s.Categorical},
		{"numeric", s.Numeric},
	} {
		for _, col := range group.columns {
			if col == s.Target {
				return xe.New(fmt.Sprintf("schema: target %s is listed as a %s column", col, group.name))
			}
			if prev, dup := seen[col]; dup {
				return xe.New(fmt.Sprintf("schema: column %s is in both %s and %s groups", col, prev, group.name))
			}
			seen[col] = group.name
		}
	}

	for _, col := range s.Engineered {
		if _, ok := seen[col]; !ok {
			return xe.New(fmt.Sprintf(
				"schema: engineered column %s is in no group and would be dropped from the model", col,
			))
		}
	}

	for _, col := range s.RawNumeric {
		if !utils.Contains(s.Numeric, col) {
			return xe.New(fmt.Sprintf("schema: raw numeric column %s is not in the numeric group", col))
		}
	}

	return nil
}

// RawFields lists the columns of the raw file, typed for ingestion.
func (s Schema) RawFields() []dataset.Field {
	fields := utils.Map(s.RawNumeric, func(name string) dataset.Field {
		return dataset.Field{Name: name, Kind: dataset.Numeric}
	})
	fields = append(fields, utils.Map(s.Categorical, func(name string) dataset.Field {
		return dataset.Field{Name: name, Kind: dataset.String}
	})...)
	return append(fields, dataset.Field{Name: s.Target, Kind: dataset.String})
}

// SplitFeaturesTarget separates the label from f, maps it
// {"yes": 1, "no": 0} and applies Engineer to the remaining columns.
func SplitFeaturesTarget(f *dataset.Frame, s Schema) (*dataset.Frame, []float64, error) {
	label, ok := f.Column(s.Target)
	if !ok {
		return nil, nil, xe.New(fmt.Sprintf("target column %s is missing", s.Target))
	}
	if label.Kind != dataset.String {
		return nil, nil, xe.New(fmt.Sprintf("target column %s is not categorical", s.Target))
	}

	target := make([]float64, len(label.Strings))
	for i, v := range label.Strings {
		switch v {
		case "yes":
			target[i] = 1
		case "no":
			target[i] = 0
		default:
			return nil, nil, xe.New(fmt.Sprintf("target row %d: unexpected label %q", i+1, v))
		}
	}

	dropped, err := f.Drop(s.Target)
	if err != nil {
		return nil, nil, err
	}
	engineered, err := Engineer(dropped)
	if err != nil {
		return nil, nil, err
	}
	return engineered, target, nil
}
