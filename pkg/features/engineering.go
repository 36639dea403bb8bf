package features

import (
	"fmt"
	"math"

	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils"
)

// Engineer appends the derived helper columns:
//
//	is_balance_positive  = 1 if balance > 0 else 0
//	log_campaign         = ln(1 + campaign)
//	log_duration         = ln(1 + duration)
//	has_previous_contact = 1 if previous > 0 else 0
//
// Each derived value is a pure function of the raw value on the same
// row, so a single-row frame and a full batch produce identical
// results per row. The trainer and the serving layer both call this;
// they must never diverge.
func Engineer(f *dataset.Frame) (*dataset.Frame, error) {
	balance, err := numericColumn(f, "balance")
	if err != nil {
		return nil, err
	}
	campaign, err := numericColumn(f, "campaign")
	if err != nil {
		return nil, err
	}
	duration, err := numericColumn(f, "duration")
	if err != nil {
		return nil, err
	}
	previous, err := numericColumn(f, "previous")
	if err != nil {
		return nil, err
	}

	derived := []dataset.Column{
		dataset.NumericColumn("is_balance_positive", utils.Map(balance, indicatorPositive)),
		dataset.NumericColumn("log_campaign", utils.Map(campaign, math.Log1p)),
		dataset.NumericColumn("log_duration", utils.Map(duration, math.Log1p)),
		dataset.NumericColumn("has_previous_contact", utils.Map(previous, indicatorPositive)),
	}

	out := f
	for _, col := range derived {
		out, err = out.WithColumn(col)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func numericColumn(f *dataset.Frame, name string) ([]float64, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, xe.New(fmt.Sprintf("feature engineering needs column %s", name))
	}
	if col.Kind != dataset.Numeric {
		return nil, xe.New(fmt.Sprintf("column %s is not numeric", name))
	}
	return col.Floats, nil
}

func indicatorPositive(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}
