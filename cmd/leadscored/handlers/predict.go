package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/leadscore/leadscore/pkg/api/errors"
	"github.com/leadscore/leadscore/pkg/dataset"
	"github.com/leadscore/leadscore/pkg/features"
	"github.com/leadscore/leadscore/pkg/ml"
)

// CustomerFeatures is one raw campaign contact as the client knows it,
// before cleaning and feature engineering. Every field is required;
// pointers distinguish an absent field from a zero value.
//
// Count and calendar fields (age, day, duration, campaign, pdays,
// previous) are integers. They bind as float64 so a fractional JSON
// number is rejected with a field-level message instead of a generic
// bind error.
type CustomerFeatures struct {
	Age       *float64 `json:"age"`
	Job       *string  `json:"job"`
	Marital   *string  `json:"marital"`
	Education *string  `json:"education"`
	Default   *string  `json:"default"`
	Balance   *float64 `json:"balance"`
	Housing   *string  `json:"housing"`
	Loan      *string  `json:"loan"`
	Contact   *string  `json:"contact"`
	Day       *float64 `json:"day"`
	Month     *string  `json:"month"`
	Duration  *float64 `json:"duration"`
	Campaign  *float64 `json:"campaign"`
	Pdays     *float64 `json:"pdays"`
	Previous  *float64 `json:"previous"`
	Poutcome  *string  `json:"poutcome"`
}

func (cf CustomerFeatures) missingFields() []string {
	missing := []string{}
	numeric := map[string]*float64{
		"age": cf.Age, "balance": cf.Balance, "day": cf.Day,
		"duration": cf.Duration, "campaign": cf.Campaign,
		"pdays": cf.Pdays, "previous": cf.Previous,
	}
	categorical := map[string]*string{
		"job": cf.Job, "marital": cf.Marital, "education": cf.Education,
		"default": cf.Default, "housing": cf.Housing, "loan": cf.Loan,
		"contact": cf.Contact, "month": cf.Month, "poutcome": cf.Poutcome,
	}

	schema := features.Default()
	for _, name := range schema.RawNumeric {
		if numeric[name] == nil {
			missing = append(missing, name)
		}
	}
	for _, name := range schema.Categorical {
		if categorical[name] == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// fractionalFields lists integer fields carrying a fractional value.
func (cf CustomerFeatures) fractionalFields() []string {
	integers := map[string]*float64{
		"age": cf.Age, "day": cf.Day, "duration": cf.Duration,
		"campaign": cf.Campaign, "pdays": cf.Pdays, "previous": cf.Previous,
	}
	out := []string{}
	for _, name := range []string{"age", "day", "duration", "campaign", "pdays", "previous"} {
		if v := integers[name]; v != nil && *v != math.Trunc(*v) {
			out = append(out, name)
		}
	}
	return out
}

// frame builds a one-row frame in the layout training reads from the
// raw file, minus the target.
func (cf CustomerFeatures) frame() (*dataset.Frame, error) {
	return dataset.New(
		dataset.NumericColumn("age", []float64{*cf.Age}),
		dataset.NumericColumn("balance", []float64{*cf.Balance}),
		dataset.NumericColumn("day", []float64{*cf.Day}),
		dataset.NumericColumn("duration", []float64{*cf.Duration}),
		dataset.NumericColumn("campaign", []float64{*cf.Campaign}),
		dataset.NumericColumn("pdays", []float64{*cf.Pdays}),
		dataset.NumericColumn("previous", []float64{*cf.Previous}),
		dataset.StringColumn("job", []string{*cf.Job}),
		dataset.StringColumn("marital", []string{*cf.Marital}),
		dataset.StringColumn("education", []string{*cf.Education}),
		dataset.StringColumn("default", []string{*cf.Default}),
		dataset.StringColumn("housing", []string{*cf.Housing}),
		dataset.StringColumn("loan", []string{*cf.Loan}),
		dataset.StringColumn("contact", []string{*cf.Contact}),
		dataset.StringColumn("month", []string{*cf.Month}),
		dataset.StringColumn("poutcome", []string{*cf.Poutcome}),
	)
}

// Prediction is the scoring response for one customer.
type Prediction struct {
	// Probability that the customer subscribes.
	Probability float64 `json:"probability"`

	// Prediction is 1 when Probability >= 0.5, else 0.
	Prediction int `json:"prediction"`
}

// PredictHandler scores one customer with the pipeline loaded at
// startup. The raw fields go through the same cleaning and feature
// engineering as training rows.
func PredictHandler(pipeline *ml.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		cf := CustomerFeatures{}
		if err := c.Bind(&cf); err != nil {
			return apierr.BadRequest("send a JSON object of customer features", err)
		}
		if missing := cf.missingFields(); len(missing) != 0 {
			return apierr.BadRequest(
				"missing required fields: "+strings.Join(missing, ", "), nil,
			)
		}
		if fractional := cf.fractionalFields(); len(fractional) != 0 {
			return apierr.BadRequest(
				"integer fields with fractional values: "+strings.Join(fractional, ", "), nil,
			)
		}

		raw, err := cf.frame()
		if err != nil {
			return apierr.InternalServerError(err)
		}
		x, err := features.Engineer(dataset.Clean(raw, ""))
		if err != nil {
			return apierr.InternalServerError(err)
		}

		proba, err := pipeline.PredictProba(x)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		result := Prediction{Probability: proba[0]}
		if 0.5 <= result.Probability {
			result.Prediction = 1
		}
		return c.JSON(http.StatusOK, result)
	}
}
