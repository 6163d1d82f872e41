// Package significance decides whether a confidence interval clears the null
// hypothesis in the preferred direction. The outcome is only used to colour the
// null-hypothesis marker of a chart.
package significance

import (
	"math"

	"github.com/pivolan/confidence_charts/domain/models"
)

type Outcome string

const (
	Adverse Outcome = "adverse"
	Neutral Outcome = "neutral"
)

// Color is the chart surface colour key of the outcome.
func (o Outcome) Color() string {
	if o == Adverse {
		return "red"
	}
	return "green"
}

// Classify returns Adverse when the interval fails to clear the null hypothesis
// in the preferred direction. Two-sided rows are always Neutral.
func Classify(lower, upper, nullHypothesis float64, preference models.Preference) Outcome {
	switch {
	case preference == models.PreferenceIncrease && lower < nullHypothesis:
		return Adverse
	case preference == models.PreferenceDecrease && nullHypothesis < upper:
		return Adverse
	}
	return Neutral
}

// ToFinite clamps infinite values into [min, max]. NaN is returned as is.
func ToFinite(v, min, max float64) float64 {
	switch {
	case math.IsInf(v, -1):
		return min
	case math.IsInf(v, 1):
		return max
	}
	return v
}

type RowOutcome struct {
	Index   int
	Outcome Outcome
}

// ClassifyRows classifies the rows that carry a null hypothesis. Bounds are
// clamped to [min, max] first; rows without a null hypothesis are skipped.
func ClassifyRows(rows []models.ComparisonRow, min, max float64, adjusted bool) []RowOutcome {
	var res []RowOutcome
	for i, r := range rows {
		if r.NullHypothesis == nil {
			continue
		}
		lower, upper := r.Bounds(adjusted)
		res = append(res, RowOutcome{
			Index:   i,
			Outcome: Classify(ToFinite(lower, min, max), ToFinite(upper, min, max), *r.NullHypothesis, r.Preference),
		})
	}
	return res
}

// Outcomes maps the result of ClassifyRows by row index.
func Outcomes(rows []models.ComparisonRow, min, max float64, adjusted bool) map[int]Outcome {
	res := map[int]Outcome{}
	for _, o := range ClassifyRows(rows, min, max, adjusted) {
		res[o.Index] = o.Outcome
	}
	return res
}
