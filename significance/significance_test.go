package significance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivolan/confidence_charts/domain/models"
)

func nim(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		lower      float64
		upper      float64
		null       float64
		preference models.Preference
		want       Outcome
	}{
		{"increase below margin", 0.01, 0.05, 0.02, models.PreferenceIncrease, Adverse},
		{"increase clears margin", 0.03, 0.05, 0.02, models.PreferenceIncrease, Neutral},
		{"increase on margin", 0.02, 0.05, 0.02, models.PreferenceIncrease, Neutral},
		{"decrease above margin", -0.05, 0.01, 0.0, models.PreferenceDecrease, Adverse},
		{"decrease clears margin", -0.05, -0.01, 0.0, models.PreferenceDecrease, Neutral},
		{"decrease on margin", -0.05, 0.0, 0.0, models.PreferenceDecrease, Neutral},
		{"two sided", -1, 1, 0, models.PreferenceTwoSided, Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.lower, tt.upper, tt.null, tt.preference))
		})
	}
}

func TestClassifyIncreaseProperty(t *testing.T) {
	for lower := -1.0; lower <= 1.0; lower += 0.25 {
		for null := -1.0; null <= 1.0; null += 0.25 {
			got := Classify(lower, lower+0.5, null, models.PreferenceIncrease)
			assert.Equal(t, lower < null, got == Adverse, "lower=%v null=%v", lower, null)

			got = Classify(lower-0.5, lower, null, models.PreferenceDecrease)
			assert.Equal(t, null < lower, got == Adverse, "upper=%v null=%v", lower, null)
		}
	}
}

func TestToFinite(t *testing.T) {
	assert.Equal(t, -2.0, ToFinite(math.Inf(-1), -2, 3))
	assert.Equal(t, 3.0, ToFinite(math.Inf(1), -2, 3))
	assert.Equal(t, 0.5, ToFinite(0.5, -2, 3))
	assert.True(t, math.IsNaN(ToFinite(math.NaN(), -2, 3)))
}

func TestClassifyRows(t *testing.T) {
	rows := []models.ComparisonRow{
		{Lower: 0.01, Upper: 0.05, NullHypothesis: nim(0.02), Preference: models.PreferenceIncrease},
		{Lower: 0.01, Upper: 0.05, Preference: models.PreferenceIncrease},
		{Lower: math.Inf(-1), Upper: 0.05, NullHypothesis: nim(-0.5), Preference: models.PreferenceIncrease},
		{Lower: 0.2, Upper: 0.3, AdjustedLower: 0.001, AdjustedUpper: 0.4, NullHypothesis: nim(0.1), Preference: models.PreferenceIncrease},
	}

	got := ClassifyRows(rows, -1, 1, false)
	assert.Equal(t, []RowOutcome{
		{Index: 0, Outcome: Adverse},
		{Index: 2, Outcome: Adverse},
		{Index: 3, Outcome: Neutral},
	}, got)

	// -Inf is clamped to the lower axis bound which is above the margin
	got = ClassifyRows(rows[2:3], -0.4, 1, false)
	assert.Equal(t, Neutral, got[0].Outcome)

	adjusted := Outcomes(rows, -1, 1, true)
	assert.Equal(t, Adverse, adjusted[3])
	_, ok := adjusted[1]
	assert.False(t, ok)
}

func TestOutcomeColor(t *testing.T) {
	assert.Equal(t, "red", Adverse.Color())
	assert.Equal(t, "green", Neutral.Color())
}
