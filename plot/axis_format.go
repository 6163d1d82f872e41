package plot

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// AxisFormatPrecision picks a numeral format for the values of a chart and
// returns the finite min and max of the values. The number of decimals follows
// the spread of the data; relative values get a percent format. extraZeros adds
// decimals, tooltips use it to show more precision than the axis.
func AxisFormatPrecision(numbers []float64, absolute bool, extraZeros int) (string, float64, float64) {
	finite := make([]float64, 0, len(numbers))
	for _, v := range numbers {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return numeralFormat(extraZeros, absolute), 0, 0
	}
	min, max := floats.Min(finite), floats.Max(finite)

	spread := max - min
	if spread == 0 {
		spread = math.Abs(max)
	}
	if !absolute {
		spread *= 100
	}
	precision := 0
	if spread > 0 {
		precision = int(math.Max(0, 1-math.Floor(math.Log10(spread))))
	}
	return numeralFormat(precision+extraZeros, absolute), min, max
}

func numeralFormat(decimals int, absolute bool) string {
	format := "0"
	if decimals > 0 {
		format += "." + strings.Repeat("0", decimals)
	}
	if !absolute {
		format += "%"
	}
	return format
}

// PaddedRange widens [min, max] by 5% of the span on both sides.
func PaddedRange(min, max float64) (float64, float64) {
	pad := 0.05 * (max - min)
	if pad == 0 {
		pad = 0.05 * math.Abs(max)
	}
	if pad == 0 {
		pad = 0.05
	}
	return min - pad, max + pad
}
