package tooltip

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatNumber formats v with a numeral-style pattern such as "0", "0.00",
// "0.00%" or "0,0.0000". The number of zeros after the dot is the precision,
// a comma enables thousands grouping and a trailing % scales by 100.
func FormatNumber(v float64, format string) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}

	percent := strings.HasSuffix(format, "%")
	pattern := strings.TrimSuffix(format, "%")
	grouping := strings.Contains(pattern, ",")
	decimals := 0
	if dot := strings.Index(pattern, "."); dot >= 0 {
		decimals = strings.Count(pattern[dot+1:], "0")
	}
	if percent {
		v *= 100
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	if grouping {
		intPart, frac := s, ""
		if dot := strings.Index(s, "."); dot >= 0 {
			intPart, frac = s[:dot], s[dot:]
		}
		if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
			intPart = humanize.Comma(n)
		}
		s = intPart + frac
	}
	if v < 0 && strings.ContainsAny(s, "123456789") {
		s = "-" + s
	}
	if percent {
		s += "%"
	}
	return s
}
