package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// leadingNumber matches the decimal number at the start of a string, so
// labels such as "7.5h" or "8hr" read as 7.5 and 8.
var leadingNumber = regexp.MustCompile(`^\s*[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// SafeNumber coerces v to a finite number. Nil, empty strings, booleans,
// strings without a leading number and values that are NaN or infinite
// return def.
func SafeNumber(v any, def float64) float64 {
	n, ok := toNumber(v)
	if !ok {
		return def
	}
	return n
}

// IsValidNumber reports whether v coerces to a finite number.
func IsValidNumber(v any) bool {
	_, ok := toNumber(v)
	return ok
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		m := leadingNumber.FindString(x)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		n = f
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// round rounds half up, matching the way percentages are displayed.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// SafePercentage returns numerator/denominator as a whole percentage,
// rounded half up. A zero or invalid denominator yields 0.
func SafePercentage(numerator, denominator any) int {
	num := SafeNumber(numerator, 0)
	den := SafeNumber(denominator, 0)
	if den == 0 {
		return 0
	}
	return int(SafeNumber(round(num/den*100), 0))
}

// SafeDivide returns numerator/denominator, or def when the denominator is
// zero or the result is not finite.
func SafeDivide(numerator, denominator any, def float64) float64 {
	num := SafeNumber(numerator, 0)
	den := SafeNumber(denominator, 0)
	if den == 0 {
		return def
	}
	return SafeNumber(num/den, def)
}

// SafeSum adds values, counting invalid ones as 0.
func SafeSum(values []any) float64 {
	var sum float64
	for _, v := range values {
		sum += SafeNumber(v, 0)
	}
	return SafeNumber(sum, 0)
}

// SafeAverage returns the mean of the strictly positive values. Zero,
// negative and invalid values are treated as missing data. With nothing
// left the average is 0.
func SafeAverage(values []any) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if f := SafeNumber(v, 0); f > 0 {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return SafeNumber(sum/float64(n), 0)
}
