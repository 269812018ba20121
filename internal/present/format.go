package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

// ToFloat coerces a telemetry value to float64. Numeric strings count as
// numbers; NaN and infinities do not.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Placeholder returns the fixed-width stand-in for a number that could not
// be formatted with the given precision and unit, e.g. "--.-%".
func Placeholder(precision int, unit string) string {
	if precision <= 0 {
		return "--" + unit
	}
	return "--." + strings.Repeat("-", precision) + unit
}

// FormatFixed renders v with a fixed precision and unit suffix. Anything that
// is not a number renders as Placeholder so the region keeps its width.
func FormatFixed(v any, precision int, unit string) string {
	f, ok := ToFloat(v)
	if !ok {
		return Placeholder(precision, unit)
	}
	return strconv.FormatFloat(f, 'f', precision, 64) + unit
}

// FormatTemp renders a temperature as "48.2C".
func FormatTemp(v any) string {
	return FormatFixed(v, 1, "C")
}

// FormatPercent renders a percentage as "42.0%".
func FormatPercent(v any) string {
	return FormatFixed(v, 1, "%")
}

// FormatText renders a text field. nil is the unknown marker.
func FormatText(v any) string {
	switch t := v.(type) {
	case nil:
		return telemetry.Unknown
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// FormatField renders a snapshot field according to its kind.
func FormatField(f telemetry.MetricField) string {
	switch f.Kind {
	case telemetry.KindTemperature:
		return FormatTemp(f.Value)
	case telemetry.KindPercent:
		return FormatPercent(f.Value)
	case telemetry.KindNumber:
		return FormatFixed(f.Value, 1, "")
	default:
		return FormatText(f.Value)
	}
}
