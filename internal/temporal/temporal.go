// Package temporal implements the duration/date/datetime coercion and
// arithmetic rules shared by the expression evaluator (spec §4.5.2) and the
// built-in DateTime type/constraints. Keeping this logic in one place
// avoids the expression evaluator and the built-in catalogue each
// reimplementing the same duration-string grammar and date parsing.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes a calendar date from a full date-time.
type Kind int

const (
	KindDate Kind = iota
	KindDateTime
)

// Value is a resolved temporal point: a calendar date or a date-time,
// carried as an absolute instant plus which formatting rule produced it.
type Value struct {
	Kind Kind
	Time time.Time
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var durationRe = regexp.MustCompile(`(?i)^(-?\d+)\s*(ms|milliseconds?|s|seconds?|m|minutes?|h|hours?|d|days?|w|weeks?)$`)

var unitScale = map[string]int64{
	"ms": 1,
	"s":  1000,
	"m":  60000,
	"h":  3600000,
	"d":  86400000,
	"w":  604800000,
}

func normalizeUnit(u string) string {
	u = strings.ToLower(u)
	switch {
	case u == "ms" || strings.HasPrefix(u, "milli"):
		return "ms"
	case strings.HasPrefix(u, "s"):
		return "s"
	case strings.HasPrefix(u, "m") && !strings.HasPrefix(u, "ms"):
		return "m"
	case strings.HasPrefix(u, "h"):
		return "h"
	case strings.HasPrefix(u, "d"):
		return "d"
	case strings.HasPrefix(u, "w"):
		return "w"
	}
	return ""
}

// DurationMillis coerces x into a duration expressed in milliseconds.
// Accepted shapes: an integer, a float with an integral value, or a string
// like "30d" / "1.5h" is NOT accepted (the grammar requires an integer
// magnitude, spec §4.5.2). ok is false when x is not duration-coercible.
func DurationMillis(x any) (millis int64, ok bool) {
	switch v := x.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	case string:
		m := durationRe.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			return 0, false
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		unit := normalizeUnit(m[2])
		scale, known := unitScale[unit]
		if !known {
			return 0, false
		}
		return n * scale, true
	default:
		return 0, false
	}
}

// Parse coerces a string into a temporal Value. A bare "YYYY-MM-DD" string
// is a date; anything else Go's time.Parse can make sense of (against the
// spec's date-time layout, then a handful of common permissive layouts) is
// a date-time. ok is false when s is neither.
func Parse(s string) (Value, bool) {
	if dateOnlyRe.MatchString(s) {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return Value{}, false
		}
		return Value{Kind: KindDate, Time: t}, true
	}
	for _, layout := range []string{
		dateTimeLayout,
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Kind: KindDateTime, Time: t}, true
		}
	}
	return Value{}, false
}

// Format renders v back to its canonical string form (spec §4.5.2):
// "YYYY-MM-DD" for a date, "YYYY-MM-DD HH:MM:SS" for a date-time.
func Format(v Value) string {
	if v.Kind == KindDate {
		return v.Time.Format(dateLayout)
	}
	return v.Time.Format(dateTimeLayout)
}

// Shift adds millis milliseconds to v, preserving its Kind.
func Shift(v Value, millis int64) Value {
	return Value{Kind: v.Kind, Time: v.Time.Add(time.Duration(millis) * time.Millisecond)}
}

// DiffMillis returns the millisecond difference a-b when both are the same
// Kind. ok is false for a date vs date-time comparison (spec §4.5.2,
// "temporal − temporal (same kind only)").
func DiffMillis(a, b Value) (int64, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	return a.Time.Sub(b.Time).Milliseconds(), true
}

// Now returns the current instant formatted as a date-time string (spec
// §4.5.1, the now() built-in function).
func Now(clock func() time.Time) string {
	return clock().Format(dateTimeLayout)
}

// Midnight returns today's date at 00:00:00 formatted as a date-time string
// (spec §4.5.1, the midnight() built-in function).
func Midnight(clock func() time.Time) string {
	t := clock()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).Format(dateTimeLayout)
}

// ParseWithLayout checks s against an explicit Go time layout, for the
// built-in "datetime" validator's custom-format mode (adapted from the
// teacher's datetimeConstraint, which validates against an
// author-supplied Go layout string rather than the engine's own two fixed
// layouts).
func ParseWithLayout(s, layout string) (time.Time, bool) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ErrNotDurationCoercible is an error value for callers that need an error
// rather than DurationMillis's ok bool. No code in this module returns it.
var ErrNotDurationCoercible = fmt.Errorf("value is not duration-coercible")
