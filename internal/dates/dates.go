// Package dates implements the engine's single internal date representation
// and the tolerant normalizer applied during loading.
//
// Source dates in the corpus come in three shapes: a full date ("1999-05-03"),
// a year-month ("1999-05"), or a bare year ("1999"). Parse tries the layouts
// in that order (most specific first) and the first match wins. Anything that
// matches none of them, including the empty string, normalizes to the unknown
// sentinel; Parse never fails.
//
// Partial dates are zero-filled: a year-only value carries month=January and
// day=1. Downstream month-based aggregation therefore counts year-only birth
// dates toward January. That skew is intentional and preserved from the
// source data pipeline; see analysis.Ages.
package dates

import "time"

// Unknown is the string form of an unparseable or absent date.
const Unknown = "unknown"

// Precision records how much of a Date was present in the raw value.
type Precision int

const (
	// PrecisionNone marks the unknown sentinel.
	PrecisionNone Precision = iota
	// PrecisionYear marks a bare-year value; month and day are zero-filled.
	PrecisionYear
	// PrecisionMonth marks a year-month value; day is zero-filled.
	PrecisionMonth
	// PrecisionDay marks a full date.
	PrecisionDay
)

// Date is a normalized calendar date. The zero value is the unknown sentinel.
type Date struct {
	Year      int
	Month     time.Month
	Day       int
	Precision Precision
}

// layouts are tried in order; most specific first.
var layouts = []struct {
	layout    string
	precision Precision
}{
	{"2006-01-02", PrecisionDay},
	{"2006-01", PrecisionMonth},
	{"2006", PrecisionYear},
}

// Parse normalizes a raw date string. It is total: every input maps to a
// Date, with unparseable values mapping to the unknown sentinel.
func Parse(raw string) Date {
	s := trimSpace(raw)
	if s == "" {
		return Date{}
	}
	for _, l := range layouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		return Date{
			Year:      t.Year(),
			Month:     t.Month(),
			Day:       t.Day(),
			Precision: l.precision,
		}
	}
	return Date{}
}

// Known reports whether d holds a real date rather than the unknown sentinel.
func (d Date) Known() bool { return d.Precision != PrecisionNone }

// String renders d at its own precision, or the unknown sentinel.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionDay:
		return d.time().Format("2006-01-02")
	case PrecisionMonth:
		return d.time().Format("2006-01")
	case PrecisionYear:
		return d.time().Format("2006")
	default:
		return Unknown
	}
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// trimSpace is a minimal ASCII trim; source values are plain ASCII dates with
// occasional surrounding spaces.
func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
