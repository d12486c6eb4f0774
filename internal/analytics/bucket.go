// Package analytics turns normalized event rows into chart-ready,
// gap-filled, time-bucketed series. Every function treats its input as a
// read-only snapshot and returns freshly built structures.
package analytics

import (
	"fmt"
	"time"
)

// Granularity selects the calendar period events are bucketed into.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// ParseGranularity maps a request parameter to a Granularity. Unrecognized
// values (including empty) fall back to Month.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Day, Week, Month, Quarter, Year:
		return Granularity(s)
	default:
		return Month
	}
}

// Bucket maps a timestamp to its cohort key for the given granularity. Keys
// are calendar-period starts (ISO week for Week) rendered so that plain
// string comparison orders them chronologically. This is the single shared
// bucketing implementation; aggregators must call it rather than carry their
// own period-selection branches.
func Bucket(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case Day:
		return t.Format("2006-01-02")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case Year:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}
