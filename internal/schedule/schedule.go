// Package schedule owns the queue of pending image posts: a small CSV-backed
// table of (path, text, publish date, status) rows mutated by the upload and
// reorder endpoints and drained by the publish loop.
package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Status labels derived from days-until-publish. Derived means derived:
// they are recomputed on every save and never treated as stored state.
const (
	StatusNextDay    = "Next Day!"
	StatusComingSoon = "Coming Soon."
	StatusFarOff     = "A Long Way Off..."
)

// Item is one scheduled post. A zero Date means the item has not been
// assigned a publish slot yet; Build assigns it the next available one.
type Item struct {
	ID     string    `json:"id"`
	Path   string    `json:"path"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// StatusFor derives the display status from the days remaining until the
// publish date. Past-due and same-day items both read "Next Day!".
func StatusFor(date, now time.Time) string {
	days := int(date.Sub(now).Hours() / 24)
	switch {
	case days < 1:
		return StatusNextDay
	case days <= 7:
		return StatusComingSoon
	default:
		return StatusFarOff
	}
}

// Build returns a new item list with every unscheduled item given the next
// available daily slot (24h after the latest scheduled date, starting from
// now when nothing is scheduled) and every status recomputed. The input is
// not modified.
func Build(items []Item, now time.Time) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	latest := now
	for _, item := range out {
		if !item.Date.IsZero() && item.Date.After(latest) {
			latest = item.Date
		}
	}

	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		if out[i].Date.IsZero() {
			latest = latest.Add(24 * time.Hour)
			out[i].Date = latest
		}
		out[i].Status = StatusFor(out[i].Date, now)
	}
	return out
}
