package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// trailingWindowDays maps a granularity to the number of strictly prior days
// summed when computing a rolling engagement rate.
func trailingWindowDays(g Granularity) int {
	switch g {
	case Day:
		return 1
	case Week:
		return 7
	case Quarter:
		return 90
	case Year:
		return 365
	default:
		return 30
	}
}

// EngagementRateSeries computes, for every calendar day between the first
// and last event, the ratio of engagements (likes + reposts) to posts over
// the trailing window of prior days. The window excludes the current day
// entirely, so a day's rate reflects only strictly earlier activity. A day
// whose trailing post count is zero gets a rate of exactly 0; a zero
// denominator is a defined zero rate, not a failure.
func EngagementRateSeries(events []domain.Event, g Granularity) (domain.Series, error) {
	if err := domain.ValidateEvents(events); err != nil {
		return domain.EmptySeries(), err
	}
	if len(events) == 0 {
		return domain.EmptySeries(), nil
	}

	dayOf := func(t time.Time) time.Time {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	start := dayOf(events[0].Timestamp)
	end := start
	posts := make(map[time.Time]float64)
	engagements := make(map[time.Time]float64)
	for _, ev := range events {
		day := dayOf(ev.Timestamp)
		if day.Before(start) {
			start = day
		}
		if day.After(end) {
			end = day
		}
		switch ev.Type {
		case domain.EventPost:
			posts[day]++
		case domain.EventLike, domain.EventRepost:
			engagements[day]++
		}
	}

	// Continuous day range so gap days participate in the window with zero
	// counts instead of being skipped.
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	window := trailingWindowDays(g)
	postPrefix := make([]float64, len(days)+1)
	engPrefix := make([]float64, len(days)+1)
	for i, d := range days {
		postPrefix[i+1] = postPrefix[i] + posts[d]
		engPrefix[i+1] = engPrefix[i] + engagements[d]
	}

	series := domain.EmptySeries()
	for i, d := range days {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		// Prefix indices [lo, i) cover the window days strictly before day i.
		trailingPosts := postPrefix[i] - postPrefix[lo]
		trailingEng := engPrefix[i] - engPrefix[lo]

		rate := 0.0
		if trailingPosts > 0 {
			rate = trailingEng / trailingPosts
		}
		series.Labels = append(series.Labels, Bucket(d, Day))
		series.Values = append(series.Values, rate)
	}
	return series, nil
}

// engagementScoreWindow is the trailing period considered when scoring
// follower engagement.
const engagementScoreWindow = 90 * 24 * time.Hour

// EngagementScore is the percentage of followers who engaged with the
// account's posts in the trailing 90 days before now: unique engaging
// follower handles divided by the follower count, times 100, rounded to the
// nearest integer. An account with no followers scores 0.
func EngagementScore(events []domain.Event, followers int, now time.Time) float64 {
	if followers <= 0 {
		return 0
	}

	cutoff := now.Add(-engagementScoreWindow)
	engaged := make(map[string]struct{})
	for _, ev := range events {
		if ev.Type == domain.EventPost || !ev.IsFollower {
			continue
		}
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		engaged[ev.ActorHandle] = struct{}{}
	}
	return math.Round(float64(len(engaged)) / float64(followers) * 100)
}

// hourOfWeekSlots is hours per week; slots run Monday 00:00 through Sunday
// 23:00.
const hourOfWeekSlots = 168

var weekdayAbbrev = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func hourOfWeekSlot(t time.Time) int {
	t = t.UTC()
	// time.Weekday counts Sunday as 0; shift to a Monday-first week.
	return (int(t.Weekday())+6)%7*24 + t.Hour()
}

// HourOfWeekDistribution buckets events into the 168 hour-of-week slots and
// normalizes each event type's counts into an independent probability mass
// function summing to 1 across all slots. A type with no events at all
// yields an all-zero dataset rather than NaNs.
func HourOfWeekDistribution(events []domain.Event) (domain.MultiSeries, error) {
	if err := domain.ValidateEvents(events); err != nil {
		return domain.EmptyMultiSeries(), err
	}

	counts := map[domain.EventType][]float64{
		domain.EventPost:   make([]float64, hourOfWeekSlots),
		domain.EventLike:   make([]float64, hourOfWeekSlots),
		domain.EventRepost: make([]float64, hourOfWeekSlots),
	}
	for _, ev := range events {
		counts[ev.Type][hourOfWeekSlot(ev.Timestamp)]++
	}

	multi := domain.EmptyMultiSeries()
	for slot := 0; slot < hourOfWeekSlots; slot++ {
		multi.Labels = append(multi.Labels, fmt.Sprintf("%s %02d", weekdayAbbrev[slot/24], slot%24))
	}
	for _, t := range []domain.EventType{domain.EventPost, domain.EventLike, domain.EventRepost} {
		data := counts[t]
		var total float64
		for _, v := range data {
			total += v
		}
		normalized := make([]float64, hourOfWeekSlots)
		if total > 0 {
			for i, v := range data {
				normalized[i] = v / total
			}
		}
		multi.Datasets = append(multi.Datasets, domain.Dataset{Label: string(t), Data: normalized})
	}
	return multi, nil
}
