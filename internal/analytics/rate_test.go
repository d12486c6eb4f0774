package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupbiscuit/skydash/internal/domain"
)

func likeEvent(ts time.Time) domain.Event {
	return domain.Event{
		Timestamp:     ts,
		Type:          domain.EventLike,
		PostURI:       "at://did:plc:me/app.bsky.feed.post/abc",
		PostTimestamp: ts.Add(-time.Hour),
		ActorHandle:   "fan.bsky.social",
	}
}

func TestEngagementRateTrailingWindow(t *testing.T) {
	today := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	var events []domain.Event
	// 10 posts and 4 likes spread across the prior 30 days.
	for i := 1; i <= 10; i++ {
		events = append(events, postEvent(today.AddDate(0, 0, -i), 0))
	}
	for i := 1; i <= 4; i++ {
		events = append(events, likeEvent(today.AddDate(0, 0, -i).Add(time.Minute)))
	}
	// An anchor event on the final day so the range extends to today.
	events = append(events, likeEvent(today))

	series, err := EngagementRateSeries(events, Month)
	require.NoError(t, err)
	require.NotEmpty(t, series.Labels)
	assert.Equal(t, "2024-06-30", series.Labels[len(series.Labels)-1])
	assert.InDelta(t, 0.4, series.Values[len(series.Values)-1], 1e-9)
}

func TestEngagementRateIgnoresSameDayActivity(t *testing.T) {
	today := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	var events []domain.Event
	for i := 1; i <= 10; i++ {
		events = append(events, postEvent(today.AddDate(0, 0, -i), 0))
	}
	for i := 1; i <= 4; i++ {
		events = append(events, likeEvent(today.AddDate(0, 0, -i).Add(time.Minute)))
	}
	events = append(events, likeEvent(today))

	base, err := EngagementRateSeries(events, Month)
	require.NoError(t, err)

	// Inject a huge same-day burst; today's rate must not move.
	burst := make([]domain.Event, len(events))
	copy(burst, events)
	for i := 0; i < 500; i++ {
		burst = append(burst, postEvent(today.Add(time.Duration(i)*time.Second), 0))
		burst = append(burst, likeEvent(today.Add(time.Duration(i)*time.Second)))
	}

	bursty, err := EngagementRateSeries(burst, Month)
	require.NoError(t, err)
	assert.Equal(t,
		base.Values[len(base.Values)-1],
		bursty.Values[len(bursty.Values)-1],
	)
}

func TestEngagementRateZeroDenominator(t *testing.T) {
	// Likes but no posts anywhere: every day's trailing post count is 0.
	events := []domain.Event{
		likeEvent(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		likeEvent(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	series, err := EngagementRateSeries(events, Month)
	require.NoError(t, err)
	for _, v := range series.Values {
		assert.Equal(t, 0.0, v)
	}
}

func TestEngagementRateNeverNegativeAndGapDaysEmitted(t *testing.T) {
	events := []domain.Event{
		postEvent(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0),
		likeEvent(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)),
	}

	series, err := EngagementRateSeries(events, Week)
	require.NoError(t, err)
	// Continuous daily labels including the empty gap days.
	assert.Len(t, series.Labels, 15)
	for _, v := range series.Values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestEngagementRateEmptyInput(t *testing.T) {
	series, err := EngagementRateSeries(nil, Day)
	require.NoError(t, err)
	assert.Empty(t, series.Labels)
}

func followerLike(ts time.Time, handle string) domain.Event {
	ev := likeEvent(ts)
	ev.ActorHandle = handle
	ev.IsFollower = true
	return ev
}

func TestEngagementScoreUniqueFollowersInWindow(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	events := []domain.Event{
		// Two distinct followers inside the window, one of them twice.
		followerLike(now.AddDate(0, 0, -1), "a.bsky.social"),
		followerLike(now.AddDate(0, 0, -2), "a.bsky.social"),
		followerLike(now.AddDate(0, 0, -10), "b.bsky.social"),
		// A follower outside the 90-day window.
		followerLike(now.AddDate(0, 0, -91), "c.bsky.social"),
		// A non-follower and a post event inside the window.
		likeEvent(now.AddDate(0, 0, -3)),
		postEvent(now.AddDate(0, 0, -3), 5),
	}

	// 2 unique engaging followers out of 10.
	assert.Equal(t, 20.0, EngagementScore(events, 10, now))
}

func TestEngagementScoreRoundsToNearestInteger(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		followerLike(now.AddDate(0, 0, -1), "a.bsky.social"),
	}

	// 1 of 3 is 33.33...%, rounded to 33.
	assert.Equal(t, 33.0, EngagementScore(events, 3, now))
	// 2 of 3 is 66.66...%, rounded to 67.
	events = append(events, followerLike(now.AddDate(0, 0, -2), "b.bsky.social"))
	assert.Equal(t, 67.0, EngagementScore(events, 3, now))
}

func TestEngagementScoreZeroFollowers(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		followerLike(now.AddDate(0, 0, -1), "a.bsky.social"),
	}

	assert.Equal(t, 0.0, EngagementScore(events, 0, now))
	assert.Equal(t, 0.0, EngagementScore(nil, 100, now))
}

func TestHourOfWeekDistributionNormalizes(t *testing.T) {
	// Monday 2024-06-03 09:00 UTC and Sunday 2024-06-09 23:00 UTC.
	events := []domain.Event{
		postEvent(time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), 0),
		postEvent(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC), 0),
		likeEvent(time.Date(2024, 6, 9, 23, 5, 0, 0, time.UTC)),
	}

	multi, err := HourOfWeekDistribution(events)
	require.NoError(t, err)
	require.Len(t, multi.Labels, 168)
	assert.Equal(t, "Mon 00", multi.Labels[0])
	assert.Equal(t, "Sun 23", multi.Labels[167])
	require.Len(t, multi.Datasets, 3)

	for _, ds := range multi.Datasets {
		require.Len(t, ds.Data, 168)
		var total float64
		for _, v := range ds.Data {
			total += v
		}
		switch ds.Label {
		case "post", "like":
			// Each type is an independent PMF summing to 1.
			assert.InDelta(t, 1.0, total, 1e-9, ds.Label)
		case "repost":
			// No reposts at all: all zeros, never NaN.
			assert.Equal(t, 0.0, total)
		}
	}

	for _, ds := range multi.Datasets {
		if ds.Label == "post" {
			assert.Equal(t, 1.0, ds.Data[9]) // both posts landed Monday 09
		}
		if ds.Label == "like" {
			assert.Equal(t, 1.0, ds.Data[167])
		}
	}
}
