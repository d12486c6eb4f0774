package analytics

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	ts := time.Date(2024, 2, 10, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		granularity Granularity
		want        string
	}{
		{Day, "2024-02-10"},
		{Week, "2024-W06"},
		{Month, "2024-02"},
		{Quarter, "2024-Q1"},
		{Year, "2024"},
		{Granularity("fortnight"), "2024-02"}, // unknown defaults to month
	}
	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			assert.Equal(t, tt.want, Bucket(ts, tt.granularity))
		})
	}
}

func TestBucketDeterministic(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	for _, g := range []Granularity{Day, Week, Month, Quarter, Year} {
		first := Bucket(ts, g)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Bucket(ts, g))
		}
	}
}

func TestBucketISOWeekYearBoundary(t *testing.T) {
	// 2023-01-01 is a Sunday and belongs to ISO week 52 of 2022.
	assert.Equal(t, "2022-W52", Bucket(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Week))
}

func TestBucketKeysSortChronologically(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, g := range []Granularity{Day, Week, Month, Quarter, Year} {
		keys := make([]string, len(times))
		for i, ts := range times {
			keys[i] = Bucket(ts, g)
		}
		assert.True(t, sort.StringsAreSorted(keys), "granularity %s: %v not chronological", g, keys)
	}
}

func TestBucketNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	local := time.Date(2024, 3, 1, 4, 0, 0, 0, loc) // 2024-02-29 18:00 UTC
	assert.Equal(t, "2024-02-29", Bucket(local, Day))
	assert.Equal(t, "2024-02", Bucket(local, Month))
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, Week, ParseGranularity("week"))
	assert.Equal(t, Month, ParseGranularity(""))
	assert.Equal(t, Month, ParseGranularity("hourly"))
}
