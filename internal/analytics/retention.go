package analytics

import (
	"fmt"
	"math"

	"github.com/pupbiscuit/skydash/internal/domain"
)

const (
	// analysisWindowHours is how long after posting an engagement still
	// counts toward retention analysis.
	analysisWindowHours = 504 // 21 days

	// curveHours is the elapsed-hour range the emitted curves cover.
	curveHours = 168 // 7 days

	// comparedCohorts is how many of the most recent cohorts are emitted as
	// comparison series. Older cohorts are computed for ordering but not
	// returned; callers wanting full history need a different projection.
	comparedCohorts = 3
)

// RetentionCurves computes, per post cohort, the cumulative fraction of the
// cohort's posts that have received their first like by each elapsed hour
// after posting. Curves are defined at every integer hour 0..168
// (forward-filled: a gap means no new engagement, not missing data),
// non-decreasing, and bounded in [0, 1]. Likes with non-positive elapsed
// hours (data artifacts) or beyond the 21-day analysis window are discarded.
// Only the three most recent cohorts are emitted.
func RetentionCurves(likes []domain.Event, g Granularity) (domain.MultiSeries, error) {
	if err := domain.ValidateEvents(likes); err != nil {
		return domain.EmptyMultiSeries(), err
	}

	// Earliest valid elapsed hour per post, and each cohort's post set.
	firstLikeHour := make(map[string]int)
	cohortPosts := make(map[string]map[string]struct{})
	for _, like := range likes {
		cohort := Bucket(like.PostTimestamp, g)
		if cohortPosts[cohort] == nil {
			cohortPosts[cohort] = make(map[string]struct{})
		}
		cohortPosts[cohort][like.PostURI] = struct{}{}

		elapsed := int(math.Round(like.Timestamp.Sub(like.PostTimestamp).Hours()))
		if elapsed <= 0 || elapsed > analysisWindowHours {
			continue
		}
		if prev, ok := firstLikeHour[like.PostURI]; !ok || elapsed < prev {
			firstLikeHour[like.PostURI] = elapsed
		}
	}

	if len(cohortPosts) == 0 {
		return domain.EmptyMultiSeries(), nil
	}

	cohorts := sortedKeys(cohortPosts)
	if len(cohorts) > comparedCohorts {
		cohorts = cohorts[len(cohorts)-comparedCohorts:]
	}

	multi := domain.EmptyMultiSeries()
	for h := 0; h <= curveHours; h++ {
		multi.Labels = append(multi.Labels, fmt.Sprintf("%d", h))
	}
	for _, cohort := range cohorts {
		posts := cohortPosts[cohort]
		total := float64(len(posts))

		// Count of posts whose first like landed at each elapsed hour.
		firstAt := make([]float64, curveHours+1)
		for uri := range posts {
			if h, ok := firstLikeHour[uri]; ok && h <= curveHours {
				firstAt[h]++
			}
		}

		data := make([]float64, curveHours+1)
		var cumulative float64
		for h := 0; h <= curveHours; h++ {
			cumulative += firstAt[h]
			data[h] = cumulative / total
		}
		multi.Datasets = append(multi.Datasets, domain.Dataset{Label: cohort, Data: data})
	}
	return multi, nil
}
