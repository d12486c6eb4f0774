package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupbiscuit/skydash/internal/domain"
)

func postEvent(ts time.Time, likes int) domain.Event {
	return domain.Event{
		Timestamp:     ts,
		Type:          domain.EventPost,
		PostURI:       "at://did:plc:me/app.bsky.feed.post/" + ts.Format("20060102150405"),
		PostTimestamp: ts,
		ActorHandle:   "me.bsky.social",
		LikeCount:     likes,
		EmbedType:     domain.EmbedImages,
	}
}

func TestAggregateSumByMonth(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 5),
		postEvent(time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC), 10),
		postEvent(time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC), 20),
	}

	series, err := Aggregate(rows, ColLikes, Sum, Month)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, series.Labels)
	assert.Equal(t, []float64{5, 30}, series.Values)
}

func TestAggregateMeanAndCount(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC), 10),
		postEvent(time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC), 20),
	}

	mean, err := Aggregate(rows, ColLikes, Mean, Month)
	require.NoError(t, err)
	assert.Equal(t, []float64{15}, mean.Values)

	count, err := Aggregate(rows, ColLikes, Count, Month)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, count.Values)
}

func TestAggregateEmptyInput(t *testing.T) {
	series, err := Aggregate(nil, ColLikes, Sum, Month)
	require.NoError(t, err)
	assert.Empty(t, series.Labels)
	assert.Empty(t, series.Values)
	assert.NotNil(t, series.Labels)
	assert.NotNil(t, series.Values)
}

func TestAggregateInputOrderIrrelevant(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 5),
		postEvent(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 10),
		postEvent(time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), 20),
	}
	reversed := []domain.Event{rows[2], rows[1], rows[0]}

	a, err := Aggregate(rows, ColLikes, Sum, Month)
	require.NoError(t, err)
	b, err := Aggregate(reversed, ColLikes, Sum, Month)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAggregateRejectsMalformedBatch(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 5),
		{Type: domain.EventPost}, // missing timestamp
	}

	_, err := Aggregate(rows, ColLikes, Sum, Month)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "timestamp", verr.Field)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 5),
		postEvent(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 10),
	}
	snapshot := make([]domain.Event, len(rows))
	copy(snapshot, rows)

	_, err := Aggregate(rows, ColLikes, Sum, Month)
	require.NoError(t, err)
	_, err = StackedAggregate(rows, Sum, Month)
	require.NoError(t, err)
	assert.Equal(t, snapshot, rows)
}

func TestStackedAggregateRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	ev := postEvent(ts, 7)
	ev.ReplyCount = 3
	ev.RepostCount = 2
	ev.QuoteCount = 1
	ev.BookmarkCount = 4
	other := postEvent(ts.Add(time.Hour), 1)

	multi, err := StackedAggregate([]domain.Event{ev, other}, Sum, Month)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-05"}, multi.Labels)
	require.Len(t, multi.Datasets, 5)

	var total float64
	for _, ds := range multi.Datasets {
		require.Len(t, ds.Data, 1)
		total += ds.Data[0]
	}
	// Sum across datasets equals the sum of the five raw columns.
	assert.Equal(t, float64(7+3+2+1+4+1), total)
}

func TestStackedAggregateStableStyleHints(t *testing.T) {
	ts := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	a, err := StackedAggregate([]domain.Event{postEvent(ts, 1)}, Sum, Month)
	require.NoError(t, err)
	b, err := StackedAggregate([]domain.Event{postEvent(ts.AddDate(0, 3, 0), 9)}, Count, Week)
	require.NoError(t, err)

	require.Len(t, b.Datasets, len(a.Datasets))
	for i := range a.Datasets {
		assert.Equal(t, a.Datasets[i].Label, b.Datasets[i].Label)
		assert.Equal(t, a.Datasets[i].StyleHint, b.Datasets[i].StyleHint)
		assert.NotEmpty(t, a.Datasets[i].StyleHint)
	}
}

func TestCategoricalAggregateGapFill(t *testing.T) {
	jan := postEvent(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 5)
	jan.EmbedType = domain.EmbedImages
	feb := postEvent(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 10)
	feb.EmbedType = domain.EmbedVideo
	rows := []domain.Event{jan, feb}

	multi, err := CategoricalAggregate(rows, ColLikes, Sum, CategoryEmbedType, Month)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, multi.Labels)
	require.Len(t, multi.Datasets, 2)

	// Every (cohort, category) pair exists; absent pairs are explicit zeros.
	byLabel := map[string][]float64{}
	for _, ds := range multi.Datasets {
		require.Len(t, ds.Data, len(multi.Labels))
		byLabel[ds.Label] = ds.Data
	}
	assert.Equal(t, []float64{5, 0}, byLabel["images"])
	assert.Equal(t, []float64{0, 10}, byLabel["video"])
}

func TestCategoricalAggregateLabelsMatchPlainAggregate(t *testing.T) {
	rows := []domain.Event{
		postEvent(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 5),
		postEvent(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 10),
		postEvent(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 2),
	}
	rows[1].EmbedType = domain.EmbedVideo
	rows[2].EmbedType = domain.EmbedOther

	plain, err := Aggregate(rows, ColLikes, Sum, Quarter)
	require.NoError(t, err)
	categorical, err := CategoricalAggregate(rows, ColLikes, Sum, CategoryEmbedType, Quarter)
	require.NoError(t, err)

	// Gap-filling never adds or removes cohorts, only categories within them.
	assert.Equal(t, plain.Labels, categorical.Labels)
}
