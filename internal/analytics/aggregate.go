package analytics

import (
	"sort"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// Reducer selects how grouped values are combined.
type Reducer string

const (
	Sum   Reducer = "sum"
	Mean  Reducer = "mean"
	Count Reducer = "count"
)

// ValueColumn names one of the engagement count columns of an Event.
type ValueColumn string

const (
	ColLikes     ValueColumn = "likes"
	ColReplies   ValueColumn = "replies"
	ColReposts   ValueColumn = "reposts"
	ColQuotes    ValueColumn = "quotes"
	ColBookmarks ValueColumn = "bookmarks"
)

// engagementColumns is the fixed column set used by StackedAggregate, in
// emission order.
var engagementColumns = []ValueColumn{ColLikes, ColReplies, ColReposts, ColQuotes, ColBookmarks}

// columnStyles gives each engagement column a stable color so the same
// column renders identically across every chart.
var columnStyles = map[ValueColumn]string{
	ColLikes:     "#3b82f6",
	ColReplies:   "#10b981",
	ColReposts:   "#f59e0b",
	ColQuotes:    "#8b5cf6",
	ColBookmarks: "#ef4444",
}

func (c ValueColumn) valueOf(ev domain.Event) float64 {
	switch c {
	case ColReplies:
		return float64(ev.ReplyCount)
	case ColReposts:
		return float64(ev.RepostCount)
	case ColQuotes:
		return float64(ev.QuoteCount)
	case ColBookmarks:
		return float64(ev.BookmarkCount)
	default:
		return float64(ev.LikeCount)
	}
}

// CategoryColumn names a categorical dimension of an Event.
type CategoryColumn string

const (
	CategoryEmbedType CategoryColumn = "embedType"
	CategoryEventType CategoryColumn = "type"
)

func (c CategoryColumn) valueOf(ev domain.Event) string {
	switch c {
	case CategoryEventType:
		return string(ev.Type)
	default:
		return string(ev.EmbedType)
	}
}

type accumulator struct {
	sum   float64
	count int
}

func (a accumulator) reduce(r Reducer) float64 {
	switch r {
	case Mean:
		if a.count == 0 {
			return 0
		}
		return a.sum / float64(a.count)
	case Count:
		return float64(a.count)
	default:
		return a.sum
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aggregate groups rows by cohort key and reduces the chosen value column.
// Labels come out in chronological order. Empty input yields an empty
// series, not an error.
func Aggregate(rows []domain.Event, value ValueColumn, reducer Reducer, g Granularity) (domain.Series, error) {
	if err := domain.ValidateEvents(rows); err != nil {
		return domain.EmptySeries(), err
	}

	groups := make(map[string]accumulator)
	for _, ev := range rows {
		key := Bucket(ev.Timestamp, g)
		acc := groups[key]
		acc.sum += value.valueOf(ev)
		acc.count++
		groups[key] = acc
	}

	series := domain.EmptySeries()
	for _, key := range sortedKeys(groups) {
		series.Labels = append(series.Labels, key)
		series.Values = append(series.Values, groups[key].reduce(reducer))
	}
	return series, nil
}

// StackedAggregate reduces all five engagement columns per cohort, one
// dataset per column, sharing a single label axis.
func StackedAggregate(rows []domain.Event, reducer Reducer, g Granularity) (domain.MultiSeries, error) {
	if err := domain.ValidateEvents(rows); err != nil {
		return domain.EmptyMultiSeries(), err
	}

	groups := make(map[string]map[ValueColumn]accumulator)
	for _, ev := range rows {
		key := Bucket(ev.Timestamp, g)
		if groups[key] == nil {
			groups[key] = make(map[ValueColumn]accumulator, len(engagementColumns))
		}
		for _, col := range engagementColumns {
			acc := groups[key][col]
			acc.sum += col.valueOf(ev)
			acc.count++
			groups[key][col] = acc
		}
	}

	multi := domain.EmptyMultiSeries()
	multi.Labels = sortedKeys(groups)
	for _, col := range engagementColumns {
		data := make([]float64, len(multi.Labels))
		for i, key := range multi.Labels {
			data[i] = groups[key][col].reduce(reducer)
		}
		multi.Datasets = append(multi.Datasets, domain.Dataset{
			Label:     string(col),
			Data:      data,
			StyleHint: columnStyles[col],
		})
	}
	return multi, nil
}

// CategoricalAggregate groups rows by (cohort, category) and reduces the
// chosen value column per pair. The output is built over the full
// cross-product of observed cohorts and observed categories: a pair with no
// rows contributes an explicit zero, so charts never compress gaps into
// adjacent points. The cohort label set is therefore identical to what a
// plain Aggregate over the same rows would emit.
func CategoricalAggregate(rows []domain.Event, value ValueColumn, reducer Reducer, category CategoryColumn, g Granularity) (domain.MultiSeries, error) {
	if err := domain.ValidateEvents(rows); err != nil {
		return domain.EmptyMultiSeries(), err
	}

	groups := make(map[string]map[string]accumulator)
	categories := make(map[string]struct{})
	for _, ev := range rows {
		key := Bucket(ev.Timestamp, g)
		cat := category.valueOf(ev)
		if groups[key] == nil {
			groups[key] = make(map[string]accumulator)
		}
		acc := groups[key][cat]
		acc.sum += value.valueOf(ev)
		acc.count++
		groups[key][cat] = acc
		categories[cat] = struct{}{}
	}

	multi := domain.EmptyMultiSeries()
	multi.Labels = sortedKeys(groups)
	for _, cat := range sortedKeys(categories) {
		data := make([]float64, len(multi.Labels))
		for i, key := range multi.Labels {
			// Absent pairs reduce the zero accumulator, which is 0 for every
			// reducer.
			data[i] = groups[key][cat].reduce(reducer)
		}
		multi.Datasets = append(multi.Datasets, domain.Dataset{Label: cat, Data: data})
	}
	return multi, nil
}
