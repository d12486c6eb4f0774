package domain

// Series is a single chart-ready label/value sequence. Labels are cohort
// keys in chronological order with no duplicates, and Values always has the
// same length as Labels.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// EmptySeries returns a Series with non-nil zero-length slices so it
// serializes as empty arrays rather than nulls.
func EmptySeries() Series {
	return Series{Labels: []string{}, Values: []float64{}}
}

// Dataset is one named value sequence inside a MultiSeries, aligned to the
// parent's labels.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`

	// StyleHint is a stable presentation hint (a color) carried so the same
	// column renders identically across charts. The presentation layer may
	// ignore it.
	StyleHint string `json:"styleHint,omitempty"`
}

// MultiSeries is a chart-ready structure with several datasets sharing one
// label axis. Every dataset's Data has the same length as Labels; missing
// combinations are zero-filled, never omitted.
type MultiSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// EmptyMultiSeries returns a MultiSeries with non-nil zero-length slices.
func EmptyMultiSeries() MultiSeries {
	return MultiSeries{Labels: []string{}, Datasets: []Dataset{}}
}
