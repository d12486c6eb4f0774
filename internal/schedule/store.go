package schedule

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var csvHeader = []string{"id", "path", "text", "date", "status"}

// Store persists the schedule as delimited rows at a fixed path. All
// mutations rebuild the table through Build, so dates and statuses stay
// consistent no matter which endpoint touched it last.
type Store struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a Store backed by the CSV file at path. The file is
// created on first save.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Load reads the schedule. A missing file is an empty schedule, not an
// error.
func (s *Store) Load() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Item, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == csvHeader[0] {
			continue
		}
		if len(row) < len(csvHeader) {
			return nil, fmt.Errorf("schedule row %d: expected %d columns, got %d", i+1, len(csvHeader), len(row))
		}

		var date time.Time
		if row[3] != "" {
			date, err = time.Parse(time.RFC3339, row[3])
			if err != nil {
				return nil, fmt.Errorf("schedule row %d: invalid date %q: %w", i+1, row[3], err)
			}
		}

		items = append(items, Item{
			ID:     row[0],
			Path:   row[1],
			Text:   row[2],
			Date:   date,
			Status: row[4],
		})
	}
	return items, nil
}

// Save rebuilds the schedule (slot assignment + status derivation) and
// writes it out.
func (s *Store) Save(items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(items)
}

func (s *Store) save(items []Item) error {
	items = Build(items, s.now())

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write schedule header: %w", err)
	}
	for _, item := range items {
		row := []string{item.ID, item.Path, item.Text, item.Date.UTC().Format(time.RFC3339), item.Status}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write schedule row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush schedule: %w", err)
	}
	return nil
}

// Add appends a new unscheduled item; Save assigns it the next free slot.
// Returns the saved item with its generated ID and date.
func (s *Store) Add(path, text string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return Item{}, err
	}
	items = append(items, Item{ID: uuid.NewString(), Path: path, Text: text})
	if err := s.save(items); err != nil {
		return Item{}, err
	}

	saved, err := s.load()
	if err != nil {
		return Item{}, err
	}
	return saved[len(saved)-1], nil
}

// Remove deletes the item with the given ID. Removing an unknown ID is a
// no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return s.save(kept)
}

// Reorder rearranges the queue into the given ID order and redistributes
// the existing publish slots across it, earliest slot first. IDs not in the
// schedule are ignored; items missing from ids keep their relative order at
// the end.
func (s *Store) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	byID := make(map[string]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	reordered := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			reordered = append(reordered, item)
			seen[id] = struct{}{}
		}
	}
	for _, item := range items {
		if _, ok := seen[item.ID]; !ok {
			reordered = append(reordered, item)
		}
	}

	// The queue's slots stay what they were; only their assignment to items
	// changes.
	dates := make([]time.Time, 0, len(reordered))
	for _, item := range reordered {
		if !item.Date.IsZero() {
			dates = append(dates, item.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i := range reordered {
		if i < len(dates) {
			reordered[i].Date = dates[i]
		} else {
			reordered[i].Date = time.Time{}
		}
	}

	return s.save(reordered)
}

// Due returns the scheduled items whose publish date has arrived, in date
// order.
func (s *Store) Due(now time.Time) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	var due []Item
	for _, item := range items {
		if !item.Date.IsZero() && !item.Date.After(now) {
			due = append(due, item)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Date.Before(due[j].Date) })
	return due, nil
}
