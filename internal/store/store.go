package store

import (
	"sort"
	"sync"
	"time"

	"mibel_prices/internal/model"
)

// Store holds market price records in memory, one per (date, period).
type Store struct {
	mu      sync.RWMutex
	index   map[model.Key]int
	records []model.PriceRecord // sorted by date, period after each upsert
}

func New() *Store {
	return &Store{
		index: make(map[model.Key]int),
	}
}

// Upsert adds records, replacing any existing record with the same date and
// period. Within one call later records win, so callers merge sources in
// increasing priority.
func (s *Store) Upsert(records []model.PriceRecord) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		r.Date = model.DateOf(r.Date)
		k := r.Key()
		if i, ok := s.index[k]; ok {
			s.records[i] = r
			continue
		}
		s.index[k] = len(s.records)
		s.records = append(s.records, r)
	}

	sort.Slice(s.records, func(i, j int) bool {
		return less(s.records[i], s.records[j])
	})
	for i, r := range s.records {
		s.index[r.Key()] = i
	}
}

func less(a, b model.PriceRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Period < b.Period
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns all records ordered by date and period.
func (s *Store) Records() []model.PriceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PriceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// LastDate returns the latest market date held.
func (s *Store) LastDate() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return time.Time{}, false
	}
	return s.records[len(s.records)-1].Date, true
}

// Days returns the records of the market dates from first to last, both
// included.
func (s *Store) Days(first, last time.Time) []model.PriceRecord {
	from, to := model.DateKey(first), model.DateKey(last)
	if from > to {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.records), func(i int) bool {
		return model.DateKey(s.records[i].Date) >= from
	})
	hi := sort.Search(len(s.records), func(i int) bool {
		return model.DateKey(s.records[i].Date) > to
	})
	return append([]model.PriceRecord(nil), s.records[lo:hi]...)
}

// DailyMeanPT returns the mean Portuguese price per market date, keyed by
// model.DateKey. Missing prices are skipped; days with none are omitted.
func (s *Store) DailyMeanPT() map[int]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range s.records {
		if model.IsMissing(r.PricePT) {
			continue
		}
		k := model.DateKey(r.Date)
		sums[k] += r.PricePT
		counts[k]++
	}

	means := make(map[int]float64, len(sums))
	for k, sum := range sums {
		means[k] = sum / float64(counts[k])
	}
	return means
}
