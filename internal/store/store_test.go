package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibel_prices/internal/model"
)

func makeRecords(date time.Time, prices []float64) []model.PriceRecord {
	records := make([]model.PriceRecord, len(prices))
	for i, p := range prices {
		records[i] = model.PriceRecord{
			Date:    date,
			Period:  i + 1,
			PricePT: p,
			PriceES: p,
		}
	}
	return records
}

var (
	day1 = model.NewDate(2026, time.March, 9)
	day2 = model.NewDate(2026, time.March, 10)
	day3 = model.NewDate(2026, time.March, 11)
)

func TestStore_UpsertAndQuery(t *testing.T) {
	s := New()
	s.Upsert(makeRecords(day2, []float64{10, 20, 30}))
	s.Upsert(makeRecords(day1, []float64{1, 2}))

	assert.Equal(t, 5, s.Len())

	recs := s.Records()
	require.Len(t, recs, 5)
	assert.Equal(t, day1, recs[0].Date)
	assert.Equal(t, 1, recs[0].Period)
	assert.Equal(t, day2, recs[4].Date)
	assert.Equal(t, 3, recs[4].Period)
}

func TestStore_UpsertLastWriteWins(t *testing.T) {
	s := New()
	s.Upsert(makeRecords(day1, []float64{1, 2, 3}))
	s.Upsert([]model.PriceRecord{
		{Date: day1, Period: 2, PricePT: 200, PriceES: 201},
		{Date: day1, Period: 2, PricePT: 300, PriceES: 301},
	})

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.InDelta(t, 300.0, recs[1].PricePT, 0.001)
	assert.InDelta(t, 301.0, recs[1].PriceES, 0.001)
}

func TestStore_UpsertNormalisesDate(t *testing.T) {
	s := New()
	s.Upsert([]model.PriceRecord{{Date: time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC), Period: 1, PricePT: 1}})
	s.Upsert([]model.PriceRecord{{Date: day1, Period: 1, PricePT: 2}})

	require.Equal(t, 1, s.Len())
	assert.InDelta(t, 2.0, s.Records()[0].PricePT, 0.001)
}

func TestStore_Days(t *testing.T) {
	s := New()
	assert.Empty(t, s.Days(day1, day3))
	_, ok := s.LastDate()
	assert.False(t, ok)

	s.Upsert(makeRecords(day3, []float64{5, 6}))
	s.Upsert(makeRecords(day1, []float64{1, 2}))
	s.Upsert(makeRecords(day2, []float64{3, 4}))

	got := s.Days(day2, day3)
	require.Len(t, got, 4)
	assert.Equal(t, day2, got[0].Date)
	assert.InDelta(t, 3.0, got[0].PricePT, 0.001)
	assert.Equal(t, day3, got[3].Date)
	assert.Equal(t, 2, got[3].Period)

	// Time of day is ignored.
	assert.Len(t, s.Days(day1.Add(18*time.Hour), day1), 2)
	assert.Empty(t, s.Days(day3, day1))
	assert.Empty(t, s.Days(day3.AddDate(0, 0, 1), day3.AddDate(0, 0, 5)))

	last, ok := s.LastDate()
	require.True(t, ok)
	assert.Equal(t, day3, last)
}

func TestStore_DailyMeanPT(t *testing.T) {
	s := New()
	s.Upsert(makeRecords(day1, []float64{10, 20, model.Missing}))
	s.Upsert(makeRecords(day2, []float64{model.Missing}))

	means := s.DailyMeanPT()
	require.Len(t, means, 1)
	assert.InDelta(t, 15.0, means[model.DateKey(day1)], 0.001)
}
