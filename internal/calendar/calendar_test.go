package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibel_prices/internal/model"
)

func TestQuartersInDay(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"spring forward", model.NewDate(2026, time.March, 29), 92},
		{"fall back", model.NewDate(2026, time.October, 25), 100},
		{"regular", model.NewDate(2026, time.June, 1), 96},
		{"new year", model.NewDate(2027, time.January, 1), 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuartersInDay(tt.date))
		})
	}
}

func TestMarketInstant(t *testing.T) {
	d := model.NewDate(2026, time.January, 15)

	assert.True(t, time.Date(2026, 1, 14, 23, 0, 0, 0, time.UTC).Equal(MarketInstant(d, 1)))
	assert.True(t, time.Date(2026, 1, 15, 22, 45, 0, 0, time.UTC).Equal(MarketInstant(d, 96)))

	// After the spring-forward gap period 9 starts at 03:00 CEST.
	spring := model.NewDate(2026, time.March, 29)
	assert.Equal(t, "03:00", MarketInstant(spring, 9).In(Madrid).Format("15:04"))
}

func TestToPortugal(t *testing.T) {
	d := model.NewDate(2026, time.January, 15)
	var recs []model.PriceRecord
	for p := 96; p >= 1; p-- {
		recs = append(recs, model.PriceRecord{Date: d, Period: p, PricePT: float64(p), PriceES: float64(p)})
	}

	got := ToPortugal(recs)
	require.Len(t, got, 96)

	// Madrid 00:00 is 23:00 of the previous day in Lisbon.
	first := got[0]
	assert.Equal(t, model.NewDate(2026, time.January, 14), first.Date)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, "23:00", first.Start.Format("15:04"))
	assert.InDelta(t, 1.0, first.PricePT, 1e-9)

	second := got[4]
	assert.Equal(t, model.NewDate(2026, time.January, 15), second.Date)
	assert.Equal(t, 1, second.Period)
	assert.InDelta(t, 5.0, second.PricePT, 1e-9)

	last := got[95]
	assert.Equal(t, 92, last.Period)
	assert.Equal(t, "22:45", last.Start.Format("15:04"))
}

func TestLastSunday(t *testing.T) {
	assert.Equal(t, model.NewDate(2026, time.March, 29), LastSunday(2026, time.March))
	assert.Equal(t, model.NewDate(2026, time.October, 25), LastSunday(2026, time.October))
	assert.Equal(t, model.NewDate(2025, time.March, 30), LastSunday(2025, time.March))
	assert.Equal(t, model.NewDate(2027, time.October, 31), LastSunday(2027, time.October))
}

func TestIsSummer(t *testing.T) {
	assert.False(t, IsSummer(model.NewDate(2026, time.March, 28)))
	assert.True(t, IsSummer(model.NewDate(2026, time.March, 29)))
	assert.True(t, IsSummer(model.NewDate(2026, time.October, 24)))
	assert.False(t, IsSummer(model.NewDate(2026, time.October, 25)))
	assert.False(t, IsSummer(model.NewDate(2026, time.December, 1)))
}

func TestIntervalAndEndLabel(t *testing.T) {
	ts := time.Date(2026, 5, 4, 10, 45, 0, 0, Lisbon)
	assert.Equal(t, "[10:45-11:00[", Interval(ts))
	assert.Equal(t, "11:00", EndLabel(ts))

	late := time.Date(2026, 5, 4, 23, 45, 0, 0, Lisbon)
	assert.Equal(t, "[23:45-00:00[", Interval(late))
	assert.Equal(t, "23:59", EndLabel(late))
}

func TestPortugalDayGrid(t *testing.T) {
	spring := PortugalDayGrid(model.NewDate(2026, time.March, 29))
	require.Len(t, spring, 92)
	assert.Equal(t, "00:45", spring[3].Format("15:04"))
	assert.Equal(t, "02:00", spring[4].Format("15:04"))

	autumn := PortugalDayGrid(model.NewDate(2026, time.October, 25))
	require.Len(t, autumn, 100)
	assert.Equal(t, "23:45", autumn[99].Format("15:04"))

	regular := PortugalDayGrid(model.NewDate(2026, time.July, 1))
	require.Len(t, regular, 96)
	assert.Equal(t, Lisbon, regular[0].Location())
}

func TestLocalize(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		got, ok := Localize(time.Date(2026, 7, 1, 12, 15, 0, 0, time.UTC), Madrid)
		require.True(t, ok)
		assert.True(t, time.Date(2026, 7, 1, 10, 15, 0, 0, time.UTC).Equal(got))
	})

	t.Run("gap shifts forward", func(t *testing.T) {
		got, ok := Localize(time.Date(2026, 3, 29, 2, 30, 0, 0, time.UTC), Madrid)
		require.True(t, ok)
		assert.True(t, time.Date(2026, 3, 29, 1, 0, 0, 0, time.UTC).Equal(got))
		assert.Equal(t, "03:00", got.In(Madrid).Format("15:04"))
	})

	t.Run("fold rejected", func(t *testing.T) {
		_, ok := Localize(time.Date(2026, 10, 25, 2, 30, 0, 0, time.UTC), Madrid)
		assert.False(t, ok)
	})

	t.Run("after fold", func(t *testing.T) {
		got, ok := Localize(time.Date(2026, 10, 25, 3, 0, 0, 0, time.UTC), Madrid)
		require.True(t, ok)
		assert.True(t, time.Date(2026, 10, 25, 2, 0, 0, 0, time.UTC).Equal(got))
	})
}

func TestValidQuarterCount(t *testing.T) {
	for _, n := range []int{92, 96, 100} {
		assert.True(t, ValidQuarterCount(n))
	}
	for _, n := range []int{0, 24, 95, 97} {
		assert.False(t, ValidQuarterCount(n))
	}
}
