// Package calendar places Iberian market periods on the Spanish and
// Portuguese clocks.
package calendar

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"

	"mibel_prices/internal/model"
)

const Quarter = 15 * time.Minute

var (
	Madrid = mustLoad("Europe/Madrid")
	Lisbon = mustLoad("Europe/Lisbon")
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading time zone %s: %v", name, err))
	}
	return loc
}

// Midnight returns the first instant of the civil date in loc.
func Midnight(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// QuartersInDay returns the number of market periods of a Madrid day:
// 92 when clocks go forward, 100 when they go back, 96 otherwise.
func QuartersInDay(date time.Time) int {
	start := Midnight(date, Madrid)
	end := Midnight(date.AddDate(0, 0, 1), Madrid)
	return int(end.Sub(start) / Quarter)
}

// ValidQuarterCount reports whether n is a possible number of quarter hours
// in a day.
func ValidQuarterCount(n int) bool {
	return n == 92 || n == 96 || n == 100
}

// MarketInstant returns the absolute start of a market period.
func MarketInstant(date time.Time, period int) time.Time {
	return Midnight(date, Madrid).Add(time.Duration(period-1) * Quarter)
}

// ToPortugal moves market records onto the Lisbon clock. Records are ordered
// by instant and renumbered within each Portuguese civil date.
func ToPortugal(records []model.PriceRecord) []model.QuarterHour {
	out := make([]model.QuarterHour, 0, len(records))
	for _, r := range records {
		start := MarketInstant(r.Date, r.Period).In(Lisbon)
		out = append(out, model.QuarterHour{
			Start:   start,
			Date:    model.DateOf(start),
			PricePT: r.PricePT,
			PriceES: r.PriceES,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	var day time.Time
	n := 0
	for i := range out {
		if !out[i].Date.Equal(day) {
			day = out[i].Date
			n = 0
		}
		n++
		out[i].Period = n
	}
	return out
}

// LastSunday returns the civil date of the last Sunday of the month.
func LastSunday(year int, month time.Month) time.Time {
	d := model.NewDate(year, month+1, 0)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// IsSummer reports whether the civil date falls in the Portuguese summer
// tariff season.
func IsSummer(date time.Time) bool {
	d := model.DateOf(date)
	start := LastSunday(d.Year(), time.March)
	end := LastSunday(d.Year(), time.October)
	return !d.Before(start) && d.Before(end)
}

// Interval formats a quarter hour as "[HH:MM-HH:MM[" on start's clock.
func Interval(start time.Time) string {
	end := start.Add(Quarter)
	return "[" + start.Format("15:04") + "-" + end.Format("15:04") + "["
}

// EndLabel returns the end time of a quarter hour, using 23:59 for midnight.
func EndLabel(start time.Time) string {
	s := start.Add(Quarter).Format("15:04")
	if s == "00:00" {
		return "23:59"
	}
	return s
}

// PortugalDayGrid returns the quarter-hour starts of a Portuguese day.
func PortugalDayGrid(date time.Time) []time.Time {
	n := 96
	d := model.DateOf(date)
	switch {
	case d.Equal(LastSunday(d.Year(), time.October)):
		n = 100
	case d.Equal(LastSunday(d.Year(), time.March)):
		n = 92
	}

	start := Midnight(d, Lisbon)
	grid := make([]time.Time, n)
	for i := range grid {
		grid[i] = start.Add(time.Duration(i) * Quarter)
	}
	return grid
}

// Localize interprets a wall-clock reading in loc. Readings that fall in a
// spring-forward gap move to the transition instant; readings that occur
// twice in an autumn fold are rejected.
func Localize(wall time.Time, loc *time.Location) (time.Time, bool) {
	y, mo, d := wall.Date()
	h, mi, s := wall.Clock()
	t := time.Date(y, mo, d, h, mi, s, wall.Nanosecond(), loc)

	if !sameWall(t, wall) {
		start, end := t.ZoneBounds()
		if wallAfter(t, wall) {
			return start, true
		}
		return end, true
	}

	_, off := t.Zone()
	start, end := t.ZoneBounds()
	if !start.IsZero() {
		_, prev := start.Add(-time.Second).Zone()
		alt := t.Add(time.Duration(off-prev) * time.Second)
		if alt.Before(start) && sameWall(alt.In(loc), wall) {
			return time.Time{}, false
		}
	}
	if !end.IsZero() {
		_, next := end.Zone()
		alt := t.Add(time.Duration(off-next) * time.Second)
		if !alt.Before(end) && sameWall(alt.In(loc), wall) {
			return time.Time{}, false
		}
	}
	return t, true
}

func wallOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

func sameWall(t, wall time.Time) bool {
	return wallOf(t).Equal(wallOf(wall))
}

func wallAfter(t, wall time.Time) bool {
	return wallOf(t).After(wallOf(wall))
}
