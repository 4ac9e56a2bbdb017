package futures

import (
	"time"

	"mibel_prices/internal/model"
)

type monthKey struct {
	year  int
	month time.Month
}

type weekKey struct {
	year int
	week int
}

// Projection estimates the daily Portuguese price over two calendar years.
// A day uses its realised mean price when known, then the most specific
// futures contract covering it: day, week, month, quarter. Each contract
// level also covers the days before its first listed period, taking the
// price of the next period listed at that level.
type Projection struct {
	first time.Time
	daily []float64 // one entry per day from first
}

// NewProjection builds the projection for [Jan 1 year, Dec 31 year+1].
// Contracts with duplicate names keep the first occurrence.
func NewProjection(year int, realDaily map[int]float64, contracts []model.Contract) *Projection {
	day := make(map[int]float64)
	week := make(map[weekKey]float64)
	month := make(map[monthKey]float64)
	quarter := make(map[monthKey]float64)

	seen := make(map[string]bool, len(contracts))
	for _, c := range contracts {
		if seen[c.Name] || model.IsMissing(c.Price) {
			continue
		}
		seen[c.Name] = true

		switch c.Kind {
		case model.ContractDay:
			setFirst(day, model.DateKey(c.Start), c.Price)
		case model.ContractWeek:
			y, w := c.Start.ISOWeek()
			setFirst(week, weekKey{y, w}, c.Price)
		case model.ContractMonth:
			setFirst(month, monthKey{c.Start.Year(), c.Start.Month()}, c.Price)
		case model.ContractQuarter:
			setFirst(quarter, quarterOf(c.Start), c.Price)
		}
	}

	first := model.NewDate(year, time.January, 1)
	last := model.NewDate(year+1, time.December, 31)
	n := int(last.Sub(first).Hours()/24) + 1

	weekly := make([]float64, n)
	monthly := make([]float64, n)
	quarterly := make([]float64, n)
	for i := range n {
		d := first.AddDate(0, 0, i)
		y, w := d.ISOWeek()
		weekly[i] = lookup(week, weekKey{y, w})
		monthly[i] = lookup(month, monthKey{d.Year(), d.Month()})
		quarterly[i] = lookup(quarter, quarterOf(d))
	}
	backfill(weekly)
	backfill(monthly)
	backfill(quarterly)

	p := &Projection{first: first, daily: make([]float64, n)}
	for i := range n {
		k := model.DateKey(first.AddDate(0, 0, i))
		p.daily[i] = coalesce(
			lookup(realDaily, k),
			lookup(day, k),
			weekly[i],
			monthly[i],
			quarterly[i],
		)
	}
	return p
}

func setFirst[K comparable](m map[K]float64, k K, v float64) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}

func lookup[K comparable](m map[K]float64, k K) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	return model.Missing
}

// backfill gives every missing entry the next known value.
func backfill(vs []float64) {
	next := model.Missing
	for i := len(vs) - 1; i >= 0; i-- {
		if model.IsMissing(vs[i]) {
			vs[i] = next
		} else {
			next = vs[i]
		}
	}
}

func coalesce(vs ...float64) float64 {
	for _, v := range vs {
		if !model.IsMissing(v) {
			return v
		}
	}
	return model.Missing
}

func quarterOf(d time.Time) monthKey {
	m := time.Month((int(d.Month())-1)/3*3 + 1)
	return monthKey{d.Year(), m}
}

// Price returns the projected daily price for a civil date, or false when
// the date is outside the projection or nothing covers it.
func (p *Projection) Price(date time.Time) (float64, bool) {
	d := model.DateOf(date)
	if d.Before(p.first) {
		return model.Missing, false
	}
	i := int(d.Sub(p.first).Hours() / 24)
	if i >= len(p.daily) || model.IsMissing(p.daily[i]) {
		return model.Missing, false
	}
	return p.daily[i], true
}
