package tariff

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/model"
)

// DefaultLosses applies when the workbook has no loss factor for a quarter
// hour.
const DefaultLosses = 1.04

// Row is one quarter-hour price of a retailer option. Prices are in €/kWh
// and Missing when the market price is unknown.
type Row struct {
	Day      time.Time // Lisbon civil date
	Start    time.Time
	Retailer string
	Option   string
	Interval string
	Value    float64
	OMIE     float64
	TAR      float64
	OMIETar  float64
}

// HourlyRow averages the quarter hours of one clock hour.
type HourlyRow struct {
	Day      time.Time
	Retailer string
	Option   string
	Hour     int
	Label    string
	OMIE     float64 // €/kWh
	Value    float64
}

type Engine struct {
	Constants  model.Constants
	LossCycles []model.LossCycle
	Log        *zap.SugaredLogger
}

func round5(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 5, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// QuarterHourly prices every Portuguese quarter hour of the given days for
// each retailer and option. prices are market records keyed by Madrid day
// and period; only PricePT is used. Quarter hours without a market price are
// still listed, with Missing values.
func (e *Engine) QuarterHourly(prices []model.PriceRecord, days []time.Time) []Row {
	log := applog.OrNop(e.Log)

	market := make(map[int64]float64, len(prices))
	for _, r := range prices {
		market[calendar.MarketInstant(r.Date, r.Period).Unix()] = r.PricePT
	}

	config := make(map[int64]model.LossCycle, len(e.LossCycles))
	for _, lc := range e.LossCycles {
		k := lc.Start.Unix()
		if _, ok := config[k]; !ok {
			config[k] = lc
		}
	}

	var rows []Row
	seen := make(map[int]bool)
	for _, day := range days {
		if seen[model.DateKey(day)] {
			continue
		}
		seen[model.DateKey(day)] = true

		for _, start := range calendar.PortugalDayGrid(day) {
			lc, hasConfig := config[start.Unix()]
			losses := lc.Losses
			if !hasConfig || model.IsMissing(losses) {
				losses = DefaultLosses
			}

			price, ok := market[start.Unix()]
			if !ok {
				price = model.Missing
			}
			rows = append(rows, e.quarter(start, price, losses, lc)...)
		}
	}

	sortRows(rows)
	log.Infof("Quarter-hour prices computed: %d rows", len(rows))
	return rows
}

func (e *Engine) quarter(start time.Time, price, losses float64, lc model.LossCycle) []Row {
	day := model.DateOf(start)
	interval := calendar.Interval(start)
	omie := price / 1000

	var rows []Row
	for _, retailer := range Retailers {
		var retail float64
		if !model.IsMissing(price) {
			retail = RetailerPrice(retailer, omie, losses, e.Constants)
		}

		for _, ch := range choices(retailer, lc) {
			row := Row{
				Day:      day,
				Start:    start,
				Retailer: retailer,
				Option:   ch.option,
				Interval: interval,
				Value:    model.Missing,
				OMIE:     model.Missing,
				TAR:      model.Missing,
				OMIETar:  model.Missing,
			}
			if !model.IsMissing(price) {
				tar := e.Constants.Get(ch.tarKey, 0)
				row.Value = round5(retail + tar)
				row.OMIE = round5(omie)
				row.TAR = round5(tar)
				row.OMIETar = round5(omie*losses + tar)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// sortRows orders by retailer, most recent day first, option and interval.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Retailer != b.Retailer {
			return a.Retailer < b.Retailer
		}
		if !a.Day.Equal(b.Day) {
			return a.Day.After(b.Day)
		}
		if oa, ob := OptionOrder(a.Option), OptionOrder(b.Option); oa != ob {
			return oa < ob
		}
		return a.Interval < b.Interval
	})
}

type hourKey struct {
	day      int
	retailer string
	option   string
	hour     int
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	if model.IsMissing(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return model.Missing
	}
	return m.sum / float64(m.n)
}

// Hourly averages quarter-hour rows per day, retailer, option and starting
// hour of the interval.
func Hourly(rows []Row) []HourlyRow {
	type acc struct {
		row         HourlyRow
		omie, value mean
	}
	groups := make(map[hourKey]*acc)
	var order []hourKey

	for _, r := range rows {
		h := r.Start.Hour()
		k := hourKey{model.DateKey(r.Day), r.Retailer, r.Option, h}
		g, ok := groups[k]
		if !ok {
			g = &acc{row: HourlyRow{
				Day:      r.Day,
				Retailer: r.Retailer,
				Option:   r.Option,
				Hour:     h,
				Label:    fmt.Sprintf("[%02d:00-%02d:00[", h, (h+1)%24),
			}}
			groups[k] = g
			order = append(order, k)
		}
		g.omie.add(r.OMIE)
		g.value.add(r.Value)
	}

	out := make([]HourlyRow, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.row.OMIE = g.omie.value()
		g.row.Value = g.value.value()
		out = append(out, g.row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Retailer != b.Retailer {
			return a.Retailer < b.Retailer
		}
		if !a.Day.Equal(b.Day) {
			return a.Day.After(b.Day)
		}
		if oa, ob := OptionOrder(a.Option), OptionOrder(b.Option); oa != ob {
			return oa < ob
		}
		return a.Hour < b.Hour
	})
	return out
}

// Since drops rows before the given civil date.
func Since(rows []Row, day time.Time) []Row {
	day = model.DateOf(day)
	var out []Row
	for _, r := range rows {
		if !r.Day.Before(day) {
			out = append(out, r)
		}
	}
	return out
}

// HourlySince drops hourly rows before the given civil date.
func HourlySince(rows []HourlyRow, day time.Time) []HourlyRow {
	day = model.DateOf(day)
	var out []HourlyRow
	for _, r := range rows {
		if !r.Day.Before(day) {
			out = append(out, r)
		}
	}
	return out
}

// MarketDays returns the distinct market dates of prices in ascending order.
func MarketDays(prices []model.PriceRecord) []time.Time {
	seen := make(map[int]bool)
	var days []time.Time
	for _, r := range prices {
		k := model.DateKey(r.Date)
		if seen[k] {
			continue
		}
		seen[k] = true
		days = append(days, model.DateOf(r.Date))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
