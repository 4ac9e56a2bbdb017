// Package omiereport builds the yearly quarter-hour price table on the
// Portuguese clock, combining realised OMIE prices with an OMIP futures
// projection for the rest of the year.
package omiereport

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/cycles"
	"mibel_prices/internal/futures"
	"mibel_prices/internal/ingest"
	"mibel_prices/internal/model"
	"mibel_prices/internal/store"
)

// Row is one Portuguese quarter hour of the report.
type Row struct {
	model.QuarterHour
	Periods model.Periods
}

type Report struct {
	Year int
	Rows []Row
	// HistoryDate is the last realised market day.
	HistoryDate time.Time
	// OMIPDate is the futures report day, zero when unavailable.
	OMIPDate  time.Time
	FuturesPT []futures.TableRow
	FuturesES []futures.TableRow
}

type Builder struct {
	// Year overrides the report year; zero uses the year of the last
	// realised market day.
	Year int
	Log  *zap.SugaredLogger
}

// Build merges the history with the futures projection. The history must not
// be empty.
func (b *Builder) Build(history []model.PriceRecord, omip ingest.OMIPReport) (Report, error) {
	log := applog.OrNop(b.Log)

	s := store.New()
	s.Upsert(history)
	last, ok := s.LastDate()
	if !ok {
		return Report{}, fmt.Errorf("price history is empty")
	}

	year := b.Year
	if year == 0 {
		year = last.Year()
	}

	contracts := futures.Contracts(omip.Quotes, futures.ProductPT)
	proj := futures.NewProjection(year, s.DailyMeanPT(), contracts)
	log.Infof("Projection for %d-%d built from %d PT contracts", year, year+1, len(contracts))

	records := s.Records()
	end := model.NewDate(year+1, time.January, 1)
	future := 0
	for d := last.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		n := calendar.QuartersInDay(d)
		for p := 1; p <= n; p++ {
			records = append(records, model.PriceRecord{Date: d, Period: p, PricePT: model.Missing, PriceES: model.Missing})
		}
		future += n
	}
	log.Debugf("Added %d future quarter hours after %s", future, last.Format("2006-01-02"))

	for i := range records {
		if !model.IsMissing(records[i].PricePT) {
			continue
		}
		if v, ok := proj.Price(records[i].Date); ok {
			records[i].PricePT = v
		}
	}

	rep := Report{
		Year:        year,
		HistoryDate: last,
		OMIPDate:    omip.Date,
		FuturesPT:   futures.Table(omip.Quotes, futures.ProductPT, omip.Date),
		FuturesES:   futures.Table(omip.Quotes, futures.ProductES, omip.Date),
	}

	counts := make(map[int]int)
	for _, qh := range calendar.ToPortugal(records) {
		if y := qh.Start.Year(); y != year && y != year+1 {
			continue
		}
		if model.IsMissing(qh.PricePT) {
			continue
		}
		rep.Rows = append(rep.Rows, Row{QuarterHour: qh, Periods: cycles.Classify(qh.Start)})
		counts[model.DateKey(qh.Date)]++
	}

	for _, r := range rep.Rows {
		k := model.DateKey(r.Date)
		if n, ok := counts[k]; ok {
			if !calendar.ValidQuarterCount(n) {
				log.Warnf("Day %s has %d quarter hours", r.Date.Format("2006-01-02"), n)
			}
			delete(counts, k)
		}
	}

	log.Infof("%d quarter hours prepared on the Portuguese clock", len(rep.Rows))
	return rep, nil
}
