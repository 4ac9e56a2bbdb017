// Package mibel keeps the local MIBEL quarter-hour price history up to date.
package mibel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/fetch"
	"mibel_prices/internal/ingest"
	"mibel_prices/internal/model"
	"mibel_prices/internal/report"
	"mibel_prices/internal/store"
)

// LiveSource serves the OMIE files covering the current year and the latest
// auction session.
type LiveSource interface {
	Acum(ctx context.Context) ([]byte, error)
	Indicadores(ctx context.Context) ([]byte, error)
}

// Source adds the per-day marginal price files.
type Source interface {
	LiveSource
	Marginal(ctx context.Context, day time.Time) ([]byte, error)
}

// Result summarises one update.
type Result struct {
	History  int
	Daily    int
	Live     int
	Written  int
	GapStart time.Time
	GapEnd   time.Time
	// DaysFetched counts marginal files accepted.
	DaysFetched int
}

type Updater struct {
	Source      Source
	HistoryPath string
	LegacyPath  string
	// MarginalTimeout bounds each marginal file request when positive.
	MarginalTimeout time.Duration
	Log             *zap.SugaredLogger
}

// Run merges the local history with the daily files missing up to today and
// with the live OMIE feeds, then rewrites the history file. Sources are
// merged in increasing priority: history, daily files, live feeds.
func (u *Updater) Run(ctx context.Context, today time.Time) (Result, error) {
	log := applog.OrNop(u.Log)
	today = model.DateOf(today)

	var res Result
	s := store.New()

	history := LoadHistory(u.HistoryPath, u.LegacyPath, log)
	res.History = len(history)
	s.Upsert(history)

	start := model.NewDate(today.Year(), time.January, 1)
	if last, ok := s.LastDate(); ok {
		start = last.AddDate(0, 0, 1)
		log.Infof("Last local date: %s, filling gap from %s", last.Format("2006-01-02"), start.Format("2006-01-02"))
	} else {
		log.Infof("Empty history, requesting daily files from %s", start.Format("2006-01-02"))
	}
	res.GapStart, res.GapEnd = start, today

	if start.After(today) {
		log.Info("Local history already up to date, skipping daily files")
	} else {
		daily, days, err := u.fetchDaily(ctx, start, today, log)
		if err != nil {
			return res, err
		}
		res.Daily, res.DaysFetched = len(daily), days
		s.Upsert(daily)
	}

	live := Live(ctx, u.Source, log)
	res.Live = len(live)
	s.Upsert(live)

	records := s.Records()
	if err := report.WriteFile(u.HistoryPath, func(w io.Writer) error {
		return report.WriteHistory(w, records)
	}); err != nil {
		return res, fmt.Errorf("writing history: %w", err)
	}
	res.Written = len(records)
	log.Infof("wrote %d records to %s", len(records), u.HistoryPath)

	return res, nil
}

func (u *Updater) fetchDaily(ctx context.Context, start, end time.Time, log *zap.SugaredLogger) ([]model.PriceRecord, int, error) {
	log.Infof("Checking daily marginal files for %d day(s)", int(end.Sub(start).Hours()/24)+1)

	var (
		out  []model.PriceRecord
		days int
	)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		label := d.Format("20060102")

		recs, err := u.fetchDay(ctx, d)
		if err != nil {
			if fetch.IsNotFound(err) {
				log.Warnf("Daily file %s.1 not found (404)", label)
			} else {
				log.Warnf("Daily file %s failed: %v", label, err)
			}
			continue
		}

		n := len(recs)
		if !calendar.ValidQuarterCount(n) {
			log.Warnf("Daily file %s does not look quarter-hourly (%d rows)", label, n)
			if n == 24 {
				log.Errorf("Daily file %s is hourly and cannot be mixed, skipping", label)
				continue
			}
		}
		log.Infof("Daily file %s: %d records", label, n)
		out = append(out, recs...)
		days++
	}
	return out, days, nil
}

func (u *Updater) fetchDay(ctx context.Context, day time.Time) ([]model.PriceRecord, error) {
	if u.MarginalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.MarginalTimeout)
		defer cancel()
	}
	get := func(ctx context.Context) ([]byte, error) { return u.Source.Marginal(ctx, day) }
	return fetchRecords(ctx, get, ingest.NewMarginalParser(day))
}

// LoadHistory reads the history CSV, migrating from the legacy spreadsheet
// when the CSV does not exist yet. Unreadable files yield an empty history.
func LoadHistory(path, legacyPath string, log *zap.SugaredLogger) []model.PriceRecord {
	log = applog.OrNop(log)

	records, err := ingest.ReadHistoryFile(path)
	if err == nil {
		log.Infof("Loaded %s (%d records)", path, len(records))
		return records
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Errorf("Reading history %s: %v", path, err)
		return nil
	}

	log.Infof("%s not found", path)
	if legacyPath == "" {
		return nil
	}
	log.Infof("Migrating from %s", legacyPath)
	records, err = ingest.ReadLegacyWorkbookFile(legacyPath)
	switch {
	case err == nil:
		log.Infof("Migrated %s (%d records)", legacyPath, len(records))
		return records
	case errors.Is(err, os.ErrNotExist):
		log.Infof("%s not found either, starting with an empty history", legacyPath)
	default:
		log.Errorf("Reading legacy history %s: %v", legacyPath, err)
	}
	return nil
}

// fetchRecords downloads one OMIE file and parses it with p.
func fetchRecords(ctx context.Context, get func(context.Context) ([]byte, error), p ingest.PriceParser) ([]model.PriceRecord, error) {
	body, err := get(ctx)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(body))
}

func fetchAcum(ctx context.Context, src LiveSource) ([]model.PriceRecord, error) {
	return fetchRecords(ctx, src.Acum, ingest.NewAcumParser())
}

func fetchIndicadores(ctx context.Context, src LiveSource) ([]model.PriceRecord, error) {
	return fetchRecords(ctx, src.Indicadores, ingest.NewIndicadoresParser())
}

// Live returns the ACUM records overridden by the INDICADORES records.
// Either source may fail; failures are logged.
func Live(ctx context.Context, src LiveSource, log *zap.SugaredLogger) []model.PriceRecord {
	log = applog.OrNop(log)
	s := store.New()

	acum, err := fetchAcum(ctx, src)
	if err != nil {
		log.Warnf("Reading ACUM failed: %v", err)
	} else {
		log.Infof("ACUM: %d records", len(acum))
		s.Upsert(acum)
	}

	ind, err := fetchIndicadores(ctx, src)
	if err != nil {
		log.Warnf("Reading INDICADORES failed: %v", err)
	} else {
		log.Infof("INDICADORES: %d records", len(ind))
		s.Upsert(ind)
	}

	if s.Len() == 0 {
		log.Warn("No live OMIE source returned data")
	}
	return s.Records()
}

// LatestMarket reads prices straight from the live feeds. The INDICADORES
// session is only used when it is newer than every ACUM day.
func LatestMarket(ctx context.Context, src LiveSource, log *zap.SugaredLogger) ([]model.PriceRecord, error) {
	log = applog.OrNop(log)
	s := store.New()

	acum, err := fetchAcum(ctx, src)
	if err != nil {
		log.Warnf("Reading ACUM failed: %v", err)
	}
	s.Upsert(acum)

	ind, err := fetchIndicadores(ctx, src)
	if err != nil {
		log.Warnf("Reading INDICADORES failed: %v", err)
	}
	if len(ind) > 0 {
		last, ok := s.LastDate()
		session := model.DateOf(ind[0].Date)
		if ok && !session.After(last) {
			log.Infof("INDICADORES session %s already covered by ACUM", session.Format("2006-01-02"))
		} else {
			s.Upsert(ind)
		}
	}

	if s.Len() == 0 {
		return nil, fmt.Errorf("no OMIE data from ACUM or INDICADORES")
	}
	return s.Records(), nil
}
