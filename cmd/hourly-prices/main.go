// hourly-prices writes data/precos-horarios.csv with the quarter-hour and
// hourly energy prices of the Portuguese indexed tariffs for the last two
// market days.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/config"
	"mibel_prices/internal/fetch"
	"mibel_prices/internal/ingest"
	"mibel_prices/internal/mibel"
	"mibel_prices/internal/model"
	"mibel_prices/internal/report"
	"mibel_prices/internal/store"
	"mibel_prices/internal/tariff"
)

type source interface {
	mibel.LiveSource
	TariffWorkbook(ctx context.Context) ([]byte, error)
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dataDir := flag.String("data-dir", "", "data directory (overrides "+config.EnvDataDir+")")
	workbook := flag.String("workbook-url", "", "tariff workbook URL (overrides "+config.EnvConfigURL+")")
	live := flag.Bool("live", false, "read prices from the OMIE live feeds instead of the history file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log, err := applog.New(*verbose)
	if err != nil {
		stdlog.Fatalf("creating logger: %v", err)
	}
	defer log.Sync()
	config.LoadDotEnv(".env", log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("loading config", "error", err)
	}
	if d := config.ResolveFlag(*dataDir, config.EnvDataDir); d != "" {
		cfg.DataDir = d
	}
	if u := config.ResolveFlag(*workbook, config.EnvConfigURL); u != "" {
		cfg.URLs.TariffWorkbook = u
	}

	client := fetch.New(cfg.URLs, cfg.HTTPTimeout)
	if err := run(context.Background(), cfg, client, *live, log); err != nil {
		log.Fatalw("building hourly prices", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, src source, live bool, log *zap.SugaredLogger) error {
	prices, err := loadPrices(ctx, cfg, src, live, log)
	if err != nil {
		return err
	}

	s := store.New()
	s.Upsert(prices)
	last, ok := s.LastDate()
	if !ok {
		return fmt.Errorf("no OMIE prices available")
	}
	prev := last.AddDate(0, 0, -1)
	prices = s.Days(prev, last)
	log.Infof("Using prices of %s and %s (%d records)", prev.Format("2006-01-02"), last.Format("2006-01-02"), len(prices))

	body, err := src.TariffWorkbook(ctx)
	if err != nil {
		return fmt.Errorf("downloading tariff workbook: %w", err)
	}
	tc, err := ingest.NewTariffWorkbookParser().Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("reading tariff workbook: %w", err)
	}
	log.Infof("Tariff workbook: %d constants, %d cycle rows", len(tc.Constants.List()), len(tc.LossCycles))

	e := &tariff.Engine{Constants: tc.Constants, LossCycles: tc.LossCycles, Log: log}
	quarters := e.QuarterHourly(prices, tariff.MarketDays(prices))
	hourly := tariff.Hourly(quarters)

	quarters = tariff.Since(quarters, prev)
	hourly = tariff.HourlySince(hourly, prev)

	out := cfg.Path(cfg.Files.HourlyPrices)
	if err := report.WriteFile(out, func(w io.Writer) error {
		return report.WriteHourlyPrices(w, quarters, hourly, tariff.UsedConstants(tc.Constants))
	}); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Infof("wrote %d quarter-hour and %d hourly rows to %s", len(quarters), len(hourly), out)
	return nil
}

func loadPrices(ctx context.Context, cfg config.Config, src source, live bool, log *zap.SugaredLogger) ([]model.PriceRecord, error) {
	if live {
		log.Info("Reading prices from the OMIE live feeds")
		return mibel.LatestMarket(ctx, src, log)
	}

	path := cfg.Path(cfg.Files.History)
	log.Infof("Loading %s...", path)
	prices, err := ingest.ReadHistoryFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history (run update-mibel first): %w", err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("history %s is empty", path)
	}
	return prices, nil
}
