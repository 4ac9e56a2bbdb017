// omie-report writes data/omie_dados_atuais.csv: the realised MIBEL prices
// of the year on the Portuguese clock, completed with an OMIP futures
// projection, the tariff cycle of every quarter hour and the futures tables.
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
	"mibel_prices/internal/omiereport"
	"mibel_prices/internal/report"
)

type omipSource interface {
	OMIPDaily(ctx context.Context) ([]byte, error)
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dataDir := flag.String("data-dir", "", "data directory (overrides "+config.EnvDataDir+")")
	year := flag.Int("year", 0, "report year (default: year of the last history date)")
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

	client := fetch.New(cfg.URLs, cfg.HTTPTimeout)
	if err := run(context.Background(), cfg, client, *year, log); err != nil {
		log.Fatalw("building OMIE report", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, src omipSource, year int, log *zap.SugaredLogger) error {
	historyPath := cfg.Path(cfg.Files.History)
	log.Infof("Loading %s...", historyPath)
	history, err := ingest.ReadHistoryFile(historyPath)
	if err != nil {
		return fmt.Errorf("reading history (run update-mibel first): %w", err)
	}
	if len(history) == 0 {
		return fmt.Errorf("history %s is empty", historyPath)
	}

	omip := loadOMIP(ctx, src, log)

	b := &omiereport.Builder{Year: year, Log: log}
	rep, err := b.Build(history, omip)
	if err != nil {
		return err
	}

	out := cfg.Path(cfg.Files.OMIEReport)
	if err := report.WriteFile(out, func(w io.Writer) error {
		return report.WriteOMIEReport(w, rep)
	}); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Infof("wrote %d records to %s", len(rep.Rows), out)
	return nil
}

// loadOMIP returns an empty report when the futures workbook is unavailable.
func loadOMIP(ctx context.Context, src omipSource, log *zap.SugaredLogger) ingest.OMIPReport {
	body, err := src.OMIPDaily(ctx)
	if err != nil {
		log.Warnf("Downloading OMIP daily report failed: %v", err)
		return ingest.OMIPReport{}
	}
	omip, err := ingest.NewOMIPParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Warnf("Reading OMIP daily report failed: %v", err)
		return ingest.OMIPReport{}
	}
	if omip.Date.IsZero() {
		log.Warn("OMIP report date not found")
	}
	log.Infof("OMIP report: %d quotes", len(omip.Quotes))
	return omip
}
