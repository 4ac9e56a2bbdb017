// update-production writes data/producao_dados_atuais.csv with the REN
// production mix of the current year in the OMIE report layout.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"time"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/config"
	"mibel_prices/internal/fetch"
	"mibel_prices/internal/ingest"
	"mibel_prices/internal/model"
	"mibel_prices/internal/production"
	"mibel_prices/internal/report"
)

type renSource interface {
	RENProduction(ctx context.Context, start, end time.Time) ([]byte, error)
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	dataDir := flag.String("data-dir", "", "data directory (overrides "+config.EnvDataDir+")")
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
	today := model.DateOf(time.Now().In(calendar.Lisbon))
	if err := run(context.Background(), cfg, client, today, log); err != nil {
		log.Fatalw("updating production", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, src renSource, today time.Time, log *zap.SugaredLogger) error {
	start := model.NewDate(today.Year(), time.January, 1)
	log.Infof("Fetching REN production from %s to %s...", start.Format("2006-01-02"), today.Format("2006-01-02"))

	body, err := src.RENProduction(ctx, start, today)
	if err != nil {
		return fmt.Errorf("downloading REN production: %w", err)
	}
	table, err := ingest.NewRENParser().Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("reading REN production: %w", err)
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("REN returned no production rows")
	}

	t := production.Transform(table)

	out := cfg.Path(cfg.Files.Production)
	if err := report.WriteFile(out, func(w io.Writer) error {
		return report.WriteProduction(w, t)
	}); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Infof("wrote %d records to %s (%s to %s)", len(t.Rows), out, t.Rows[0][0], t.Rows[len(t.Rows)-1][0])
	return nil
}
