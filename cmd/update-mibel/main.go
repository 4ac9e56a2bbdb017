// update-mibel brings data/MIBEL_ano_atual_ACUM.csv up to date with the OMIE
// daily marginal price files and the live ACUM and INDICADORES feeds.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"time"

	"go.uber.org/zap"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/config"
	"mibel_prices/internal/fetch"
	"mibel_prices/internal/mibel"
	"mibel_prices/internal/model"
)

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

	if _, err := run(context.Background(), cfg, client, today, log); err != nil {
		log.Fatalw("updating MIBEL history", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, src mibel.Source, today time.Time, log *zap.SugaredLogger) (mibel.Result, error) {
	log.Info("--- Updating MIBEL history ---")

	u := &mibel.Updater{
		Source:          src,
		HistoryPath:     cfg.Path(cfg.Files.History),
		LegacyPath:      cfg.Path(cfg.Files.LegacyHistory),
		MarginalTimeout: cfg.MarginalTimeout,
		Log:             log,
	}
	res, err := u.Run(ctx, today)
	if err != nil {
		return res, err
	}

	log.Infow("MIBEL history updated",
		"history", res.History,
		"daily", res.Daily,
		"days", res.DaysFetched,
		"live", res.Live,
		"written", res.Written,
	)
	return res, nil
}
