// Package config holds the settings shared by the batch jobs: where the data
// files live and where the remote sources are.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mibel_prices/internal/applog"
	"mibel_prices/internal/fetch"
)

const (
	EnvDataDir   = "MIBEL_DATA_DIR"
	EnvConfigURL = "MIBEL_CONFIG_URL"
)

// Files are the data file names, relative to DataDir.
type Files struct {
	History       string `yaml:"history"`
	LegacyHistory string `yaml:"legacy_history"`
	OMIEReport    string `yaml:"omie_report"`
	HourlyPrices  string `yaml:"hourly_prices"`
	Production    string `yaml:"production"`
}

type Config struct {
	DataDir     string        `yaml:"data_dir"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// MarginalTimeout bounds each daily marginal file request.
	MarginalTimeout time.Duration `yaml:"marginal_timeout"`
	Files           Files         `yaml:"files"`
	URLs            fetch.URLs    `yaml:"urls"`
}

func Default() Config {
	return Config{
		DataDir:         "data",
		HTTPTimeout:     20 * time.Second,
		MarginalTimeout: 10 * time.Second,
		Files: Files{
			History:       "MIBEL_ano_atual_ACUM.csv",
			LegacyHistory: "MIBEL_ano_atual_ACUM.xlsx",
			OMIEReport:    "omie_dados_atuais.csv",
			HourlyPrices:  "precos-horarios.csv",
			Production:    "producao_dados_atuais.csv",
		},
		URLs: fetch.DefaultURLs(),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvConfigURL); v != "" {
		c.URLs.TariffWorkbook = v
	}
}

// Path resolves a data file name against DataDir.
func (c Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// envKeys are the variables read from the environment or a .env file.
var envKeys = []string{EnvDataDir, EnvConfigURL}

// LoadDotEnv fills the known MIBEL_* variables from a KEY=VALUE file without
// overriding the existing environment, and logs where each one comes from.
// Other keys are ignored. A missing file leaves the environment untouched.
func LoadDotEnv(path string, log *zap.SugaredLogger) {
	log = applog.OrNop(log)

	file := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		for n, line := range strings.Split(string(data), "\n") {
			key, val, ok := envLine(line)
			if !ok {
				continue
			}
			if !slices.Contains(envKeys, key) {
				log.Debugf("%s:%d: ignoring %s", path, n+1, key)
				continue
			}
			file[key] = val
		}
	case !errors.Is(err, os.ErrNotExist):
		log.Warnf("Reading %s: %v", path, err)
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			log.Debugw("Setting", "key", key, "value", v, "source", "environment")
			continue
		}
		v, ok := file[key]
		if !ok {
			log.Debugw("Setting", "key", key, "source", "default")
			continue
		}
		if err := os.Setenv(key, v); err != nil {
			log.Warnf("Setting %s: %v", key, err)
			continue
		}
		log.Debugw("Setting", "key", key, "value", v, "source", path)
	}
}

// envLine splits "KEY=value", "export KEY=value" and quoted values.
// Blank lines and comments yield ok == false.
func envLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)
	if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
		val = val[1 : len(val)-1]
	}
	return key, val, key != ""
}

// ResolveFlag prefers an explicit flag value over the environment.
func ResolveFlag(flagVal, envKey string) string {
	if flagVal != "" {
		return flagVal
	}
	return os.Getenv(envKey)
}
