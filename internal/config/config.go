// Package config loads application configuration from a YAML file with
// environment variable overrides. A .env file in the working directory is
// honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quantlab/internal/engine"
)

// Config holds all application configuration.
type Config struct {
	Backtest struct {
		InitialCapital  float64 `yaml:"initial_capital"`
		Commission      float64 `yaml:"commission"`
		Slippage        float64 `yaml:"slippage"`
		PositionSizePct float64 `yaml:"position_size_pct"`
		RiskFreeRate    float64 `yaml:"risk_free_rate"`
	} `yaml:"backtest"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Results struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"results"`
	Data struct {
		CSVDir string `yaml:"csv_dir"`
		Proxy  string `yaml:"proxy"`
	} `yaml:"data"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; everything has a default
// except the database URL, which is only needed for the db source.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RESULTS_SQLITE_PATH"); v != "" {
		cfg.Results.SQLitePath = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		cfg.Data.CSVDir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Data.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialCapital = f
		}
	}

	// Defaults
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 10_000
	}
	if cfg.Backtest.Commission == 0 {
		cfg.Backtest.Commission = 0.001
	}
	if cfg.Backtest.PositionSizePct == 0 {
		cfg.Backtest.PositionSizePct = 1.0
	}
	if cfg.Backtest.RiskFreeRate == 0 {
		cfg.Backtest.RiskFreeRate = 0.02
	}
	if cfg.Results.SQLitePath == "" {
		cfg.Results.SQLitePath = "data/runs.db"
	}
	if cfg.Data.CSVDir == "" {
		cfg.Data.CSVDir = "data/candles"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	return cfg, nil
}

// SimConfig builds the engine configuration from the backtest section.
func (c *Config) SimConfig() engine.SimConfig {
	return engine.NewSimConfig(
		c.Backtest.InitialCapital,
		c.Backtest.Commission,
		c.Backtest.Slippage,
		c.Backtest.PositionSizePct,
		c.Backtest.RiskFreeRate,
	)
}
