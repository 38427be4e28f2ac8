// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/larachristiea/bumerangue/internal/logger"
)

// Config encapsulates all runtime knobs.
type Config struct {
	// Paths to the reference tables. RegimeTablePath is optional; when
	// empty the run degrades to CST-only classification.
	RegimeTablePath  string
	BracketTablePath string
	IndexSeriesPath  string
	FilingsPath      string

	// RateSource selects bracket-derived or filing-declared effective
	// rates. Valid values: "bracket" (default), "filing".
	RateSource string

	// ConsistencyTolerance bounds accepted drift when cross-checking
	// aggregated totals against declared ones.
	ConsistencyTolerance decimal.Decimal

	// PISProportion and COFINSProportion split the unified rate.
	PISProportion    decimal.Decimal
	COFINSProportion decimal.Decimal

	// Workers is the parse worker pool size.
	Workers int

	// HTTPPort is the port the API server binds to.
	HTTPPort int

	Log logger.Config
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RegimeTablePath:      os.Getenv("REGIME_TABLE_PATH"),
		BracketTablePath:     os.Getenv("BRACKET_TABLE_PATH"),
		IndexSeriesPath:      os.Getenv("INDEX_SERIES_PATH"),
		FilingsPath:          os.Getenv("FILINGS_PATH"),
		RateSource:           getEnv("RATE_SOURCE", "bracket"),
		ConsistencyTolerance: getEnvDecimal("CONSISTENCY_TOLERANCE", "0.01"),
		PISProportion:        getEnvDecimal("PIS_PROPORTION", "0.0276"),
		COFINSProportion:     getEnvDecimal("COFINS_PROPORTION", "0.1274"),
		Workers:              getEnvInt("WORKERS", 4),
		HTTPPort:             getEnvInt("HTTP_PORT", 8080),
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RateSource {
	case "bracket", "filing":
	default:
		return fmt.Errorf("invalid RATE_SOURCE %q: expected bracket or filing", c.RateSource)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.ConsistencyTolerance.IsNegative() {
		return fmt.Errorf("CONSISTENCY_TOLERANCE must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.RequireFromString(fallback)
	}
	return d
}
