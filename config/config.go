// Package config loads tbk settings from a YAML file, a .env file and the
// environment, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "tradebook.yaml"

// Config holds application configuration
type Config struct {
	HomeCurrency       string          `yaml:"home_currency"`
	SnapshotCurrencies []string        `yaml:"snapshot_currencies"`
	IncludeDividends   bool            `yaml:"include_dividends"`
	IncludeOpen        bool            `yaml:"include_open"`
	Range              string          `yaml:"range"`
	Conversion         string          `yaml:"conversion"` // snapshot or historical
	TaxRate            float64         `yaml:"tax_rate"`
	Database           DatabaseConfig  `yaml:"database"`
	Cache              CacheConfig     `yaml:"cache"`
	Log                LogConfig       `yaml:"log"`
	Server             ServerConfig    `yaml:"server"`
	Providers          ProvidersConfig `yaml:"providers"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	PricesTTL  time.Duration `yaml:"prices_ttl"`
	RatesTTL   time.Duration `yaml:"rates_ttl"`   // daily snapshot
	HistoryTTL time.Duration `yaml:"history_ttl"` // dated rates, they never change
	Dir        string        `yaml:"dir"`         // daily HTTP cache, disabled when empty
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type ServerConfig struct {
	Port    int    `yaml:"port"`
	Refresh string `yaml:"refresh"` // cron spec of the cache warmer
}

type ProvidersConfig struct {
	YahooURL       string        `yaml:"yahoo_url"`
	FrankfurterURL string        `yaml:"frankfurter_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HomeCurrency:       "EUR",
		SnapshotCurrencies: []string{"USD", "PLN"},
		IncludeDividends:   true,
		IncludeOpen:        false,
		Range:              string(date.YearToDate),
		Conversion:         tradebook.SnapshotRates.String(),
		TaxRate:            19,
		Database:           DatabaseConfig{Driver: "sqlite", DSN: "data/tradebook.db"},
		Cache:              CacheConfig{PricesTTL: 24 * time.Hour, RatesTTL: 10 * time.Minute, HistoryTTL: 24 * time.Hour},
		Log:                LogConfig{Level: "info"},
		Server:             ServerConfig{Port: 8080, Refresh: "*/15 * * * *"},
		Providers:          ProvidersConfig{Timeout: 10 * time.Second},
	}
}

// Load reads path over the defaults, then applies the environment.
//
// A missing file is only an error when path is not DefaultPath. A .env file in
// the working directory is loaded into the environment if it exists.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	number := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("TRADEBOOK_HOME_CURRENCY", &c.HomeCurrency)
	if v := os.Getenv("TRADEBOOK_SNAPSHOT_CURRENCIES"); v != "" {
		c.SnapshotCurrencies = strings.Split(v, ",")
	}
	boolean("TRADEBOOK_INCLUDE_DIVIDENDS", &c.IncludeDividends)
	boolean("TRADEBOOK_INCLUDE_OPEN", &c.IncludeOpen)
	str("TRADEBOOK_RANGE", &c.Range)
	str("TRADEBOOK_CONVERSION", &c.Conversion)
	number("TRADEBOOK_TAX_RATE", &c.TaxRate)
	str("TRADEBOOK_DATABASE_DRIVER", &c.Database.Driver)
	str("TRADEBOOK_DATABASE_DSN", &c.Database.DSN)
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.Driver, c.Database.DSN = "postgres", v
	}
	duration("TRADEBOOK_PRICES_TTL", &c.Cache.PricesTTL)
	duration("TRADEBOOK_RATES_TTL", &c.Cache.RatesTTL)
	duration("TRADEBOOK_HISTORY_TTL", &c.Cache.HistoryTTL)
	str("TRADEBOOK_CACHE_DIR", &c.Cache.Dir)
	str("TRADEBOOK_LOG_LEVEL", &c.Log.Level)
	boolean("TRADEBOOK_LOG_PRETTY", &c.Log.Pretty)
	if v := os.Getenv("TRADEBOOK_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TRADEBOOK_PORT: %w", err))
		} else {
			c.Server.Port = p
		}
	}
	str("TRADEBOOK_REFRESH", &c.Server.Refresh)
	return errors.Join(errs...)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	c.HomeCurrency = strings.ToUpper(strings.TrimSpace(c.HomeCurrency))
	if !tradebook.KnownCurrency(c.HomeCurrency) {
		errs = append(errs, fmt.Errorf("home_currency %q is not an ISO 4217 code", c.HomeCurrency))
	}
	for i, cur := range c.SnapshotCurrencies {
		cur = strings.ToUpper(strings.TrimSpace(cur))
		c.SnapshotCurrencies[i] = cur
		if !tradebook.KnownCurrency(cur) {
			errs = append(errs, fmt.Errorf("snapshot_currencies: %q is not an ISO 4217 code", cur))
		}
	}
	if _, err := date.ParsePreset(c.Range); err != nil {
		errs = append(errs, fmt.Errorf("range: %w", err))
	}
	if _, err := tradebook.ParseRateSource(c.Conversion); err != nil {
		errs = append(errs, fmt.Errorf("conversion: %w", err))
	}
	if c.TaxRate < 0 || c.TaxRate > 100 {
		errs = append(errs, fmt.Errorf("tax_rate %v is not a percentage", c.TaxRate))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

// Options returns the analysis options configured for a pass run on today.
func (c *Config) Options(today date.Date) tradebook.Options {
	opts := tradebook.DefaultOptions(today)
	opts.Range, _ = date.ParsePreset(c.Range)
	opts.Conversion, _ = tradebook.ParseRateSource(c.Conversion)
	opts.IncludeDividends = c.IncludeDividends
	opts.IncludeOpen = c.IncludeOpen
	opts.TaxRate = tradebook.Percent(c.TaxRate)
	return opts
}
