package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
)

// Config holds all nestegg configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Rates      RatesConfig      `toml:"rates"`
	Projection ProjectionConfig `toml:"projection"`
	FX         FXConfig         `toml:"fx"`
	Ladder     LadderConfig     `toml:"ladder"`
	Cache      CacheConfig      `toml:"cache"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	BirthDate     string `toml:"birth_date,omitempty"` // YYYY-MM-DD, used for ages
	PlanCurrency  string `toml:"plan_currency"`
	LocalCurrency string `toml:"local_currency"`
	LogLevel      string `toml:"log_level"`
}

// RatesConfig holds the rate schedule and its per-year overrides.
// Override keys are years ("2025").
type RatesConfig struct {
	BaseYear   int                `toml:"base_year"`
	BaseRate   float64            `toml:"base_rate"`
	AnnualStep float64            `toml:"annual_step"`
	Floor      float64            `toml:"floor"`
	Overrides  map[string]float64 `toml:"overrides,omitempty"`
}

// ProjectionConfig holds reinvestment settings.
type ProjectionConfig struct {
	ReinvestStep       float64 `toml:"reinvest_step"`
	ReinvestTermMonths int     `toml:"reinvest_term_months"`
	HorizonMonths      int     `toml:"horizon_months"`
}

// FXConfig holds exchange-rate settings. Rate pins a manual quote.
type FXConfig struct {
	Rate        *float64 `toml:"rate,omitempty"`
	Provider    string   `toml:"provider"`
	MaxAgeHours int      `toml:"max_age_hours"`
}

// LadderConfig points at a custom milestone file.
type LadderConfig struct {
	Path string `toml:"path,omitempty"`
}

// CacheConfig holds projection cache settings.
type CacheConfig struct {
	RedisAddr  string `toml:"redis_addr,omitempty"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// DaemonConfig holds background service settings.
// Cron, when set, replaces the fixed interval with a cron expression.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
	Cron        string `toml:"cron,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PlanCurrency:  "EGP",
			LocalCurrency: "USD",
			LogLevel:      "warn",
		},
		Rates: defaultRates(),
		Projection: ProjectionConfig{
			ReinvestStep:       1000,
			ReinvestTermMonths: 36,
			HorizonMonths:      1200,
		},
		FX: FXConfig{
			Provider:    "yahoo",
			MaxAgeHours: 12,
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 300,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nestegg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nestegg")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A user override table replaces the defaults instead of merging into them.
	cfg.Rates.Overrides = nil
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if !md.IsDefined("rates", "overrides") {
		cfg.Rates.Overrides = defaultOverrides()
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// BirthDate parses the configured birth date. An unset date is the zero
// date.
func (c Config) BirthDate() (civil.Date, error) {
	if c.General.BirthDate == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(c.General.BirthDate)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing birth_date: %w", err)
	}
	return d, nil
}

// PlanCurrency returns the plan currency from env var or config, in that order.
func PlanCurrency(cfg Config) string {
	if v := os.Getenv("NESTEGG_PLAN_CURRENCY"); v != "" {
		return strings.ToUpper(v)
	}
	return strings.ToUpper(cfg.General.PlanCurrency)
}

// RedisAddr returns the redis address from env var or config, in that order.
func RedisAddr(cfg Config) string {
	if v := os.Getenv("NESTEGG_REDIS_ADDR"); v != "" {
		return v
	}
	return cfg.Cache.RedisAddr
}

// ManualFXRate returns a pinned local→plan quote from env var or config, or
// nil when neither is set.
func ManualFXRate(cfg Config) *fx.Rate {
	var v decimal.Decimal
	switch {
	case os.Getenv("NESTEGG_FX_RATE") != "":
		f, err := strconv.ParseFloat(os.Getenv("NESTEGG_FX_RATE"), 64)
		if err != nil || f <= 0 {
			return nil
		}
		v = decimal.NewFromFloat(f)
	case cfg.FX.Rate != nil && *cfg.FX.Rate > 0:
		v = decimal.NewFromFloat(*cfg.FX.Rate)
	default:
		return nil
	}
	return &fx.Rate{
		Base:   strings.ToUpper(cfg.General.LocalCurrency),
		Quote:  PlanCurrency(cfg),
		Value:  v,
		AsOf:   time.Now(),
		Source: "manual",
	}
}

// FXMaxAge returns how long a stored quote stays usable.
func (c Config) FXMaxAge() time.Duration {
	if c.FX.MaxAgeHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.FX.MaxAgeHours) * time.Hour
}
