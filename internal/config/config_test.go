package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.PlanCurrency != "EGP" {
		t.Fatalf("PlanCurrency = %q, want EGP", cfg.General.PlanCurrency)
	}
	if len(cfg.Rates.Overrides) != 5 {
		t.Fatalf("len(Overrides) = %d, want 5 defaults", len(cfg.Rates.Overrides))
	}
}

func TestSaveLoad_OverridesRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	sched, err := cfg.Schedule()
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	sched.SetOverride(2026, decimal.RequireFromString("21.5"))
	sched.ClearOverride(2019)
	cfg.StoreOverrides(sched)

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := loaded.Rates.Overrides["2019"]; ok {
		t.Fatal("cleared 2019 override came back after load")
	}
	if got := loaded.Rates.Overrides["2026"]; got != 21.5 {
		t.Fatalf("2026 override = %v, want 21.5", got)
	}

	s2, err := loaded.Schedule()
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got := s2.RateForYear(2026); !got.Equal(decimal.RequireFromString("21.5")) {
		t.Fatalf("RateForYear(2026) = %s, want 21.5", got)
	}
}

func TestLoad_UserOverridesReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "nestegg", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data := "[general]\nplan_currency = \"usd\"\n\n[rates.overrides]\n\"2030\" = 14.0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Rates.Overrides) != 1 || cfg.Rates.Overrides["2030"] != 14.0 {
		t.Fatalf("Overrides = %v, want only 2030", cfg.Rates.Overrides)
	}
	if cfg.Rates.BaseYear != 2024 {
		t.Fatalf("BaseYear = %d, want default 2024", cfg.Rates.BaseYear)
	}
	if got := PlanCurrency(cfg); got != "USD" {
		t.Fatalf("PlanCurrency = %q, want USD", got)
	}
}

func TestSchedule_BadOverrideKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rates.Overrides = map[string]float64{"twenty": 1}
	if _, err := cfg.Schedule(); err == nil {
		t.Fatal("expected error for non-numeric override year")
	}
}

func TestManualFXRate(t *testing.T) {
	cfg := DefaultConfig()
	if ManualFXRate(cfg) != nil {
		t.Fatal("expected nil rate when unset")
	}

	v := 48.5
	cfg.FX.Rate = &v
	r := ManualFXRate(cfg)
	if r == nil || r.Base != "USD" || r.Quote != "EGP" || !r.Value.Equal(decimal.RequireFromString("48.5")) {
		t.Fatalf("ManualFXRate = %+v", r)
	}

	t.Setenv("NESTEGG_FX_RATE", "50")
	if r := ManualFXRate(cfg); !r.Value.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("env rate = %s, want 50", r.Value)
	}

	t.Setenv("NESTEGG_FX_RATE", "nope")
	if ManualFXRate(cfg) != nil {
		t.Fatal("expected nil rate for unparseable env value")
	}
}

func TestBirthDate(t *testing.T) {
	cfg := DefaultConfig()
	d, err := cfg.BirthDate()
	if err != nil || !d.IsZero() {
		t.Fatalf("unset birth date = %v, %v", d, err)
	}

	cfg.General.BirthDate = "1990-06-15"
	d, err = cfg.BirthDate()
	if err != nil || d.Year != 1990 || d.Day != 15 {
		t.Fatalf("BirthDate = %v, %v", d, err)
	}

	cfg.General.BirthDate = "15/06/1990"
	if _, err := cfg.BirthDate(); err == nil {
		t.Fatal("expected parse error")
	}
}
