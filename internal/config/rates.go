package config

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/rates"
)

// defaultOverrides pins the historical certificate rates the stepped
// schedule does not reach.
func defaultOverrides() map[string]float64 {
	return map[string]float64{
		"2019": 15.0,
		"2020": 12.0,
		"2021": 11.0,
		"2022": 18.0,
		"2023": 25.0,
	}
}

func defaultRates() RatesConfig {
	return RatesConfig{
		BaseYear:   2024,
		BaseRate:   27.0,
		AnnualStep: -2.0,
		Floor:      10.0,
		Overrides:  defaultOverrides(),
	}
}

// Schedule builds the rate schedule, including overrides.
func (c Config) Schedule() (*rates.Schedule, error) {
	r := c.Rates
	if r.BaseYear == 0 {
		r = defaultRates()
	}
	s := rates.New(
		r.BaseYear,
		decimal.NewFromFloat(r.BaseRate),
		decimal.NewFromFloat(r.AnnualStep),
		decimal.NewFromFloat(r.Floor),
	)
	for key, rate := range r.Overrides {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("rates.overrides: bad year %q", key)
		}
		s.SetOverride(year, decimal.NewFromFloat(rate))
	}
	return s, nil
}

// StoreOverrides copies the schedule's override table back into the config
// so the next Save persists it.
func (c *Config) StoreOverrides(s *rates.Schedule) {
	ov := s.Overrides()
	c.Rates.Overrides = make(map[string]float64, len(ov))
	for _, o := range ov {
		c.Rates.Overrides[strconv.Itoa(o.Year)] = o.Rate.InexactFloat64()
	}
}
