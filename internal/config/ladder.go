package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/model"
)

// ErrUnknownLevel indicates a milestone id that is not on the ladder.
var ErrUnknownLevel = model.ErrUnknownLevel

//go:embed ladder.toml
var defaultLadder []byte

type ladderFile struct {
	Levels []levelEntry `toml:"level"`
}

type levelEntry struct {
	ID                string            `toml:"id"`
	Order             int               `toml:"order"`
	Label             string            `toml:"label"`
	Narrative         string            `toml:"narrative"`
	MinSavings        *float64          `toml:"min_savings,omitempty"`
	MinMonthlyRevenue *float64          `toml:"min_monthly_revenue,omitempty"`
	Attributes        map[string]string `toml:"attributes,omitempty"`
}

// LoadLadder reads the milestone ladder from path, or the built-in ladder
// when path is empty. The result is sorted by order and validated.
func LoadLadder(path string) (model.Ladder, error) {
	data := defaultLadder
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading ladder: %w", err)
		}
		data = b
	}
	return ParseLadder(data)
}

// ParseLadder decodes ladder TOML.
func ParseLadder(data []byte) (model.Ladder, error) {
	var f ladderFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing ladder: %w", err)
	}

	ladder := make(model.Ladder, 0, len(f.Levels))
	for _, e := range f.Levels {
		ladder = append(ladder, model.Milestone{
			ID:                e.ID,
			Order:             e.Order,
			Label:             e.Label,
			Narrative:         e.Narrative,
			MinSavings:        toDecimal(e.MinSavings),
			MinMonthlyRevenue: toDecimal(e.MinMonthlyRevenue),
			Attributes:        e.Attributes,
		})
	}
	if err := ladder.Validate(); err != nil {
		return nil, err
	}
	return ladder.Sorted(), nil
}

// LookupLevel returns the milestone with id.
func LookupLevel(ladder model.Ladder, id string) (model.Milestone, error) {
	m, ok := ladder.Find(id)
	if !ok {
		return model.Milestone{}, fmt.Errorf("%w: %q", ErrUnknownLevel, id)
	}
	return m, nil
}

func toDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
