package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/fx"
)

// SaveFXRate records a fetched quote.
func (s *Store) SaveFXRate(r fx.Rate) error {
	if !r.Valid() {
		return fmt.Errorf("%w: fx rate %s", ErrInvalidRecord, r)
	}
	asOf := r.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	_, err := s.exec(squirrel.Insert("fx_rates").
		Columns("base", "quote", "value", "as_of", "source").
		Values(strings.ToUpper(r.Base), strings.ToUpper(r.Quote), r.Value.String(), asOf.UTC().Format(time.RFC3339), r.Source).
		Options("OR REPLACE"))
	if err != nil {
		return fmt.Errorf("saving fx rate: %w", err)
	}
	return nil
}

// LatestFXRate returns the newest stored quote for base→quote.
func (s *Store) LatestFXRate(base, quote string) (fx.Rate, error) {
	rows, err := s.query(squirrel.
		Select("base", "quote", "value", "as_of", "source").
		From("fx_rates").
		Where(squirrel.Eq{"base": strings.ToUpper(base), "quote": strings.ToUpper(quote)}).
		OrderBy("as_of DESC").
		Limit(1))
	if err != nil {
		return fx.Rate{}, fmt.Errorf("loading fx rate: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fx.Rate{}, err
		}
		return fx.Rate{}, fmt.Errorf("%w: fx rate %s/%s", ErrNotFound, base, quote)
	}

	var r fx.Rate
	var value, asOf string
	if err := rows.Scan(&r.Base, &r.Quote, &value, &asOf, &r.Source); err != nil {
		return fx.Rate{}, err
	}
	if r.Value, err = decimal.NewFromString(value); err != nil {
		return fx.Rate{}, fmt.Errorf("fx rate value: %w", err)
	}
	r.AsOf, _ = time.Parse(time.RFC3339, asOf)
	return r, nil
}
