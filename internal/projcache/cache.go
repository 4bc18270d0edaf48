// Package projcache caches projection rows keyed by a hash of every input
// that shaped them.
package projcache

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/theirongolddev/nestegg/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache stores projections. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.YearRow, bool)
	Set(ctx context.Context, key string, rows []model.YearRow) error
	// Invalidate drops every entry.
	Invalidate(ctx context.Context) error
}

// KeyInput is the string-rendered set of projection inputs. Decimals and
// dates are rendered by the caller so the hash sees their values.
type KeyInput struct {
	LevelID           string
	MinSavings        string
	MinMonthlyRevenue string
	Instruments       []string
	PlanCurrency      string
	FX                string
	Today             string
	BirthDate         string
	ReinvestStep      string
	ReinvestTerm      int
	Horizon           int
	RateTable         []string
}

// Key hashes in to a cache key.
func Key(in KeyInput) (string, error) {
	h, err := hashstructure.Hash(in, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing projection inputs: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

func encode(rows []model.YearRow) ([]byte, error) {
	return json.Marshal(rows)
}

func decode(data []byte) ([]model.YearRow, error) {
	var rows []model.YearRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
