package projcache

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/nestegg/internal/model"
)

func sampleInput() KeyInput {
	return KeyInput{
		LevelID:      "stable",
		MinSavings:   "1000000",
		Instruments:  []string{"a|10000|EGP|2026-01-01|36|17"},
		PlanCurrency: "EGP",
		Today:        "2026-10-16",
		ReinvestStep: "1000",
		ReinvestTerm: 36,
		Horizon:      1200,
		RateTable:    []string{"2026:23", "2027:21"},
	}
}

func sampleRows() []model.YearRow {
	return []model.YearRow{{
		Year:       2026,
		Age:        36,
		EndBalance: decimal.RequireFromString("10566.67"),
		Months: []model.MonthRow{{
			Index:      0,
			Label:      "Oct 2026",
			Date:       civil.Date{Year: 2026, Month: time.October, Day: 16},
			EndBalance: decimal.RequireFromString("10566.67"),
		}},
	}}
}

func TestKey_StableAndSensitive(t *testing.T) {
	a, err := Key(sampleInput())
	require.NoError(t, err)
	b, err := Key(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	changed := []func(*KeyInput){
		func(k *KeyInput) { k.FX = "USD/EGP=48.9" },
		func(k *KeyInput) { k.Instruments = append(k.Instruments, "b|5|USD|2026-02-01|12|") },
		func(k *KeyInput) { k.Today = "2026-10-17" },
		func(k *KeyInput) { k.RateTable[1] = "2027:20" },
	}
	for i, mutate := range changed {
		in := sampleInput()
		mutate(&in)
		got, err := Key(in)
		require.NoError(t, err)
		assert.NotEqual(t, a, got, "mutation %d did not change the key", i)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", sampleRows()))
	rows, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2026, rows[0].Year)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Invalidate(ctx))
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_RowsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := sampleRows()
	require.NoError(t, m.Set(ctx, "k", in))
	in[0].Year = 1999
	in[0].Months[0].Label = "changed by caller"

	rows, ok := m.Get(ctx, "k")
	require.True(t, ok)
	rows[0].Age = 99
	rows[0].Months[0].Label = "changed by reader"
	rows[0].Months = append(rows[0].Months, model.MonthRow{Index: 1})

	again, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2026, again[0].Year)
	assert.Equal(t, 36, again[0].Age)
	require.Len(t, again[0].Months, 1)
	assert.Equal(t, "Oct 2026", again[0].Months[0].Label)
}

func TestEncodeDecode(t *testing.T) {
	data, err := encode(sampleRows())
	require.NoError(t, err)

	rows, err := decode(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Months, 1)
	assert.True(t, rows[0].EndBalance.Equal(decimal.RequireFromString("10566.67")))
	assert.Equal(t, civil.Date{Year: 2026, Month: time.October, Day: 16}, rows[0].Months[0].Date)
}

func TestRedis_UnreachableIsAMiss(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := NewRedis("127.0.0.1:1", time.Minute)
	defer func() { _ = r.Close() }()

	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, r.Set(ctx, "k", sampleRows()))
	assert.Error(t, r.Ping(ctx))
}
