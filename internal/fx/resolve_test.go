package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rates map[string]Rate
	saved int
}

func (m *memStore) SaveFXRate(r Rate) error {
	if m.rates == nil {
		m.rates = make(map[string]Rate)
	}
	m.rates[r.Base+r.Quote] = r
	m.saved++
	return nil
}

func (m *memStore) LatestFXRate(base, quote string) (Rate, error) {
	r, ok := m.rates[base+quote]
	if !ok {
		return Rate{}, ErrNotFound
	}
	return r, nil
}

type stubProvider struct {
	rate  Rate
	err   error
	calls int
}

func (s *stubProvider) Rate(_ context.Context, base, quote string) (Rate, error) {
	s.calls++
	if s.err != nil {
		return Rate{}, s.err
	}
	r := s.rate
	r.Base, r.Quote = base, quote
	return r, nil
}

var resolveNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func quote(v string, asOf time.Time) Rate {
	return Rate{Base: "USD", Quote: "EGP", Value: decimal.RequireFromString(v), AsOf: asOf}
}

func TestResolver_ManualWins(t *testing.T) {
	p := &stubProvider{rate: quote("50", resolveNow)}
	manual := quote("47", resolveNow)
	r := &Resolver{Manual: &manual, Provider: p, Now: func() time.Time { return resolveNow }}

	got := r.Resolve(context.Background(), "usd", "egp")
	require.NotNil(t, got)
	assert.Equal(t, "47", got.Value.String())
	assert.Zero(t, p.calls)
}

func TestResolver_FreshStoredRate(t *testing.T) {
	st := &memStore{}
	require.NoError(t, st.SaveFXRate(quote("48", resolveNow.Add(-time.Hour))))
	p := &stubProvider{rate: quote("50", resolveNow)}
	r := &Resolver{Store: st, Provider: p, MaxAge: 12 * time.Hour, Now: func() time.Time { return resolveNow }}

	got := r.Resolve(context.Background(), "USD", "EGP")
	require.NotNil(t, got)
	assert.Equal(t, "48", got.Value.String())
	assert.Zero(t, p.calls)
}

func TestResolver_StaleRateRefetched(t *testing.T) {
	st := &memStore{}
	require.NoError(t, st.SaveFXRate(quote("48", resolveNow.Add(-48*time.Hour))))
	p := &stubProvider{rate: quote("50", resolveNow)}
	r := &Resolver{Store: st, Provider: p, MaxAge: 12 * time.Hour, Now: func() time.Time { return resolveNow }}

	got := r.Resolve(context.Background(), "USD", "EGP")
	require.NotNil(t, got)
	assert.Equal(t, "50", got.Value.String())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "50", st.rates["USDEGP"].Value.String())
}

func TestResolver_ProviderFailureFallsBackToStale(t *testing.T) {
	st := &memStore{}
	require.NoError(t, st.SaveFXRate(quote("48", resolveNow.Add(-48*time.Hour))))
	p := &stubProvider{err: ErrRateLimited}
	r := &Resolver{Store: st, Provider: p, MaxAge: time.Hour, Now: func() time.Time { return resolveNow }}

	got := r.Resolve(context.Background(), "USD", "EGP")
	require.NotNil(t, got)
	assert.Equal(t, "48", got.Value.String())
}

func TestResolver_NothingAvailable(t *testing.T) {
	r := &Resolver{Store: &memStore{}, Provider: &stubProvider{err: errors.New("offline")}}
	assert.Nil(t, r.Resolve(context.Background(), "USD", "EGP"))
	assert.Nil(t, (&Resolver{}).Resolve(context.Background(), "EGP", "EGP"))
}

func TestResolver_RefreshBypassesStore(t *testing.T) {
	st := &memStore{}
	require.NoError(t, st.SaveFXRate(quote("48", resolveNow)))
	p := &stubProvider{rate: quote("51", resolveNow)}
	r := &Resolver{Store: st, Provider: p, MaxAge: time.Hour, Refresh: true, Now: func() time.Time { return resolveNow }}

	got := r.Resolve(context.Background(), "USD", "EGP")
	require.NotNil(t, got)
	assert.Equal(t, "51", got.Value.String())
}
