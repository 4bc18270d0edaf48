package fx

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RateStore persists fetched quotes between runs.
type RateStore interface {
	SaveFXRate(r Rate) error
	LatestFXRate(base, quote string) (Rate, error)
}

// Resolver picks the quote used for a run: a manual rate wins, then a
// stored quote younger than MaxAge, then the provider. A provider result is
// written back to Store.
type Resolver struct {
	Manual   *Rate
	Store    RateStore
	Provider Provider
	MaxAge   time.Duration
	Now      func() time.Time

	// Refresh skips the stored quote and asks the provider first.
	Refresh bool
}

// Resolve returns the quote for base→quote, or nil when none is available.
// Totals then pass foreign amounts through unconverted.
func (r *Resolver) Resolve(ctx context.Context, base, quote string) *Rate {
	base, quote = strings.ToUpper(base), strings.ToUpper(quote)
	log := logrus.WithFields(logrus.Fields{"base": base, "quote": quote})

	if r.Manual.Valid() {
		log.WithField("value", r.Manual.Value.String()).Debug("using manual fx rate")
		m := *r.Manual
		return &m
	}
	if base == "" || quote == "" || base == quote {
		return nil
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var stale *Rate
	if r.Store != nil {
		stored, err := r.Store.LatestFXRate(base, quote)
		switch {
		case err != nil:
			log.WithError(err).Debug("no stored fx rate")
		case !r.Refresh && now().Sub(stored.AsOf) <= r.MaxAge:
			return &stored
		default:
			stale = &stored
		}
	}

	if r.Provider != nil {
		fetched, err := r.Provider.Rate(ctx, base, quote)
		if err == nil && fetched.Valid() {
			if r.Store != nil {
				if err := r.Store.SaveFXRate(fetched); err != nil {
					log.WithError(err).Warn("could not store fx rate")
				}
			}
			return &fetched
		}
		log.WithError(err).Warn("fx provider failed")
	}

	if stale != nil {
		log.WithField("as_of", stale.AsOf.Format(time.RFC3339)).Warn("using stale fx rate")
		return stale
	}
	return nil
}
