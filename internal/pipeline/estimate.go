package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projcache"
	"github.com/theirongolddev/nestegg/internal/projection"
)

// Inputs are the projection inputs shared by every milestone in a pass.
type Inputs struct {
	Instruments  []model.Instrument
	PlanCurrency string
	FX           *fx.Rate
	Today        civil.Date
}

// ProgressFunc is called as milestones finish.
// current is the number finished so far, total is the ladder size.
type ProgressFunc func(current, total int)

// EstimateResult holds one estimate per ladder tier, in ladder order.
type EstimateResult struct {
	Estimates []model.Estimate
	CacheHits int
	Computed  int
}

// EstimateLadder projects every milestone without a cache.
func EstimateLadder(ctx context.Context, eng *projection.Engine, ladder model.Ladder, in Inputs, progressFn ProgressFunc) ([]model.Estimate, error) {
	res, err := EstimateWithCache(ctx, eng, ladder, in, nil, progressFn)
	if err != nil {
		return nil, err
	}
	return res.Estimates, nil
}

// EstimateWithCache projects every milestone on a bounded worker pool,
// reading and filling cache when it is non-nil. Cancellation is checked
// between milestones; a single projection always runs to completion.
func EstimateWithCache(
	ctx context.Context,
	eng *projection.Engine,
	ladder model.Ladder,
	in Inputs,
	cache projcache.Cache,
	progressFn ProgressFunc,
) (*EstimateResult, error) {
	sorted := ladder.Sorted()
	result := &EstimateResult{Estimates: make([]model.Estimate, len(sorted))}
	if len(sorted) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(sorted) {
		numWorkers = len(sorted)
	}

	work := make(chan int, len(sorted))
	var wg sync.WaitGroup
	var processed, hits atomic.Int64

	for i := range sorted {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				m := sorted[idx]
				rows, hit := ProjectCached(ctx, eng, m, in, cache)
				if hit {
					hits.Add(1)
				}
				result.Estimates[idx] = projection.Estimate(m, rows)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(sorted))
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimating ladder: %w", err)
	}

	result.CacheHits = int(hits.Load())
	result.Computed = len(sorted) - result.CacheHits
	return result, nil
}

// ProjectCached runs one projection, consulting cache first. Cache errors
// are logged and treated as misses.
func ProjectCached(ctx context.Context, eng *projection.Engine, m model.Milestone, in Inputs, cache projcache.Cache) ([]model.YearRow, bool) {
	var key string
	if cache != nil {
		k, err := projcache.Key(KeyFor(eng, m, in))
		if err != nil {
			logrus.WithError(err).WithField("level", m.ID).Warn("projection cache key failed")
		} else {
			key = k
			if rows, ok := cache.Get(ctx, key); ok {
				return rows, true
			}
		}
	}

	rows := eng.Project(m, in.Instruments, in.PlanCurrency, in.FX, in.Today)

	if key != "" {
		if err := cache.Set(ctx, key, rows); err != nil {
			logrus.WithError(err).WithField("level", m.ID).Debug("projection cache write failed")
		}
	}
	return rows, false
}

// KeyFor renders every input that can change a projection of m.
func KeyFor(eng *projection.Engine, m model.Milestone, in Inputs) projcache.KeyInput {
	k := projcache.KeyInput{
		LevelID:      m.ID,
		PlanCurrency: strings.ToUpper(in.PlanCurrency),
		Today:        in.Today.String(),
		ReinvestStep: eng.ReinvestStep.String(),
		ReinvestTerm: eng.ReinvestTermMonths,
		Horizon:      eng.HorizonMonths,
	}
	if m.MinSavings != nil {
		k.MinSavings = m.MinSavings.String()
	}
	if m.MinMonthlyRevenue != nil {
		k.MinMonthlyRevenue = m.MinMonthlyRevenue.String()
	}
	if !eng.BirthDate.IsZero() {
		k.BirthDate = eng.BirthDate.String()
	}
	if in.FX.Valid() {
		k.FX = in.FX.String()
	}

	firstYear := in.Today.Year
	for _, inst := range in.Instruments {
		rate := ""
		if inst.AnnualRatePercent != nil {
			rate = inst.AnnualRatePercent.String()
		}
		k.Instruments = append(k.Instruments, strings.Join([]string{
			inst.ID,
			inst.Principal.String(),
			strings.ToUpper(inst.Currency),
			inst.StartDate.String(),
			fmt.Sprint(inst.TermMonths),
			rate,
		}, "|"))
		if !inst.StartDate.IsZero() && inst.StartDate.Year < firstYear {
			firstYear = inst.StartDate.Year
		}
	}
	sort.Strings(k.Instruments)

	for y := firstYear; y < in.Today.Year+projection.MaxHorizonYears; y++ {
		k.RateTable = append(k.RateTable, fmt.Sprintf("%d:%s", y, eng.Rates.RateForYear(y)))
	}
	return k
}
