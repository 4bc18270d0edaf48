package pipeline

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/projcache"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
)

// RecordSource loads the stored plan records.
type RecordSource interface {
	LoadRecords() (model.Records, error)
}

// Workspace is the loaded configuration every view computes against.
type Workspace struct {
	Engine       *projection.Engine
	Rates        rates.Source
	Ladder       model.Ladder
	PlanCurrency string
	Cache        projcache.Cache // nil disables caching
}

// State is one computed view of the plan at a given day.
type State struct {
	Today       civil.Date
	FX          *fx.Rate
	Records     model.Records
	Overview    model.Overview
	Snapshot    model.Snapshot
	Income      []model.IncomeShare
	Unconverted []string
}

// Compute loads records and derives the overview, snapshot and income
// breakdown.
func (w *Workspace) Compute(src RecordSource, rate *fx.Rate, today civil.Date) (*State, error) {
	rec, err := src.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return w.ComputeRecords(rec, rate, today), nil
}

// ComputeRecords is Compute over already-loaded records.
func (w *Workspace) ComputeRecords(rec model.Records, rate *fx.Rate, today civil.Date) *State {
	ov := Summarize(rec, w.PlanCurrency, rate, today, w.Rates)
	return &State{
		Today:       today,
		FX:          rate,
		Records:     rec,
		Overview:    ov,
		Snapshot:    BuildSnapshot(ov, w.Ladder, w.PlanCurrency, rate),
		Income:      Breakdown(rec.Instruments, w.PlanCurrency, rate, today, w.Rates),
		Unconverted: Unconverted(rec, w.PlanCurrency, rate),
	}
}

// Inputs returns the projection inputs for st.
func (w *Workspace) Inputs(st *State) Inputs {
	return Inputs{
		Instruments:  st.Records.Instruments,
		PlanCurrency: w.PlanCurrency,
		FX:           st.FX,
		Today:        st.Today,
	}
}

// Estimates runs the estimation pass over the whole ladder.
func (w *Workspace) Estimates(ctx context.Context, st *State, progressFn ProgressFunc) (*EstimateResult, error) {
	return EstimateWithCache(ctx, w.Engine, w.Ladder, w.Inputs(st), w.Cache, progressFn)
}

// Project runs the projection for one ladder level.
func (w *Workspace) Project(ctx context.Context, st *State, levelID string) (model.Milestone, []model.YearRow, error) {
	m, ok := w.Ladder.Find(levelID)
	if !ok {
		return model.Milestone{}, nil, fmt.Errorf("%w: %q", model.ErrUnknownLevel, levelID)
	}
	rows, _ := ProjectCached(ctx, w.Engine, m, w.Inputs(st), w.Cache)
	return m, rows, nil
}
