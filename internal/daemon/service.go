// Package daemon provides the long-running projection service and its HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	Cron         string // overrides Interval when set
	EventsBuffer int
}

// Service recomputes the plan on a schedule and serves the results.
type Service struct {
	cfg       Config
	ws        *pipeline.Workspace
	records   pipeline.RecordSource
	resolveFX func(ctx context.Context, refresh bool) *fx.Rate

	// Today returns the evaluation date, civil.DateOf(time.Now()) by default.
	Today func() civil.Date

	runMu sync.Mutex // serializes recomputes

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	state       *pipeline.State
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service computing against ws. resolveFX may be nil,
// in which case amounts are never converted.
func New(cfg Config, ws *pipeline.Workspace, records pipeline.RecordSource, resolveFX func(context.Context, bool) *fx.Rate) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		ws:        ws,
		records:   records,
		resolveFX: resolveFX,
		Today:     func() civil.Date { return civil.DateOf(time.Now()) },
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts the scheduler and HTTP endpoints until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()
	job := func() {
		if err := s.Recompute(ctx, false); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Warn("scheduled recompute failed")
		}
	}
	var err error
	if s.cfg.Cron != "" {
		_, err = scheduler.Cron(s.cfg.Cron).Do(job)
		if err == nil {
			go job()
		}
	} else {
		_, err = scheduler.Every(s.cfg.Interval).Do(job)
	}
	if err != nil {
		return fmt.Errorf("scheduling recompute: %w", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.cfg.Addr).Info("daemon listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Recompute loads records, resolves FX, rebuilds the snapshot and runs the
// estimation pass, publishing events for anything that changed.
func (s *Service) Recompute(ctx context.Context, refreshFX bool) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	var rate *fx.Rate
	if s.resolveFX != nil {
		rate = s.resolveFX(ctx, refreshFX)
	}

	st, err := s.ws.Compute(s.records, rate, s.Today())
	if err == nil {
		var res *pipeline.EstimateResult
		res, err = s.ws.Estimates(ctx, st, nil)
		if err == nil {
			s.apply(st, res, time.Now())
			logrus.WithFields(logrus.Fields{
				"level":      st.Snapshot.CurrentLevelID,
				"cache_hits": res.CacheHits,
				"took":       time.Since(start).Round(time.Millisecond).String(),
			}).Debug("recomputed")
			return nil
		}
	}

	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()
	return err
}

// apply stores a fresh computation and publishes what changed.
func (s *Service) apply(st *pipeline.State, res *pipeline.EstimateResult, now time.Time) {
	snap := buildSnapshot(st, res, s.ws.PlanCurrency, now)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.state = st
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	var pending []Event
	emit := func(typ string, delta *Delta) {
		s.nextEventID++
		pending = append(pending, Event{
			ID:        s.nextEventID,
			Type:      typ,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		})
	}

	if !prevExists {
		emit(EventSnapshot, nil)
	} else {
		delta := diffSnapshots(prev, snap)
		switch {
		case prev.CurrentLevel != snap.CurrentLevel || prev.CurrentAchieved != snap.CurrentAchieved:
			emit(EventLevelChanged, &delta)
		case !delta.isZero():
			emit(EventPlanDelta, &delta)
		}
		if estimatesChanged(prev, snap) {
			emit(EventEstimatesUpdated, nil)
		}
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// current returns the latest state and snapshot, ok false before the first
// successful recompute.
func (s *Service) current() (*pipeline.State, Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.snapshot, s.hasSnapshot
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		Cron:            s.cfg.Cron,
		PollCount:       s.pollCount,
		PlanCurrency:    s.ws.PlanCurrency,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.hasSnapshot {
		st.CurrentLevel = s.snapshot.CurrentLevel
		st.TotalSavings = s.snapshot.TotalSavings.String()
	}
	return st
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
