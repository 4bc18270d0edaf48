package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/config"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/pipeline"
	"github.com/theirongolddev/nestegg/internal/projcache"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
)

var testToday = civil.Date{Year: 2026, Month: 10, Day: 16}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memRecords is a record source the tests can change between recomputes.
type memRecords struct {
	mu  sync.Mutex
	rec model.Records
}

func (m *memRecords) LoadRecords() (model.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *memRecords) setBalance(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec.Accounts[0].Balance = dec(v)
}

func testRecords() model.Records {
	rate := dec("20")
	return model.Records{
		Instruments: []model.Instrument{{
			ID: "cd-1", Label: "3y certificate", Principal: dec("300000"), Currency: "EGP",
			StartDate: civil.Date{Year: 2025, Month: 1, Day: 1}, TermMonths: 36, AnnualRatePercent: &rate,
		}},
		Accounts: []model.Account{{Name: "checking", Balance: dec("10000"), Currency: "EGP"}},
		Expenses: []model.Expense{{Label: "rent", Monthly: dec("4000"), Currency: "EGP"}},
	}
}

func newTestService(t *testing.T) (*Service, *memRecords) {
	t.Helper()
	ladder, err := config.LoadLadder("")
	if err != nil {
		t.Fatalf("LoadLadder: %v", err)
	}
	sched := rates.New(2024, dec("27"), dec("-2"), dec("10"))
	ws := &pipeline.Workspace{
		Engine:       projection.New(sched, civil.Date{Year: 1990, Month: 6, Day: 1}),
		Rates:        sched,
		Ladder:       ladder,
		PlanCurrency: "EGP",
		Cache:        projcache.NewMemory(),
	}
	src := &memRecords{rec: testRecords()}

	s := New(Config{Interval: time.Minute, EventsBuffer: 10}, ws, src, nil)
	s.Today = func() civil.Date { return testToday }
	return s, src
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalSavings:             dec("100000"),
		MonthlyPassiveIncome:     dec("1500"),
		EstimatedMonthlyExpenses: dec("4000"),
	}
	curr := Snapshot{
		TotalSavings:             dec("125000"),
		MonthlyPassiveIncome:     dec("1800.50"),
		EstimatedMonthlyExpenses: dec("4000"),
	}

	delta := diffSnapshots(prev, curr)
	if !delta.Savings.Equal(dec("25000")) {
		t.Fatalf("Savings delta = %s, want 25000", delta.Savings)
	}
	if !delta.Income.Equal(dec("300.50")) {
		t.Fatalf("Income delta = %s, want 300.50", delta.Income)
	}
	if !delta.Expenses.IsZero() {
		t.Fatalf("Expenses delta = %s, want 0", delta.Expenses)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("self diff not zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t)
	s.cfg.EventsBuffer = 2

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRecomputeEvents(t *testing.T) {
	s, src := newTestService(t)
	ctx := context.Background()

	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	_, snap, ok := s.current()
	if !ok {
		t.Fatal("no snapshot after first recompute")
	}
	if snap.CurrentLevel != "cushion" {
		t.Fatalf("CurrentLevel = %q, want cushion", snap.CurrentLevel)
	}
	if len(snap.Levels) != 5 {
		t.Fatalf("levels = %d, want 5", len(snap.Levels))
	}
	if !snap.Levels[0].Arrival.Achieved || snap.Levels[2].Arrival.Achieved {
		t.Fatalf("unexpected achieved flags: %+v", snap.Levels)
	}

	// unchanged inputs publish nothing new
	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// a balance change without a level change is a plan delta
	src.setBalance("20000")
	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// enough cash to clear the stable savings threshold still leaves its
	// income threshold unmet, so the level holds
	src.setBalance("900000")
	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var types []string
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	if len(types) < 3 || types[0] != EventSnapshot || types[1] != EventPlanDelta || types[2] != EventPlanDelta {
		t.Fatalf("event types = %v, want [snapshot plan_delta plan_delta ...]", types)
	}
	if s.events[1].Delta == nil || !s.events[1].Delta.Savings.Equal(dec("10000")) {
		t.Fatalf("delta = %+v, want savings +10000", s.events[1].Delta)
	}
	if s.pollCount != 4 {
		t.Fatalf("pollCount = %d, want 4", s.pollCount)
	}
}

func TestRecomputeLevelChanged(t *testing.T) {
	s, src := newTestService(t)
	ctx := context.Background()

	src.mu.Lock()
	src.rec.Instruments = nil
	src.rec.Accounts[0].Balance = dec("60000")
	src.mu.Unlock()
	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	src.mu.Lock()
	src.rec.Instruments = testRecords().Instruments
	src.mu.Unlock()
	if err := s.Recompute(ctx, false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) < 2 {
		t.Fatalf("events = %d, want at least 2", len(s.events))
	}
	if s.events[1].Type != EventLevelChanged {
		t.Fatalf("second event = %q, want level_changed", s.events[1].Type)
	}
	if s.snapshot.CurrentLevel != "cushion" {
		t.Fatalf("CurrentLevel = %q, want cushion", s.snapshot.CurrentLevel)
	}
}

func TestSubscribersReceiveEvents(t *testing.T) {
	s, _ := newTestService(t)
	ch := make(chan Event, 4)
	id := s.addSubscriber(ch)

	if err := s.Recompute(context.Background(), false); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	select {
	case ev := <-ch:
		if ev.Type != EventSnapshot {
			t.Fatalf("first event = %q, want snapshot", ev.Type)
		}
	default:
		t.Fatal("subscriber received nothing")
	}

	s.removeSubscriber(id)
	if st := s.snapshotStatus(); st.SubscriberCount != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", st.SubscriberCount)
	}
}
