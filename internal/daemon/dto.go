package daemon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/model"
	"github.com/theirongolddev/nestegg/internal/pipeline"
)

// Event types published on /v1/events and /v1/stream.
const (
	EventSnapshot         = "snapshot"
	EventLevelChanged     = "level_changed"
	EventPlanDelta        = "plan_delta"
	EventEstimatesUpdated = "estimates_updated"
)

// Snapshot is the daemon's JSON view of the plan.
type Snapshot struct {
	At                       time.Time        `json:"at"`
	Today                    string           `json:"today"`
	Currency                 string           `json:"currency"`
	TotalSavings             decimal.Decimal  `json:"total_savings"`
	MonthlyPassiveIncome     decimal.Decimal  `json:"monthly_passive_income"`
	EstimatedMonthlyExpenses decimal.Decimal  `json:"estimated_monthly_expenses"`
	MonthsOfExpensesSaved    *decimal.Decimal `json:"months_of_expenses_saved,omitempty"`
	CoveragePercent          *decimal.Decimal `json:"coverage_percent,omitempty"`
	CurrentLevel             string           `json:"current_level"`
	CurrentAchieved          bool             `json:"current_achieved"`
	NextLevel                string           `json:"next_level,omitempty"`
	FX                       *FXView          `json:"fx,omitempty"`
	Unconverted              []string         `json:"unconverted,omitempty"`
	Levels                   []Level          `json:"levels"`
}

// FXView is the exchange rate a snapshot was computed with.
type FXView struct {
	Pair   string          `json:"pair"`
	Value  decimal.Decimal `json:"value"`
	AsOf   time.Time       `json:"as_of"`
	Source string          `json:"source,omitempty"`
}

// Level is one ladder tier with progress and its arrival estimate.
type Level struct {
	ID                string           `json:"id"`
	Order             int              `json:"order"`
	Label             string           `json:"label"`
	MinSavings        *decimal.Decimal `json:"min_savings,omitempty"`
	MinMonthlyRevenue *decimal.Decimal `json:"min_monthly_revenue,omitempty"`
	SavingsProgress   decimal.Decimal  `json:"savings_progress"`
	RevenueProgress   decimal.Decimal  `json:"revenue_progress"`
	Overall           decimal.Decimal  `json:"overall"`
	Arrival           Arrival          `json:"arrival"`
}

// Arrival is when a tier is first satisfied. Year is zero unless the tier
// is reachable within the projection horizon.
type Arrival struct {
	Achieved   bool   `json:"achieved"`
	Reachable  bool   `json:"reachable"`
	Year       int    `json:"year,omitempty"`
	Age        int    `json:"age,omitempty"`
	MonthsAway int    `json:"months_away,omitempty"`
	Text       string `json:"text"`
}

// YearView is one projected calendar year.
type YearView struct {
	Year              int             `json:"year"`
	Age               int             `json:"age,omitempty"`
	StartBalance      decimal.Decimal `json:"start_balance"`
	TotalDeposited    decimal.Decimal `json:"total_deposited"`
	DepositedThisYear decimal.Decimal `json:"deposited_this_year"`
	Revenue           decimal.Decimal `json:"revenue"`
	EndBalance        decimal.Decimal `json:"end_balance"`
	EffectiveRate     decimal.Decimal `json:"effective_rate"`
	UninvestedCarry   decimal.Decimal `json:"uninvested_carry"`
	Months            []MonthView     `json:"months,omitempty"`
}

// MonthView is one projected month, included with ?months=1.
type MonthView struct {
	Label        string          `json:"label"`
	Date         string          `json:"date"`
	StartBalance decimal.Decimal `json:"start_balance"`
	Deposited    decimal.Decimal `json:"deposited"`
	Revenue      decimal.Decimal `json:"revenue"`
	EndBalance   decimal.Decimal `json:"end_balance"`
}

// Projection is the response body of /v1/projection/:level.
type Projection struct {
	Level Level      `json:"level"`
	Years []YearView `json:"years"`
}

// Delta captures the change between two snapshots.
type Delta struct {
	Savings  decimal.Decimal `json:"savings"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

func (d Delta) isZero() bool {
	return d.Savings.IsZero() && d.Income.IsZero() && d.Expenses.IsZero()
}

// Event is emitted whenever a recompute changes the plan.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     *Delta    `json:"delta,omitempty"`
}

// Status is daemon runtime state for UI/CLI clients.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	Cron            string    `json:"cron,omitempty"`
	PollCount       int64     `json:"poll_count"`
	PlanCurrency    string    `json:"plan_currency"`
	CurrentLevel    string    `json:"current_level,omitempty"`
	TotalSavings    string    `json:"total_savings,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

func buildSnapshot(st *pipeline.State, res *pipeline.EstimateResult, currency string, now time.Time) Snapshot {
	s := st.Snapshot
	snap := Snapshot{
		At:                       now,
		Today:                    st.Today.String(),
		Currency:                 currency,
		TotalSavings:             s.TotalSavings,
		MonthlyPassiveIncome:     s.MonthlyPassiveIncome,
		EstimatedMonthlyExpenses: s.EstimatedMonthlyExpenses,
		MonthsOfExpensesSaved:    s.MonthsOfExpensesSaved,
		CoveragePercent:          s.CoveragePercent,
		CurrentLevel:             s.CurrentLevelID,
		CurrentAchieved:          s.CurrentAchieved,
		NextLevel:                s.NextLevelID,
		Unconverted:              st.Unconverted,
	}
	if st.FX.Valid() {
		snap.FX = &FXView{
			Pair:   st.FX.Base + "/" + st.FX.Quote,
			Value:  st.FX.Value,
			AsOf:   st.FX.AsOf,
			Source: st.FX.Source,
		}
	}

	estimates := make(map[string]model.Estimate)
	if res != nil {
		for _, e := range res.Estimates {
			estimates[e.LevelID] = e
		}
	}
	for _, m := range s.Ladder.Sorted() {
		snap.Levels = append(snap.Levels, levelView(m, s, estimates[m.ID]))
	}
	return snap
}

func levelView(m model.Milestone, s model.Snapshot, est model.Estimate) Level {
	lv := Level{
		ID:                m.ID,
		Order:             m.Order,
		Label:             m.Label,
		MinSavings:        m.MinSavings,
		MinMonthlyRevenue: m.MinMonthlyRevenue,
	}
	if p, ok := s.ProgressFor(m.ID); ok {
		lv.SavingsProgress = p.Savings
		lv.RevenueProgress = p.Revenue
		lv.Overall = p.Overall
	}
	achieved := cli.Reached(s, m.ID)
	lv.Arrival = Arrival{
		Achieved:  achieved,
		Reachable: est.Reached,
		Text:      cli.FormatArrival(est, achieved),
	}
	if est.Reached {
		lv.Arrival.Year = est.Year
		lv.Arrival.Age = est.Age
		lv.Arrival.MonthsAway = est.MonthsAway
	}
	return lv
}

func yearViews(rows []model.YearRow, withMonths bool) []YearView {
	out := make([]YearView, 0, len(rows))
	for _, r := range rows {
		y := YearView{
			Year:              r.Year,
			Age:               r.Age,
			StartBalance:      r.StartBalance,
			TotalDeposited:    r.TotalDeposited,
			DepositedThisYear: r.DepositedThisYear,
			Revenue:           r.Revenue,
			EndBalance:        r.EndBalance,
			EffectiveRate:     r.EffectiveRate,
			UninvestedCarry:   r.UninvestedCarry,
		}
		if withMonths {
			for _, m := range r.Months {
				y.Months = append(y.Months, MonthView{
					Label:        m.Label,
					Date:         m.Date.String(),
					StartBalance: m.StartBalance,
					Deposited:    m.Deposited,
					Revenue:      m.Revenue,
					EndBalance:   m.EndBalance,
				})
			}
		}
		out = append(out, y)
	}
	return out
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Savings:  curr.TotalSavings.Sub(prev.TotalSavings),
		Income:   curr.MonthlyPassiveIncome.Sub(prev.MonthlyPassiveIncome),
		Expenses: curr.EstimatedMonthlyExpenses.Sub(prev.EstimatedMonthlyExpenses),
	}
}

// estimatesChanged reports whether any tier's arrival moved.
func estimatesChanged(prev, curr Snapshot) bool {
	if len(prev.Levels) != len(curr.Levels) {
		return true
	}
	for i := range prev.Levels {
		if prev.Levels[i].ID != curr.Levels[i].ID || prev.Levels[i].Arrival != curr.Levels[i].Arrival {
			return true
		}
	}
	return false
}
