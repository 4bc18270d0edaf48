package cli

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/nestegg/internal/model"
)

// FormatThreshold formats one milestone criterion compactly, "-" when unset.
func FormatThreshold(d *decimal.Decimal, currency string) string {
	if d == nil {
		return "-"
	}
	return FormatCompact(*d) + " " + currency
}

// FormatArrival describes when est reaches its milestone. reached reports
// whether the milestone is already met today.
func FormatArrival(est model.Estimate, reached bool) string {
	switch {
	case reached:
		return "reached"
	case len(est.Rows) == 0:
		return "no instruments"
	case !est.Reached:
		return "beyond horizon"
	case est.Age > 0:
		return fmt.Sprintf("%d (age %d, %s)", est.Year, est.Age, FormatMonths(est.MonthsAway))
	default:
		return fmt.Sprintf("%d (%s)", est.Year, FormatMonths(est.MonthsAway))
	}
}

// Reached reports whether the snapshot shows full progress on level id.
func Reached(snap model.Snapshot, id string) bool {
	p, ok := snap.ProgressFor(id)
	return ok && p.Overall.GreaterThanOrEqual(decimal.NewFromInt(1))
}

// LevelName is the display name of a milestone, its id when unlabeled.
func LevelName(m model.Milestone) string {
	if m.Label != "" {
		return m.Label
	}
	return m.ID
}
