package pipeline

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/model"
)

func mustDate(tb testing.TB, s string) civil.Date {
	tb.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		tb.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func testLadder() model.Ladder {
	// deliberately out of order
	return model.Ladder{
		{ID: "stable", Order: 3, MinSavings: dp("100000"), MinMonthlyRevenue: dp("1000")},
		{ID: "starter", Order: 1, MinSavings: dp("10000")},
		{ID: "cushion", Order: 2, MinSavings: dp("50000"), MinMonthlyRevenue: dp("200")},
	}
}

func overview(savings, income, expenses string) model.Overview {
	return model.Overview{
		Currency:                 "EGP",
		TotalSavings:             d(savings),
		MonthlyPassiveIncome:     d(income),
		EstimatedMonthlyExpenses: d(expenses),
	}
}

func TestBuildSnapshot_SelectsCurrentAndNext(t *testing.T) {
	tests := []struct {
		name         string
		ov           model.Overview
		wantCurrent  string
		wantAchieved bool
		wantNext     string
	}{
		{"nothing qualifies", overview("500", "0", "0"), "starter", false, "cushion"},
		{"first tier", overview("12000", "0", "0"), "starter", true, "cushion"},
		{"savings without revenue", overview("60000", "150", "0"), "starter", true, "cushion"},
		{"middle tier", overview("60000", "250", "0"), "cushion", true, "stable"},
		{"final tier", overview("200000", "5000", "0"), "stable", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := BuildSnapshot(tt.ov, testLadder(), "EGP", nil)
			assert.Equal(t, tt.wantCurrent, snap.CurrentLevelID)
			assert.Equal(t, tt.wantAchieved, snap.CurrentAchieved)
			assert.Equal(t, tt.wantNext, snap.NextLevelID)
		})
	}
}

func TestBuildSnapshot_LadderSortedForDisplay(t *testing.T) {
	snap := BuildSnapshot(overview("0", "0", "0"), testLadder(), "EGP", nil)
	require.Len(t, snap.Ladder, 3)
	assert.Equal(t, []string{"starter", "cushion", "stable"}, []string{snap.Ladder[0].ID, snap.Ladder[1].ID, snap.Ladder[2].ID})
}

func TestBuildSnapshot_RunwayAndCoverage(t *testing.T) {
	snap := BuildSnapshot(overview("60000", "1500", "5000"), testLadder(), "EGP", nil)
	require.NotNil(t, snap.MonthsOfExpensesSaved)
	require.NotNil(t, snap.CoveragePercent)
	assert.True(t, snap.MonthsOfExpensesSaved.Equal(d("12")))
	assert.True(t, snap.CoveragePercent.Equal(d("30")))

	unknown := BuildSnapshot(overview("60000", "1500", "0"), testLadder(), "EGP", nil)
	assert.Nil(t, unknown.MonthsOfExpensesSaved)
	assert.Nil(t, unknown.CoveragePercent)

	negative := BuildSnapshot(overview("60000", "1500", "-10"), testLadder(), "EGP", nil)
	assert.Nil(t, negative.CoveragePercent)
}

func TestBuildSnapshot_Progress(t *testing.T) {
	snap := BuildSnapshot(overview("25000", "100", "0"), testLadder(), "EGP", nil)

	starter, ok := snap.ProgressFor("starter")
	require.True(t, ok)
	assert.True(t, starter.Overall.Equal(d("1")), "capped at 1, got %s", starter.Overall)
	assert.True(t, starter.Revenue.Equal(d("1")), "absent threshold counts as met")

	cushion, _ := snap.ProgressFor("cushion")
	assert.True(t, cushion.Savings.Equal(d("0.5")))
	assert.True(t, cushion.Revenue.Equal(d("0.5")))
	assert.True(t, cushion.Overall.Equal(d("0.5")))

	stable, _ := snap.ProgressFor("stable")
	assert.True(t, stable.Overall.Equal(d("0.1")), "min of 0.25 and 0.1, got %s", stable.Overall)
}

func TestBuildSnapshot_NormalizesCurrency(t *testing.T) {
	ov := model.Overview{
		Currency:             "USD",
		TotalSavings:         d("1000"),
		MonthlyPassiveIncome: d("10"),
	}
	rate := &fx.Rate{Base: "USD", Quote: "EGP", Value: d("50")}

	snap := BuildSnapshot(ov, testLadder(), "EGP", rate)
	assert.True(t, snap.TotalSavings.Equal(d("50000")))
	assert.True(t, snap.MonthlyPassiveIncome.Equal(d("500")))
	assert.Equal(t, "cushion", snap.CurrentLevelID)

	passthrough := BuildSnapshot(ov, testLadder(), "EGP", nil)
	assert.True(t, passthrough.TotalSavings.Equal(d("1000")))
	assert.False(t, passthrough.CurrentAchieved)
}

func TestBuildSnapshot_NeverSkipsUnmetLowerTier(t *testing.T) {
	ladder := testLadder()
	for _, s := range []string{"0", "9999", "10000", "49999", "50000", "99999", "100000", "1000000"} {
		for _, r := range []string{"0", "199", "200", "999", "1000"} {
			snap := BuildSnapshot(overview(s, r, "0"), ladder, "EGP", nil)
			if !snap.CurrentAchieved {
				continue
			}
			for _, m := range snap.Ladder {
				cur, _ := ladder.Find(snap.CurrentLevelID)
				if m.Order < cur.Order {
					assert.True(t, m.Satisfied(d(s), d(r)), "current %s while lower tier %s unmet (s=%s r=%s)", cur.ID, m.ID, s, r)
				}
			}
		}
	}
}

func TestBuildSnapshot_EmptyLadder(t *testing.T) {
	snap := BuildSnapshot(overview("100", "1", "10"), nil, "EGP", nil)
	assert.Empty(t, snap.CurrentLevelID)
	assert.Empty(t, snap.Progress)
	assert.NotNil(t, snap.MonthsOfExpensesSaved)
}
