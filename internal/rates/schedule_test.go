package rates

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func testSchedule(t *testing.T) *Schedule {
	t.Helper()
	return New(2024, dec(t, "27"), dec(t, "-2"), dec(t, "10"))
}

func TestRateForYear_StepsFromBase(t *testing.T) {
	s := testSchedule(t)

	tests := []struct {
		year int
		want string
	}{
		{2024, "27"},
		{2025, "25"},
		{2026, "23"},
		{2032, "11"},
		{2033, "10"}, // 9 below floor
		{2100, "10"},
	}
	for _, tt := range tests {
		got := s.RateForYear(tt.year)
		if !got.Equal(dec(t, tt.want)) {
			t.Errorf("RateForYear(%d) = %s, want %s", tt.year, got, tt.want)
		}
	}
}

func TestRateForYear_PositiveStep(t *testing.T) {
	s := New(2020, dec(t, "5"), dec(t, "0.5"), dec(t, "3"))
	if got := s.RateForYear(2024); !got.Equal(dec(t, "7")) {
		t.Fatalf("RateForYear(2024) = %s, want 7", got)
	}
}

func TestRateForYear_DecadesBeforeBaseReturnsFloor(t *testing.T) {
	s := testSchedule(t)
	for _, y := range []int{1950, 1990, 2023, -5000} {
		if got := s.RateForYear(y); !got.Equal(s.Floor) {
			t.Errorf("RateForYear(%d) = %s, want floor %s", y, got, s.Floor)
		}
	}
}

func TestRateForYear_NeverBelowFloor(t *testing.T) {
	s := testSchedule(t)
	s.SetOverride(2030, dec(t, "4"))
	for y := 1900; y <= 2300; y++ {
		if got := s.RateForYear(y); got.LessThan(s.Floor) {
			t.Fatalf("RateForYear(%d) = %s, below floor %s", y, got, s.Floor)
		}
	}
}

func TestOverrides_TakePrecedence(t *testing.T) {
	s := testSchedule(t)
	s.SetOverride(2022, dec(t, "18.25"))
	s.SetOverride(2026, dec(t, "20"))

	if got := s.RateForYear(2022); !got.Equal(dec(t, "18.25")) {
		t.Fatalf("RateForYear(2022) = %s, want 18.25", got)
	}
	if got := s.RateForYear(2026); !got.Equal(dec(t, "20")) {
		t.Fatalf("RateForYear(2026) = %s, want 20", got)
	}
	if !s.IsOverridden(2026) {
		t.Fatal("IsOverridden(2026) = false, want true")
	}

	if !s.ClearOverride(2026) {
		t.Fatal("ClearOverride(2026) = false, want true")
	}
	if s.ClearOverride(2026) {
		t.Fatal("second ClearOverride(2026) = true, want false")
	}
	if got := s.RateForYear(2026); !got.Equal(dec(t, "23")) {
		t.Fatalf("RateForYear(2026) after clear = %s, want 23", got)
	}
}

func TestOverrides_SortedByYear(t *testing.T) {
	s := testSchedule(t)
	s.SetOverride(2023, dec(t, "25"))
	s.SetOverride(2019, dec(t, "15"))
	s.SetOverride(2021, dec(t, "11"))

	got := s.Overrides()
	if len(got) != 3 {
		t.Fatalf("len(Overrides()) = %d, want 3", len(got))
	}
	for i, want := range []int{2019, 2021, 2023} {
		if got[i].Year != want {
			t.Errorf("Overrides()[%d].Year = %d, want %d", i, got[i].Year, want)
		}
	}
}

func TestTable(t *testing.T) {
	s := testSchedule(t)
	tbl := s.Table(2024, 2026)
	if len(tbl) != 3 {
		t.Fatalf("len(Table) = %d, want 3", len(tbl))
	}
	if !tbl[2].Rate.Equal(dec(t, "23")) {
		t.Fatalf("Table[2] = %s, want 23", tbl[2].Rate)
	}
	if s.Table(2026, 2024) != nil {
		t.Fatal("Table with inverted range should be nil")
	}
}
