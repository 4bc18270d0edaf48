package projection

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths moves d forward n calendar months, clamping the day to the
// target month's length (Jan 31 + 1 month = Feb 28/29).
func addMonths(d civil.Date, n int) civil.Date {
	total := d.Year*12 + int(d.Month) - 1 + n
	year := total / 12
	month := time.Month(total%12 + 1)
	day := d.Day
	if last := daysIn(month, year); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// fullMonthsBetween counts whole months from 'from' to 'to', flooring any
// partial month. A 'to' on the last day of its month completes the month
// even when from.Day is larger, so clamped month-end dates stay aligned.
func fullMonthsBetween(from, to civil.Date) int {
	n := (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
	if to.Day < from.Day && to.Day != daysIn(to.Month, to.Year) {
		n--
	}
	return n
}

// ageAt returns whole years between birth and d with a month/day cutoff.
// A zero birth date yields zero.
func ageAt(birth, d civil.Date) int {
	if birth.IsZero() {
		return 0
	}
	age := d.Year - birth.Year
	if d.Month < birth.Month || (d.Month == birth.Month && d.Day < birth.Day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func monthLabel(d civil.Date) string {
	return fmt.Sprintf("%s %d", d.Month.String()[:3], d.Year)
}
