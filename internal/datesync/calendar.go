package datesync

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloudeng.io/datetime"
	"github.com/tartampluch/go-datepicker/internal/config"
)

// ErrInvalidDate reports a (year, month, day) triple that is not a calendar date.
// Reaching it from the synchronization logic is a bug, so it is raised as a panic.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// DaysIn returns the number of days of month in year, honoring leap years.
func DaysIn(year int, month time.Month) int {
	return int(datetime.DaysInMonth(year, datetime.Month(month)))
}

// dateOnly drops the clock part of t, keeping its location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay compares the calendar date of a and b, ignoring time and location.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// mustDate builds a date and panics on an impossible combination instead of
// letting time.Date normalize it into another day.
func mustDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month < time.January || month > time.December || day < 1 || day > DaysIn(year, month) {
		panic(fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day))
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// dayLabels renders one label per day of (year, month).
func dayLabels(year int, month time.Month, format string) []string {
	n := DaysIn(year, month)
	labels := make([]string, n)
	for i := range n {
		labels[i] = time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC).Format(format)
	}
	return labels
}

// monthLabels renders the twelve months using the first day of each month of refYear.
func monthLabels(refYear int, format string) []string {
	labels := make([]string, config.MonthsPerYear)
	for i := range labels {
		labels[i] = time.Date(refYear, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format(format)
	}
	return labels
}

// yearWindow returns year-YearWindow .. year+YearWindow inclusive.
func yearWindow(year int) []int {
	years := make([]int, 0, 2*config.YearWindow+1)
	for y := year - config.YearWindow; y <= year+config.YearWindow; y++ {
		years = append(years, y)
	}
	return years
}

func yearLabels(years []int) []string {
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	return labels
}
