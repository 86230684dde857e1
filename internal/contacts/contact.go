package contacts

import (
	"time"

	"cloudeng.io/datetime"
)

// Birthday is a contact whose vCard carries a BDAY property.
type Birthday struct {
	// UID is a deterministic hash of name and date, stable across imports.
	UID string

	Name string

	// Date is the parsed birth date. When YearKnown is false the year is
	// config.DefaultLeapYear so that --02-29 stays representable.
	Date time.Time

	// YearKnown indicates if the vCard contained a year or just --MM-DD.
	YearKnown bool
}

// DateIn returns the date to select for b: the birth date itself when the year
// is known, otherwise its month and day in year. A Feb 29 birthday falls back
// to Feb 28 in common years.
func (b Birthday) DateIn(year int, loc *time.Location) time.Time {
	if b.YearKnown {
		return time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, loc)
	}
	day := b.Date.Day()
	if last := int(datetime.DaysInMonth(year, datetime.Month(b.Date.Month()))); day > last {
		day = last
	}
	return time.Date(year, b.Date.Month(), day, 0, 0, 0, 0, loc)
}
