// Package datesync keeps a selected calendar date and three option lists
// (day, month, year) mutually consistent.
//
// The lists belong to a host UI toolkit and are reached only through the
// OptionList interface, so the same logic drives any widget set.
package datesync

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/tartampluch/go-datepicker/internal/config"
)

// ErrListMissing is returned by Attach when one of the lists is nil.
var ErrListMissing = errors.New(config.ErrListMissing)

// DateChange describes a settled change of the selected date.
type DateChange struct {
	Old time.Time
	New time.Time
}

// Synchronizer owns the selected date and the contents of the day, month and
// year lists. It is not safe for concurrent use: every method is expected to
// run on the host's UI goroutine.
type Synchronizer struct {
	clock Clock

	selected    time.Time
	dayFormat   string
	monthFormat string

	days   []string
	months []string
	years  []int

	dayList   OptionList
	monthList OptionList
	yearList  OptionList

	// settling is non-zero while the Synchronizer writes to the lists.
	// Selection events raised by those writes are ignored.
	settling int

	listeners []func(DateChange)
}

// New returns a detached Synchronizer selecting today with the default formats.
func New(clock Clock) *Synchronizer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Synchronizer{
		clock:       clock,
		selected:    dateOnly(clock.Now()),
		dayFormat:   config.DefaultDayOptionFormat,
		monthFormat: config.DefaultMonthOptionFormat,
	}
}

// Attach hands the host lists to the Synchronizer, fills them and selects the
// current date. Until Attach succeeds no list is touched.
func (s *Synchronizer) Attach(day, month, year OptionList) error {
	if day == nil || month == nil || year == nil {
		return ErrListMissing
	}
	s.dayList, s.monthList, s.yearList = day, month, year

	s.settle(func() {
		s.months = monthLabels(s.clock.Now().Year(), s.monthFormat)
		s.monthList.SetOptions(s.months)
	})
	s.apply(s.selected)

	slog.Debug(config.MsgListsAttached,
		config.LogKeyComponent, config.CompSync,
		config.LogKeyDate, s.selected.Format(config.DateFormatISO))
	return nil
}

// Attached reports whether the host lists are available.
func (s *Synchronizer) Attached() bool {
	return s.dayList != nil && s.monthList != nil && s.yearList != nil
}

// OnSelectedDateChanged registers fn to be called once per settled change of
// the selected date, after the lists reflect the new value.
func (s *Synchronizer) OnSelectedDateChanged(fn func(DateChange)) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// SelectedDate returns the selected date at midnight.
func (s *Synchronizer) SelectedDate() time.Time {
	return s.selected
}

// SetSelectedDate selects the calendar date of t. Setting the date that is
// already selected does nothing, which stops feedback loops through the host.
func (s *Synchronizer) SetSelectedDate(t time.Time) {
	next := dateOnly(t)
	if sameDay(next, s.selected) {
		return
	}

	change := DateChange{Old: s.selected, New: next}
	s.selected = next
	s.apply(next)

	slog.Debug(config.MsgDateApplied,
		config.LogKeyComponent, config.CompSync,
		config.LogKeyOld, change.Old.Format(config.DateFormatISO),
		config.LogKeyNew, change.New.Format(config.DateFormatISO))

	for _, fn := range s.listeners {
		fn(change)
	}
}

// OnListSelectionChanged must be called by the host when the user changes the
// selection of one of the lists. It derives the new date from the three
// selections, clamping the day to the length of the resolved month.
func (s *Synchronizer) OnListSelectionChanged(kind ListKind) {
	if !s.Attached() || s.settling > 0 {
		return
	}

	di, mi, yi := s.dayList.SelectedIndex(), s.monthList.SelectedIndex(), s.yearList.SelectedIndex()
	if di < 0 || mi < 0 || yi < 0 {
		s.ignore(kind, "unset")
		return
	}
	if mi >= config.MonthsPerYear || yi >= len(s.years) {
		s.ignore(kind, "out of range")
		return
	}

	year := s.years[yi]
	month := time.Month(mi + 1)
	day := di + 1

	if maxDay := DaysIn(year, month); day > maxDay {
		slog.Debug(config.MsgDayClamped,
			config.LogKeyComponent, config.CompSync,
			config.LogKeyDay, day,
			config.LogKeyMaxDay, maxDay)
		day = maxDay
		s.settle(func() { s.dayList.SetSelectedIndex(maxDay - 1) })
	}

	// Hosts may transiently report a zero position while a list is repopulated.
	month = max(month, time.January)
	day = max(day, 1)

	s.SetSelectedDate(mustDate(year, month, day, s.selected.Location()))

	if kind != DayList {
		s.refreshDays()
	}
}

// DayOptionFormat returns the time layout of the day labels.
func (s *Synchronizer) DayOptionFormat() string {
	return s.dayFormat
}

// SetDayOptionFormat changes the time layout of the day labels and rebuilds them.
func (s *Synchronizer) SetDayOptionFormat(format string) {
	if format == s.dayFormat {
		return
	}
	s.dayFormat = format
	s.logFormat(DayList, format)
	if s.Attached() {
		s.refreshDays()
	}
}

// MonthOptionFormat returns the time layout of the month labels.
func (s *Synchronizer) MonthOptionFormat() string {
	return s.monthFormat
}

// SetMonthOptionFormat changes the time layout of the month labels and rebuilds them.
func (s *Synchronizer) SetMonthOptionFormat(format string) {
	if format == s.monthFormat {
		return
	}
	s.monthFormat = format
	s.logFormat(MonthList, format)
	if !s.Attached() {
		return
	}
	s.settle(func() {
		s.months = monthLabels(s.clock.Now().Year(), s.monthFormat)
		s.monthList.SetOptions(s.months)
		s.monthList.SetSelectedIndex(int(s.selected.Month()) - 1)
	})
}

// DaysInMonth returns the day labels of the selected month.
func (s *Synchronizer) DaysInMonth() []string {
	return slices.Clone(s.days)
}

// MonthsInRange returns the twelve month labels.
func (s *Synchronizer) MonthsInRange() []string {
	return slices.Clone(s.months)
}

// YearsInRange returns the offered years, ascending.
func (s *Synchronizer) YearsInRange() []int {
	return slices.Clone(s.years)
}

// apply pushes d into the lists: day labels for its month, a fresh year
// window around its year, and the three selected positions.
func (s *Synchronizer) apply(d time.Time) {
	if !s.Attached() {
		return
	}
	year, month, day := d.Date()

	s.settle(func() {
		s.days = dayLabels(year, month, s.dayFormat)
		s.dayList.SetOptions(s.days)

		s.years = yearWindow(year)
		s.yearList.SetOptions(yearLabels(s.years))

		s.dayList.SetSelectedIndex(day - 1)
		s.monthList.SetSelectedIndex(int(month) - 1)
		s.yearList.SetSelectedIndex(slices.Index(s.years, year))
	})
}

// refreshDays regenerates the day labels for the selected month and restores
// the day position, falling back to the selected day when the previous
// position no longer exists.
func (s *Synchronizer) refreshDays() {
	year, month, day := s.selected.Date()
	s.settle(func() {
		keep := s.dayList.SelectedIndex()
		s.days = dayLabels(year, month, s.dayFormat)
		s.dayList.SetOptions(s.days)
		if keep < 0 || keep >= len(s.days) {
			keep = day - 1
		}
		s.dayList.SetSelectedIndex(keep)
	})
}

func (s *Synchronizer) settle(fn func()) {
	s.settling++
	defer func() { s.settling-- }()
	fn()
}

func (s *Synchronizer) ignore(kind ListKind, reason string) {
	slog.Debug(config.MsgListIgnored,
		config.LogKeyComponent, config.CompSync,
		config.LogKeyList, kind.String(),
		config.LogKeyReason, reason)
}

func (s *Synchronizer) logFormat(kind ListKind, format string) {
	slog.Debug(config.MsgFormatChanged,
		config.LogKeyComponent, config.CompSync,
		config.LogKeyList, kind.String(),
		config.LogKeyFormat, format)
}
