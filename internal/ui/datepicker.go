package ui

import (
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-datepicker/internal/config"
	"github.com/tartampluch/go-datepicker/internal/datesync"
)

// DatePicker is a date selector made of three drop-downs: day, month and year.
// The drop-downs are kept consistent by a datesync.Synchronizer, so picking
// 31 then February lands on the last day of February.
type DatePicker struct {
	widget.BaseWidget

	sync *datesync.Synchronizer

	daySelect   *widget.Select
	monthSelect *widget.Select
	yearSelect  *widget.Select
}

// NewDatePicker creates a picker selecting today according to clock.
func NewDatePicker(clock datesync.Clock) *DatePicker {
	p := &DatePicker{sync: datesync.New(clock)}

	p.daySelect = widget.NewSelect(nil, func(string) { p.sync.OnListSelectionChanged(datesync.DayList) })
	p.monthSelect = widget.NewSelect(nil, func(string) { p.sync.OnListSelectionChanged(datesync.MonthList) })
	p.yearSelect = widget.NewSelect(nil, func(string) { p.sync.OnListSelectionChanged(datesync.YearList) })

	if err := p.sync.Attach(selectList{p.daySelect}, selectList{p.monthSelect}, selectList{p.yearSelect}); err != nil {
		slog.Error(config.ErrListMissing,
			config.LogKeyComponent, config.CompPicker,
			config.LogKeyError, err)
	}

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements the fyne.Widget interface.
func (p *DatePicker) CreateRenderer() fyne.WidgetRenderer {
	row := container.NewGridWithColumns(config.LayoutColumnsPicker, p.daySelect, p.monthSelect, p.yearSelect)
	return widget.NewSimpleRenderer(row)
}

// SelectedDate returns the selected date at midnight.
func (p *DatePicker) SelectedDate() time.Time { return p.sync.SelectedDate() }

// SetSelectedDate selects the calendar date of t.
func (p *DatePicker) SetSelectedDate(t time.Time) { p.sync.SetSelectedDate(t) }

// DayOptionFormat returns the time layout of the day drop-down labels.
func (p *DatePicker) DayOptionFormat() string { return p.sync.DayOptionFormat() }

// SetDayOptionFormat changes the time layout of the day drop-down labels.
func (p *DatePicker) SetDayOptionFormat(format string) { p.sync.SetDayOptionFormat(format) }

// MonthOptionFormat returns the time layout of the month drop-down labels.
func (p *DatePicker) MonthOptionFormat() string { return p.sync.MonthOptionFormat() }

// SetMonthOptionFormat changes the time layout of the month drop-down labels.
func (p *DatePicker) SetMonthOptionFormat(format string) { p.sync.SetMonthOptionFormat(format) }

// OnSelectedDateChanged registers fn for every settled date change.
func (p *DatePicker) OnSelectedDateChanged(fn func(datesync.DateChange)) {
	p.sync.OnSelectedDateChanged(fn)
}

// selectList exposes a widget.Select as a datesync.OptionList.
// Labels must be unique within a list: Select tracks its selection by text.
type selectList struct {
	sel *widget.Select
}

// SetOptions swaps the options and keeps the selected position without
// raising OnChanged.
func (l selectList) SetOptions(options []string) {
	idx := l.sel.SelectedIndex()
	l.sel.Options = options
	if idx >= 0 && idx < len(options) {
		l.sel.Selected = options[idx]
	} else {
		l.sel.Selected = ""
	}
	l.sel.Refresh()
}

func (l selectList) SelectedIndex() int {
	return l.sel.SelectedIndex()
}

func (l selectList) SetSelectedIndex(i int) {
	if i < 0 || i >= len(l.sel.Options) {
		l.sel.ClearSelected()
		return
	}
	l.sel.SetSelectedIndex(i)
}
