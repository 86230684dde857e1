package datesync

import (
	"slices"

	"github.com/tartampluch/go-datepicker/internal/config"
)

// ListKind identifies one of the three option lists of a date picker.
type ListKind int

const (
	// DayList holds one label per day of the selected month.
	DayList ListKind = iota
	// MonthList holds the twelve month labels.
	MonthList
	// YearList holds the year window around the selected year.
	YearList
)

func (k ListKind) String() string {
	switch k {
	case DayList:
		return "day"
	case MonthList:
		return "month"
	case YearList:
		return "year"
	default:
		return "unknown"
	}
}

// OptionList is the host widget contract: an ordered list of display strings
// with a single selected position.
//
// SetSelectedIndex may synchronously raise the host's own selection-changed
// notification; the Synchronizer tolerates that feedback.
type OptionList interface {
	SetOptions(options []string)
	SelectedIndex() int
	SetSelectedIndex(index int)
}

// MemoryList is an OptionList held in memory. Like a toolkit combo box it
// reports every index change, programmatic or not, through OnChanged.
type MemoryList struct {
	options  []string
	selected int

	// OnChanged is called after the selected index changed.
	OnChanged func(index int)
}

// NewMemoryList returns an empty list with nothing selected.
func NewMemoryList() *MemoryList {
	return &MemoryList{selected: config.NoSelection}
}

// Options returns a copy of the current options.
func (l *MemoryList) Options() []string {
	return slices.Clone(l.options)
}

// SetOptions replaces the options. A selection pointing past the new end is cleared.
func (l *MemoryList) SetOptions(options []string) {
	l.options = slices.Clone(options)
	if l.selected >= len(l.options) {
		l.setSelected(config.NoSelection)
	}
}

// SelectedIndex returns the selected position, or config.NoSelection.
func (l *MemoryList) SelectedIndex() int {
	return l.selected
}

// SetSelectedIndex selects index, or clears the selection when index is out of range.
func (l *MemoryList) SetSelectedIndex(index int) {
	if index < 0 || index >= len(l.options) {
		index = config.NoSelection
	}
	l.setSelected(index)
}

// SelectedValue returns the selected option, or "" when nothing is selected.
func (l *MemoryList) SelectedValue() string {
	if l.selected < 0 {
		return ""
	}
	return l.options[l.selected]
}

func (l *MemoryList) setSelected(index int) {
	if index == l.selected {
		return
	}
	l.selected = index
	if l.OnChanged != nil {
		l.OnChanged(index)
	}
}
