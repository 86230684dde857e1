package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-datepicker/internal/config"
)

// YearEntry is an Entry that accepts up to config.YearEntryMaxDigits digits.
type YearEntry struct {
	widget.Entry
}

// NewYearEntry creates a new instance of YearEntry.
func NewYearEntry() *YearEntry {
	entry := &YearEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but digits and stops at the maximum length.
// Pasted text bypasses this filter and is caught by Year.
func (e *YearEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if len(e.Text) >= config.YearEntryMaxDigits && e.SelectedText() == "" {
		return
	}
	e.Entry.TypedRune(r)
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *YearEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// Year parses the entry text. Year 0 and overlong input are rejected.
func (e *YearEntry) Year() (int, error) {
	return parseYear(e.Text)
}

func parseYear(text string) (int, error) {
	if text == "" || len(text) > config.YearEntryMaxDigits || strings.Trim(text, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	y, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}
	if y < 1 {
		return 0, strconv.ErrRange
	}
	return y, nil
}
