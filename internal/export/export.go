// Package export renders a selected date as a single all-day iCalendar event.
package export

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-datepicker/internal/config"
	"github.com/tartampluch/go-datepicker/internal/datesync"
)

// Exporter turns dates into RFC 5545 calendars.
type Exporter struct {
	Clock datesync.Clock // Source of DTSTAMP.

	// FormatSummary lets the UI inject a localized event title.
	FormatSummary func(date time.Time) string
}

// Render returns a VCALENDAR holding one all-day VEVENT on the calendar date
// of date. The event ends on the following day, as RFC 5545 requires for
// DATE-valued events.
func (e *Exporter) Render(date time.Time) ([]byte, error) {
	clock := e.Clock
	if clock == nil {
		clock = datesync.RealClock{}
	}

	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, date.Location())

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uidFor(day))
	event.Props.SetText(config.PropSummary, e.summary(day))

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(clock.Now().UTC())
	event.Props.Set(stamp)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(day)
	event.Props.Set(start)

	end := ical.NewProp(config.PropDTEnd)
	end.SetDate(day.AddDate(0, 0, 1))
	event.Props.Set(end)

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyDate, day.Format(config.DateFormatISO),
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

func (e *Exporter) summary(day time.Time) string {
	if e.FormatSummary != nil {
		return e.FormatSummary(day)
	}
	return fmt.Sprintf(config.FallbackSummary, day.Format(config.DateFormatISO))
}

// uidFor derives a deterministic UID from the calendar date.
func uidFor(day time.Time) string {
	hash := sha256.Sum256([]byte(day.Format(config.DateFormatISO)))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
