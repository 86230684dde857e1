// Package contacts imports birthdays from vCard data so that a date picker can
// be seeded from an address book export or a CardDAV/WebDAV URL.
package contacts

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-datepicker/internal/config"
)

// Source describes where to read vCards from.
type Source struct {
	Location string // Local path or http(s) URL
	User     string // HTTP Basic Auth Username (URLs only)
	Pass     string // HTTP Basic Auth Password (URLs only)
}

// IsRemote reports whether the source is an http(s) URL.
func (s Source) IsRemote() bool {
	u, err := url.Parse(s.Location)
	return err == nil && (u.Scheme == config.SchemeHTTP || u.Scheme == config.SchemeHTTPS)
}

// Importer reads birthdays from a Source.
type Importer struct {
	Fetcher VCardFetcher // Used for remote sources only.
}

// Import opens the source and returns its birthdays sorted by name.
func (im *Importer) Import(ctx context.Context, src Source) ([]Birthday, error) {
	log := slog.With(
		config.LogKeyComponent, config.CompContacts,
		config.LogKeySource, safeLocation(src.Location),
	)

	reader, err := im.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardRead, err)
	}
	defer func() { _ = reader.Close() }()

	birthdays, err := Read(ctx, reader)
	if err != nil {
		return nil, err
	}

	log.Info(config.MsgImportDone, config.LogKeyCount, len(birthdays))
	return birthdays, nil
}

func (im *Importer) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	if src.Location == "" {
		return nil, errors.New(config.ErrSourceEmpty)
	}
	if !src.IsRemote() {
		return os.Open(src.Location)
	}
	if im.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	return im.Fetcher.Fetch(ctx, src.Location, src.User, src.Pass)
}

// Read decodes a vCard stream and returns the cards carrying a parsable BDAY,
// sorted by name. Malformed cards and dates are skipped.
func Read(ctx context.Context, r io.Reader) ([]Birthday, error) {
	decoder := vcard.NewDecoder(r)
	var out []Birthday

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going: one broken card should not hide the others.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompContacts,
				config.LogKeyError, err)
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		date, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompContacts,
				config.LogKeyValue, bday.Value)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		input := fmt.Sprintf(config.FormatHashInput, name, date.Format(time.RFC3339))
		hash := sha256.Sum256([]byte(input))

		out = append(out, Birthday{
			UID:       fmt.Sprintf("%x", hash[:config.UIDHashLength]),
			Name:      name,
			Date:      date,
			YearKnown: yearKnown,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// parseDate handles the vCard 3 and 4 BDAY formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true, nil
		}
	}

	// Truncated dates (Year unknown): year 0 is a leap year, so --02-29 parses.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// safeLocation strips credentials and query parameters from URLs before logging.
func safeLocation(loc string) string {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return loc
	}
	return u.Scheme + "://" + u.Host + u.Path
}
