package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datepicker/internal/config"
	"github.com/tartampluch/go-datepicker/internal/contacts"
	"github.com/tartampluch/go-datepicker/internal/server"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

const sampleBook = `BEGIN:VCARD
VERSION:3.0
FN:Ada Lovelace
BDAY:1815-12-10
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Leap Friend
BDAY:--02-29
END:VCARD
`

// setupTestApp builds a headless app. Preferences start empty so the picker
// opens on now.
func setupTestApp(t *testing.T, now time.Time, prefs map[string]string) (*PickerApp, *MockFetcher) {
	t.Helper()
	a := test.NewApp()
	for k, v := range prefs {
		a.Preferences().SetString(k, v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fetcher := new(MockFetcher)
	app := NewPickerApp(a, ctx, nil, &contacts.Importer{Fetcher: fetcher})
	app.Clock = MockClock{CurrentTime: now}
	app.SetupI18n()
	app.BuildMainWindow()
	t.Cleanup(app.Window.Close)

	return app, fetcher
}

// -----------------------------------------------------------------------------
// Start-up state
// -----------------------------------------------------------------------------

func TestInitialDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	t.Run("Today without saved date", func(t *testing.T) {
		app, _ := setupTestApp(t, now, nil)
		assert.Equal(t, day(2025, 6, 15), app.Picker.SelectedDate())
		assert.Equal(t, "Not updated yet", app.updatedLabel.Text)
	})

	t.Run("Saved date", func(t *testing.T) {
		app, _ := setupTestApp(t, now, map[string]string{config.PrefSelectedDate: "1999-12-31"})
		got := app.Picker.SelectedDate()
		assert.Equal(t, "1999-12-31", got.Format(config.DateFormatISO))
	})

	t.Run("Malformed saved date", func(t *testing.T) {
		app, _ := setupTestApp(t, now, map[string]string{config.PrefSelectedDate: "31/12/1999"})
		assert.Equal(t, day(2025, 6, 15), app.Picker.SelectedDate())
	})

	t.Run("Saved formats", func(t *testing.T) {
		app, _ := setupTestApp(t, now, map[string]string{
			config.PrefDayFormat:   "2",
			config.PrefMonthFormat: "Jan",
		})
		assert.Equal(t, "15", app.Picker.daySelect.Selected)
		assert.Equal(t, "Jun", app.Picker.monthSelect.Selected)
		assert.Equal(t, "2", app.dayFormat.Text)
	})
}

func TestInitialDate_StartDateWins(t *testing.T) {
	a := test.NewApp()
	a.Preferences().SetString(config.PrefSelectedDate, "1999-12-31")

	app := NewPickerApp(a, context.Background(), nil, &contacts.Importer{})
	app.Clock = MockClock{CurrentTime: day(2025, 1, 1)}
	app.StartDate = day(2030, 5, 5)
	app.SetupI18n()
	app.BuildMainWindow()
	defer app.Window.Close()

	assert.Equal(t, day(2030, 5, 5), app.Picker.SelectedDate())
}

// -----------------------------------------------------------------------------
// Change handler
// -----------------------------------------------------------------------------

func TestDateChange_UpdatesLabelAndPreferences(t *testing.T) {
	app, _ := setupTestApp(t, day(2023, 1, 31), nil)

	app.Picker.monthSelect.SetSelected("February")

	assert.Equal(t, "Updated by event handler.  New date 2023-02-28", app.updatedLabel.Text)
	assert.Equal(t, "2023-02-28", app.Preferences.String(config.PrefSelectedDate))
}

func TestDateChange_PublishesFeed(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 3, 1), nil)

	srv := server.NewFeedServer("0")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Start(ctx) }()
	require.Eventually(t, func() bool { return srv.URL() != "" }, 2*time.Second, 20*time.Millisecond)

	app.Server = srv
	app.Picker.SetSelectedDate(day(2025, 3, 15))

	resp, err := http.Get(srv.URL())
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "DTSTART;VALUE=DATE:20250315")
	assert.Contains(t, string(body), "Selected date: 2025-03-15")
}

func TestFeedLabel(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 3, 1), nil)
	assert.Equal(t, "Calendar feed disabled", app.feedLabel.Text)

	app.Server = server.NewFeedServer(config.DefaultPort)
	app.refreshFeedLabel()
	assert.Equal(t, "Calendar feed: http://127.0.0.1:18081/", app.feedLabel.Text)
}

// -----------------------------------------------------------------------------
// Formats & navigation
// -----------------------------------------------------------------------------

func TestValidateFormats(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 3, 1), nil)

	assert.NoError(t, app.validateDayFormat(config.DefaultDayOptionFormat))
	assert.NoError(t, app.validateDayFormat("_2"))
	assert.EqualError(t, app.validateDayFormat(""), "Format cannot be empty")
	assert.EqualError(t, app.validateDayFormat("Monday"), "Format must give each entry a distinct label")

	assert.NoError(t, app.validateMonthFormat(config.DefaultMonthOptionFormat))
	assert.NoError(t, app.validateMonthFormat("01"))
	assert.Error(t, app.validateMonthFormat("2006"))
}

func TestApplyFormats(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 6, 15), nil)

	app.dayFormat.SetText("02")
	app.monthFormat.SetText("01")
	app.applyFormats()

	assert.Equal(t, "15", app.Picker.daySelect.Selected)
	assert.Equal(t, "06", app.Picker.monthSelect.Selected)
	assert.Equal(t, "02", app.Preferences.String(config.PrefDayFormat))
	assert.Equal(t, "01", app.Preferences.String(config.PrefMonthFormat))
}

func TestApplyFormats_RejectsInvalid(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 6, 15), nil)

	app.dayFormat.SetText("Monday")
	app.applyFormats()

	assert.Equal(t, config.DefaultDayOptionFormat, app.Picker.DayOptionFormat())
	assert.Empty(t, app.Preferences.String(config.PrefDayFormat))
}

func TestJumpToYear(t *testing.T) {
	app, _ := setupTestApp(t, day(2024, 2, 29), nil)

	app.yearEntry.SetText("1900")
	app.jumpToYear()

	assert.Equal(t, day(1900, 2, 28), app.Picker.SelectedDate(), "1900 is not a leap year")
	assert.Equal(t, "1900", app.Picker.yearSelect.Selected)
	assert.Equal(t, "1890", app.Picker.yearSelect.Options[0])
	assert.Empty(t, app.yearEntry.Text)

	app.yearEntry.SetText("0")
	app.jumpToYear()
	assert.Equal(t, day(1900, 2, 28), app.Picker.SelectedDate())
}

func TestGoToday(t *testing.T) {
	app, _ := setupTestApp(t, time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC), map[string]string{
		config.PrefSelectedDate: "2001-01-01",
	})

	app.goToday()
	assert.Equal(t, day(2025, 6, 15), app.Picker.SelectedDate())
}

// -----------------------------------------------------------------------------
// Localization
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 3, 1), nil)
	assert.Equal(t, "Today", app.GetMsg(config.TKeyBtnToday))
	assert.ElementsMatch(t, []string{"en", "fr"}, app.SupportedLanguages)

	app.Picker.SetSelectedDate(day(2025, 3, 2))
	app.changeLanguage("fr")

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, "Aujourd'hui", app.GetMsg(config.TKeyBtnToday))
	assert.Equal(t, "Mis à jour par le gestionnaire d'événement.  Nouvelle date 2025-03-02", app.updatedLabel.Text)
	assert.Equal(t, "Date choisie : 2025-03-02", app.summary(day(2025, 3, 2)))
}

func TestLocalization_MissingKey(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 3, 1), nil)
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))

	app.Localizer = nil
	assert.Equal(t, "Selected date: 2025-03-02", app.summary(day(2025, 3, 2)))
}

// -----------------------------------------------------------------------------
// Birthdays
// -----------------------------------------------------------------------------

func TestSetBirthdays_SelectMovesPicker(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 6, 15), nil)

	list, err := contacts.Read(context.Background(), bytes.NewBufferString(sampleBook))
	require.NoError(t, err)
	app.setBirthdays(list)

	require.Equal(t, []string{"Ada Lovelace (1815-12-10)", "Leap Friend (--02-29)"}, app.contactList.Options)
	assert.False(t, app.contactList.Disabled())

	app.contactList.SetSelectedIndex(0)
	assert.Equal(t, day(1815, 12, 10), app.Picker.SelectedDate())

	// Without a birth year the contact lands in the shown year, 1815 has no Feb 29.
	app.contactList.SetSelectedIndex(1)
	assert.Equal(t, day(1815, 2, 28), app.Picker.SelectedDate())
}

func TestImportBirthdays_Remote(t *testing.T) {
	app, fetcher := setupTestApp(t, day(2025, 6, 15), nil)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/book.vcf", "bob", "pw").
		Return(io.NopCloser(bytes.NewBufferString(sampleBook)), nil)

	app.importBirthdays(contacts.Source{Location: "https://dav.example.com/book.vcf", User: "bob", Pass: "pw"})

	fetcher.AssertExpectations(t)
	require.Eventually(t, func() bool { return len(app.contactList.Options) == 2 }, time.Second, 10*time.Millisecond)
}

func TestImportBirthdays_LocalFile(t *testing.T) {
	app, _ := setupTestApp(t, day(2025, 6, 15), nil)
	path := filepath.Join(t.TempDir(), "book"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte(sampleBook), config.FilePermUserRW))

	app.importBirthdays(app.ResolveSource(path, ""))

	require.Eventually(t, func() bool { return len(app.contactList.Options) == 2 }, time.Second, 10*time.Millisecond)
}

func TestImportBirthdays_Failure(t *testing.T) {
	app, fetcher := setupTestApp(t, day(2025, 6, 15), nil)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	app.importBirthdays(contacts.Source{Location: "https://dav.example.com/book.vcf"})

	fetcher.AssertExpectations(t)
	assert.Empty(t, app.contactList.Options)
	assert.True(t, app.contactList.Disabled())
}

// TestImportBirthdays_ErrorsFollowLanguage switches language while an import
// is failing in the background; the message is localized on the UI side.
func TestImportBirthdays_ErrorsFollowLanguage(t *testing.T) {
	app, fetcher := setupTestApp(t, day(2025, 6, 15), nil)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.importBirthdays(contacts.Source{Location: "https://dav.example.com/book.vcf"})
	}()
	app.changeLanguage("fr")
	<-done

	err := app.importEmptyError()
	assert.Equal(t, "Aucun anniversaire dans ce carnet d'adresses", err.Error())
	assert.True(t, app.contactList.Disabled())
}

func TestResolveSource_ReadsKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "bob", "s3cret"))

	app, _ := setupTestApp(t, day(2025, 6, 15), nil)

	remote := app.ResolveSource("https://dav.example.com/book.vcf", "bob")
	assert.Equal(t, "s3cret", remote.Pass)

	unknown := app.ResolveSource("https://dav.example.com/book.vcf", "eve")
	assert.Empty(t, unknown.Pass)

	local := app.ResolveSource("/tmp/book.vcf", "bob")
	assert.Empty(t, local.Pass, "credentials are only sent to URLs")
}
