package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-datepicker/internal/config"
	"github.com/tartampluch/go-datepicker/internal/contacts"
	"github.com/tartampluch/go-datepicker/internal/datesync"
	"github.com/tartampluch/go-datepicker/internal/export"
	"github.com/tartampluch/go-datepicker/internal/server"
	"github.com/zalando/go-keyring"
)

// PickerApp owns the main window, the preferences and the background services
// fed by the date picker.
type PickerApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server   *server.FeedServer // nil when the feed is disabled
	Importer *contacts.Importer
	Exporter *export.Exporter
	Clock    datesync.Clock

	// StartDate overrides the saved date when non-zero.
	StartDate time.Time
	// StartSource is imported once the window is shown.
	StartSource contacts.Source

	SupportedLanguages []string

	Picker       *DatePicker
	updatedLabel *widget.Label
	feedLabel    *widget.Label
	dayFormat    *widget.Entry
	monthFormat  *widget.Entry
	yearEntry    *YearEntry
	langSelect   *widget.Select
	contactList  *widget.Select

	// lastChange is the latest settled date change, zero before the first one.
	lastChange time.Time

	birthdaysMut sync.RWMutex
	birthdays    []contacts.Birthday
}

// NewPickerApp constructs the application and wires its dependencies.
func NewPickerApp(a fyne.App, ctx context.Context, srv *server.FeedServer, importer *contacts.Importer) *PickerApp {
	app := &PickerApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Importer:           importer,
		Clock:              datesync.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
	app.Exporter = &export.Exporter{Clock: app.Clock, FormatSummary: app.summary}
	return app
}

// Run shows the main window, starts the feed and blocks in the fyne event loop.
func (app *PickerApp) Run() {
	app.SetupI18n()
	app.BuildMainWindow()

	if app.Server != nil {
		go app.serveFeed()
	}
	if app.StartSource.Location != "" {
		go app.importBirthdays(app.StartSource)
	}

	app.Window.ShowAndRun()
}

// BuildMainWindow creates the window and its picker, restoring saved state.
func (app *PickerApp) BuildMainWindow() fyne.Window {
	slog.Info(config.MsgWindowOpen, config.LogKeyComponent, config.CompUI)

	app.Exporter.Clock = app.Clock
	app.Picker = NewDatePicker(app.Clock)
	app.Picker.SetDayOptionFormat(app.Preferences.StringWithFallback(config.PrefDayFormat, config.DefaultDayOptionFormat))
	app.Picker.SetMonthOptionFormat(app.Preferences.StringWithFallback(config.PrefMonthFormat, config.DefaultMonthOptionFormat))
	app.Picker.SetSelectedDate(app.initialDate())
	app.Picker.OnSelectedDateChanged(app.onDateChanged)

	app.updatedLabel = widget.NewLabel("")
	app.feedLabel = widget.NewLabel("")

	app.dayFormat = widget.NewEntry()
	app.dayFormat.Validator = app.validateDayFormat
	app.monthFormat = widget.NewEntry()
	app.monthFormat.Validator = app.validateMonthFormat

	app.yearEntry = NewYearEntry()
	app.yearEntry.OnSubmitted = func(string) { app.jumpToYear() }

	app.langSelect = widget.NewSelect(app.SupportedLanguages, app.changeLanguage)

	app.contactList = widget.NewSelect(nil, app.selectBirthday)
	app.contactList.Disable()

	app.Window = app.App.NewWindow("")
	app.Window.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.refreshContent()

	// The saved date is published before any change event.
	app.publish(app.Picker.SelectedDate())
	return app.Window
}

// refreshContent (re)builds the localized layout around the existing widgets.
func (app *PickerApp) refreshContent() {
	app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	app.refreshUpdatedLabel()
	app.refreshFeedLabel()

	app.dayFormat.SetText(app.Picker.DayOptionFormat())
	app.monthFormat.SetText(app.Picker.MonthOptionFormat())
	app.yearEntry.SetPlaceHolder(app.GetMsg(config.TKeyHelpJumpYear))
	app.contactList.PlaceHolder = app.GetMsg(config.TKeyLblContacts)
	app.langSelect.Selected = app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.langSelect.Refresh()

	headers := container.NewGridWithColumns(config.LayoutColumnsPicker,
		widget.NewLabel(app.GetMsg(config.TKeyLblDay)),
		widget.NewLabel(app.GetMsg(config.TKeyLblMonth)),
		widget.NewLabel(app.GetMsg(config.TKeyLblYear)),
	)
	pickerCard := widget.NewCard(app.GetMsg(config.TKeyLblPicker), "",
		container.NewVBox(headers, app.Picker, app.updatedLabel))

	itemDay := widget.NewFormItem(app.GetMsg(config.TKeyLblDayFormat), app.dayFormat)
	itemDay.HintText = app.GetMsg(config.TKeyHelpFormat)
	itemMonth := widget.NewFormItem(app.GetMsg(config.TKeyLblMonthFormat), app.monthFormat)
	itemYear := widget.NewFormItem(app.GetMsg(config.TKeyLblJumpYear), app.yearEntry)
	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), app.langSelect)

	form := widget.NewForm(itemDay, itemMonth, itemYear, itemLang)
	form.SubmitText = app.GetMsg(config.TKeyBtnApply)
	form.OnSubmit = app.applyFormats
	formatsCard := widget.NewCard(app.GetMsg(config.TKeyLblFormats), "", form)

	todayBtn := widget.NewButton(app.GetMsg(config.TKeyBtnToday), app.goToday)
	importBtn := widget.NewButton(app.GetMsg(config.TKeyBtnImport), app.browseVCard)
	actions := container.NewGridWithColumns(config.LayoutColumnsDouble, todayBtn, importBtn)

	app.Window.SetContent(container.NewVBox(pickerCard, formatsCard, actions, app.contactList, app.feedLabel))
}

// initialDate picks StartDate, then the saved date, then today.
func (app *PickerApp) initialDate() time.Time {
	if !app.StartDate.IsZero() {
		return app.StartDate
	}
	saved := app.Preferences.String(config.PrefSelectedDate)
	if saved == "" {
		return app.Clock.Now()
	}
	d, err := time.ParseInLocation(config.DateFormatISO, saved, time.Local)
	if err != nil {
		slog.Warn(config.ErrPrefDateInvalid,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyValue, saved,
			config.LogKeyError, err)
		return app.Clock.Now()
	}
	return d
}

// onDateChanged is the picker's change handler.
func (app *PickerApp) onDateChanged(change datesync.DateChange) {
	app.lastChange = change.New
	app.refreshUpdatedLabel()
	app.Preferences.SetString(config.PrefSelectedDate, change.New.Format(config.DateFormatISO))
	app.publish(change.New)
}

func (app *PickerApp) refreshUpdatedLabel() {
	if app.lastChange.IsZero() {
		app.updatedLabel.SetText(app.GetMsg(config.TKeyLblNotUpdated))
		return
	}
	app.updatedLabel.SetText(app.getMsgWith(config.TKeyLblUpdated, map[string]interface{}{
		config.TemplateKeyDate: app.lastChange.Format(config.DateFormatISO),
	}))
}

// publish renders date into the feed.
func (app *PickerApp) publish(date time.Time) {
	if app.Server == nil {
		return
	}
	data, err := app.Exporter.Render(date)
	if err != nil {
		slog.Error(config.ErrExportFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}
	app.Server.Publish(data)
}

// summary is the localized event title of the exported date.
func (app *PickerApp) summary(date time.Time) string {
	iso := date.Format(config.DateFormatISO)
	msg, err := app.localize(config.TKeyEvtSummary, map[string]interface{}{config.TemplateKeyDate: iso})
	if err != nil {
		return fmt.Sprintf(config.FallbackSummary, iso)
	}
	return msg
}

func (app *PickerApp) serveFeed() {
	if err := app.Server.Start(app.Ctx); err != nil {
		slog.Error(config.ErrServerStartup,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		fyne.Do(func() {
			app.Server = nil
			app.refreshFeedLabel()
		})
	}
}

func (app *PickerApp) refreshFeedLabel() {
	if app.Server == nil {
		app.feedLabel.SetText(app.GetMsg(config.TKeyLblFeedOff))
		return
	}
	url := fmt.Sprintf(config.FormatFeedURL, config.LocalhostBindAddr, app.Server.Port)
	app.feedLabel.SetText(app.getMsgWith(config.TKeyLblFeed, map[string]interface{}{config.TemplateKeyURL: url}))
}

// -----------------------------------------------------------------------------
// Formats, year jump, language
// -----------------------------------------------------------------------------

func (app *PickerApp) validateDayFormat(format string) error {
	// January has the longest month, so 31 distinct labels prove the layout.
	return app.validateFormat(format, func(i int) time.Time {
		return time.Date(2025, time.January, i+1, 0, 0, 0, 0, time.UTC)
	}, 31)
}

func (app *PickerApp) validateMonthFormat(format string) error {
	return app.validateFormat(format, func(i int) time.Time {
		return time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}, config.MonthsPerYear)
}

// validateFormat rejects layouts that are empty or render duplicate labels,
// which a drop-down tracking its selection by text cannot tell apart.
func (app *PickerApp) validateFormat(format string, nth func(int) time.Time, n int) error {
	if format == "" {
		return errors.New(app.GetMsg(config.TKeyErrFormatEmpty))
	}
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		label := nth(i).Format(format)
		if seen[label] {
			return errors.New(app.GetMsg(config.TKeyErrFormatDup))
		}
		seen[label] = true
	}
	return nil
}

// applyFormats pushes the format entries into the picker and saves them.
func (app *PickerApp) applyFormats() {
	if err := app.dayFormat.Validate(); err != nil {
		dialog.ShowError(err, app.Window)
		return
	}
	if err := app.monthFormat.Validate(); err != nil {
		dialog.ShowError(err, app.Window)
		return
	}

	app.Picker.SetDayOptionFormat(app.dayFormat.Text)
	app.Picker.SetMonthOptionFormat(app.monthFormat.Text)
	app.Preferences.SetString(config.PrefDayFormat, app.dayFormat.Text)
	app.Preferences.SetString(config.PrefMonthFormat, app.monthFormat.Text)

	if app.yearEntry.Text != "" {
		app.jumpToYear()
	}
}

// jumpToYear moves the selection to the year typed in the year entry,
// keeping month and day. Feb 29 becomes Feb 28 in common years.
func (app *PickerApp) jumpToYear() {
	year, err := app.yearEntry.Year()
	if err != nil {
		dialog.ShowError(errors.New(app.GetMsg(config.TKeyErrYearNum)), app.Window)
		return
	}

	cur := app.Picker.SelectedDate()
	day := min(cur.Day(), datesync.DaysIn(year, cur.Month()))

	slog.Debug(config.MsgYearJump,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyValue, year)

	app.Picker.SetSelectedDate(time.Date(year, cur.Month(), day, 0, 0, 0, 0, cur.Location()))
	app.yearEntry.SetText("")
}

func (app *PickerApp) goToday() {
	app.Picker.SetSelectedDate(app.Clock.Now())
}

func (app *PickerApp) changeLanguage(lang string) {
	if lang == "" || lang == app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage) {
		return
	}
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()
	app.refreshContent()
}

// -----------------------------------------------------------------------------
// Birthdays
// -----------------------------------------------------------------------------

// ResolveSource builds an import source, reading the password of user from
// the OS keyring for remote locations.
func (app *PickerApp) ResolveSource(location, user string) contacts.Source {
	src := contacts.Source{Location: location, User: user}
	if user == "" || !src.IsRemote() {
		return src
	}
	if p, err := keyring.Get(config.KeyringService, user); err == nil {
		src.Pass = p
	} else {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyUser, user,
			config.LogKeyError, err)
	}
	return src
}

func (app *PickerApp) browseVCard() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		go app.importBirthdays(contacts.Source{Location: path})
	}, app.Window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
	d.Show()
}

// importBirthdays runs off the UI goroutine and hands the result back with fyne.Do.
func (app *PickerApp) importBirthdays(src contacts.Source) {
	list, err := app.Importer.Import(app.Ctx, src)
	if err != nil {
		slog.Error(config.ErrImportFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		fyne.Do(func() { app.showImportError(err) })
		return
	}
	if len(list) == 0 {
		fyne.Do(func() { dialog.ShowError(app.importEmptyError(), app.Window) })
		return
	}
	fyne.Do(func() { app.setBirthdays(list) })
}

// showImportError localizes err. The localizer belongs to the UI goroutine.
func (app *PickerApp) showImportError(err error) {
	dialog.ShowError(fmt.Errorf("%s: %w", app.GetMsg(config.TKeyErrImport), err), app.Window)
}

func (app *PickerApp) importEmptyError() error {
	return errors.New(app.GetMsg(config.TKeyErrNoBirthdays))
}

// setBirthdays fills the contact drop-down. It must run on the UI goroutine.
func (app *PickerApp) setBirthdays(list []contacts.Birthday) {
	app.birthdaysMut.Lock()
	app.birthdays = list
	app.birthdaysMut.Unlock()

	names := make([]string, len(list))
	for i, b := range list {
		names[i] = contactLabel(b)
	}
	app.contactList.Options = names
	app.contactList.ClearSelected()
	app.contactList.Enable()
}

// selectBirthday selects the birthday of the chosen contact. Contacts without
// a birth year land in the year currently shown.
func (app *PickerApp) selectBirthday(string) {
	idx := app.contactList.SelectedIndex()
	if idx < 0 {
		return
	}
	app.birthdaysMut.RLock()
	if idx >= len(app.birthdays) {
		app.birthdaysMut.RUnlock()
		return
	}
	b := app.birthdays[idx]
	app.birthdaysMut.RUnlock()

	cur := app.Picker.SelectedDate()
	app.Picker.SetSelectedDate(b.DateIn(cur.Year(), cur.Location()))
}

// contactLabel renders "Name (1990-03-15)", or "Name (--03-15)" without a year.
func contactLabel(b contacts.Birthday) string {
	layout := config.DateFormatISO
	if !b.YearKnown {
		layout = config.DateFormatNoYearD
	}
	return fmt.Sprintf(config.FormatContactLabel, b.Name, b.Date.Format(layout))
}
