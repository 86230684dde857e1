package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-DatePicker/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Date Picker"
	AppID             = "com.github.tartampluch.go-datepicker"
	KeyringService    = "com.github.tartampluch.go-datepicker"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion   = "version"
	FlagDebug     = "debug"
	FlagDate      = "date"
	FlagVCard     = "vcard"
	FlagVCardUser = "vcard-user"
	FlagPort      = "port"

	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescDate      = "Initial selected date (YYYY-MM-DD), overrides the saved one"
	FlagDescVCard     = "Import birthdays from a .vcf file path or an http(s) URL"
	FlagDescVCardUser = "Basic auth user for a remote vCard URL (password read from the OS keyring)"
	FlagDescPort      = "Port of the local iCalendar feed of the selected date (0 disables it)"

	MsgVersionOutput = "%s version %s (commit %s, built %s) %s/%s\n"
)

// -----------------------------------------------------------------------------
// Date Picker Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultDayOptionFormat renders the day of month followed by the weekday name.
	DefaultDayOptionFormat = "02 Monday"

	// DefaultMonthOptionFormat renders the full month name.
	DefaultMonthOptionFormat = "January"

	// YearWindow is the number of years offered on each side of the selected year.
	YearWindow = 10

	MonthsPerYear = 12

	// NoSelection is the index reported by a list with nothing selected.
	NoSelection = -1

	// YearEntryMaxDigits bounds the year jump entry.
	YearEntryMaxDigits = 4

	DateFormatISO = "2006-01-02"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth  = 520
	MainWindowHeight = 260

	PrefSelectedDate = "selected_date"
	PrefDayFormat    = "day_option_format"
	PrefMonthFormat  = "month_option_format"
	PrefLanguage     = "language"
	PrefServerPort   = "server_port"
	PrefLastRun      = "last_run_version"

	LayoutColumnsPicker = 3
	LayoutColumnsDouble = 2

	DefaultLanguage = "en"
	LocalesDir      = "locales"
	LocalePrefix    = "active."
	LocaleSuffix    = ".json"

	// TemplateKeyDate and TemplateKeyURL name the placeholders of the locale files.
	TemplateKeyDate = "Date"
	TemplateKeyURL  = "URL"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyLblDay         = "lbl_day"
	TKeyLblMonth       = "lbl_month"
	TKeyLblYear        = "lbl_year"
	TKeyLblPicker      = "lbl_picker"
	TKeyLblUpdated     = "lbl_updated"     // Requires Date
	TKeyLblNotUpdated  = "lbl_not_updated" // Shown before the first change event
	TKeyLblFormats     = "lbl_formats"
	TKeyLblDayFormat   = "lbl_day_format"
	TKeyLblMonthFormat = "lbl_month_format"
	TKeyHelpFormat     = "help_format"
	TKeyLblJumpYear    = "lbl_jump_year"
	TKeyHelpJumpYear   = "help_jump_year"
	TKeyBtnApply       = "btn_apply"
	TKeyBtnToday       = "btn_today"
	TKeyBtnImport      = "btn_import"
	TKeyLblContacts    = "lbl_contacts"
	TKeyLblFeed        = "lbl_feed" // Requires URL
	TKeyLblFeedOff     = "lbl_feed_off"
	TKeyEvtSummary     = "event_summary" // Requires Date
	TKeyErrImport      = "err_import"
	TKeyErrNoBirthdays = "err_no_birthdays"
	TKeyErrYearNum     = "err_year_number"
	TKeyErrFormatEmpty = "err_format_empty"
	TKeyErrFormatDup   = "err_format_duplicate"
	TKeyLblLanguage    = "lbl_language"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Date Picker//Export//EN"
	ICalCalName = "Selected Date"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "godatepicker"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
	DefaultLeapYear    = 2000 // Leap year fallback for dates like --02-29
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	MinPort     = 0
	MaxPort     = 65535
	DefaultPort = "18081"
	PortOff     = "0"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s"
	FormatUID       = "%s@%s"

	FormatContactLabel = "%s (%s)"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"
	FormatFeedURL       = "http://%s:%s/"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeTextHTML        = "text/html"
	MimeXHTML           = "application/xhtml+xml"
	AcceptVCard         = "text/vcard, text/x-vcard;q=0.9, text/directory;q=0.8, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"

	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidDate     = "invalid calendar date"
	ErrListMissing     = "date picker option list is missing"
	ErrDateFlag        = "invalid -date value"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 0 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrSourceEmpty     = "vCard source is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrVCardRead       = "failed to read vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrLocNotInit      = "localizer not initialized"
	ErrExportFailed    = "failed to export selected date"
	ErrImportFailed    = "failed to import birthdays"
	ErrPrefDateInvalid = "ignoring malformed saved date"
	ErrRequestBuild    = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrStatus          = "server returned unexpected status"
	ErrContentType     = "server returned a web page instead of vCards"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary = "Selected date: %s"
	FallbackName    = "Unknown"

	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgCtxCancel     = "Context cancelled, shutting down UI"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgFeedDisabled  = "Calendar feed disabled"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgImportDone    = "Birthdays imported"
	MsgDateApplied   = "Selected date applied"
	MsgDayClamped    = "Day clamped to month length"
	MsgListsAttached = "Option lists attached"
	MsgListIgnored   = "List selection ignored"
	MsgFormatChanged = "Option format changed"
	MsgYearJump      = "Year jump requested"
	MsgWindowOpen    = "Opening main window"
	MsgFetchStart    = "Downloading vCards"
	MsgFetchStatus   = "Remote address book returned error status"
	MsgFetchType     = "Remote address book returned unexpected content type"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyDate      = "date"
	LogKeyList      = "list"
	LogKeyReason    = "reason"
	LogKeyDay       = "day"
	LogKeyMaxDay    = "max_day"
	LogKeyFormat    = "format"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeySource    = "source"
	LogKeyLength    = "content_length"
	LogKeyMime      = "content_type"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompPicker   = "date_picker"
	CompSync     = "datesync"
	CompContacts = "contacts"
	CompExport   = "export"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompMain     = "main"
	CompI18n     = "i18n"
)
