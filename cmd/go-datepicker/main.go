package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-datepicker/internal/config"
	"github.com/tartampluch/go-datepicker/internal/contacts"
	"github.com/tartampluch/go-datepicker/internal/server"
	"github.com/tartampluch/go-datepicker/internal/ui"
)

// options carries the parsed command line.
type options struct {
	debug     bool
	date      time.Time
	vcard     string
	vcardUser string
	port      string // empty means "use the saved preference"
}

// main delegates to runMain so that deferred calls run before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns config.ExitCodeSuccess or config.ExitCodeError.
func runMain(args []string) int {
	opts, showVersion, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	if showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(opts.debug)
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// parseFlags reads the command line without touching the global FlagSet.
func parseFlags(args []string) (options, bool, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)

	showVersion := fs.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debug := fs.Bool(config.FlagDebug, false, config.FlagDescDebug)
	date := fs.String(config.FlagDate, "", config.FlagDescDate)
	vcard := fs.String(config.FlagVCard, "", config.FlagDescVCard)
	vcardUser := fs.String(config.FlagVCardUser, "", config.FlagDescVCardUser)
	port := fs.String(config.FlagPort, "", config.FlagDescPort)

	if err := fs.Parse(args); err != nil {
		return options{}, false, err
	}

	opts := options{
		debug:     *debug,
		vcard:     *vcard,
		vcardUser: *vcardUser,
		port:      *port,
	}

	if *date != "" {
		d, err := time.ParseInLocation(config.DateFormatISO, *date, time.Local)
		if err != nil {
			return options{}, false, fmt.Errorf("%s: %w", config.ErrDateFlag, err)
		}
		opts.date = d
	}

	if opts.port != "" {
		if err := server.ValidatePort(opts.port); err != nil {
			return options{}, false, err
		}
	}

	return opts, *showVersion, nil
}

// run wires the fyne application and blocks until its window closes.
func run(ctx context.Context, opts options) error {
	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)

	port := opts.port
	if port == "" {
		port = prefs.StringWithFallback(config.PrefServerPort, config.DefaultPort)
	} else {
		prefs.SetString(config.PrefServerPort, port)
	}

	var srv *server.FeedServer
	if port == config.PortOff {
		slog.Info(config.MsgFeedDisabled, config.LogKeyComponent, config.CompMain)
	} else if err := server.ValidatePort(port); err != nil {
		// Invalid saved port: run without the feed.
		slog.Warn(config.MsgFeedDisabled,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyPort, port,
			config.LogKeyError, err)
	} else {
		srv = server.NewFeedServer(port)
	}

	gui := ui.NewPickerApp(a, ctx, srv, &contacts.Importer{Fetcher: contacts.NewHTTPFetcher()})
	gui.StartDate = opts.date
	if opts.vcard != "" {
		gui.StartSource = gui.ResolveSource(opts.vcard, opts.vcardUser)
	}

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging sends JSON logs to stdout and, when possible, to a log file
// in the user cache directory. The returned Closer may be nil.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := logFilePath(); err == nil {
		// Truncated on every start.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func logFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
