// Package log provides a leveled, structured logger for the whole node. It
// wraps zerolog behind package-level functions so callers never carry a
// logger around. Init must be called once at startup; before that, logs are
// silently discarded.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Log levels supported by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// logTestWriterName is a reserved output name used by tests and benchmarks.
const logTestWriterName = "__testWriter"

var (
	log           zerolog.Logger
	level         = LogLevelInfo
	logTestWriter io.Writer

	// panicOnInvalidChars is set via LOG_PANIC_ON_INVALIDCHARS=true. It makes
	// the logger panic when a log line carries invalid UTF-8, which almost
	// always means a []byte was logged without %x.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

// invalidCharChecker panics when a log line carries the UTF-8 replacement
// rune, the telltale of a []byte formatted without %x.
type invalidCharChecker struct{}

func (invalidCharChecker) Write(p []byte) (int, error) {
	if strings.ContainsRune(string(p), utf8.RuneError) {
		panic(fmt.Sprintf("log line with invalid chars: %q", string(p)))
	}
	return len(p), nil
}

// Init initializes the global logger. Output may be "stdout", "stderr" or a
// file path. If errorOutput is not nil, every entry with level error or
// above is duplicated there as raw JSON.
func Init(logLevel, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	if output != logTestWriterName {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "3:04PM"}
	}
	if panicOnInvalidChars {
		out = io.MultiWriter(out, invalidCharChecker{})
	}
	if errorOutput != nil {
		// MultiLevelWriter keeps the per-entry level visible, so the filter
		// receives WriteLevel calls instead of plain Writes.
		out = zerolog.MultiLevelWriter(out, levelFilterWriter{w: errorOutput})
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		panic(fmt.Sprintf("invalid log level %q: %v", logLevel, err))
	}
	log = zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger()
	level = logLevel
	log.Info().Msgf("logger initialized with level %s", logLevel)
}

// levelFilterWriter forwards only error-or-above entries.
type levelFilterWriter struct{ w io.Writer }

func (l levelFilterWriter) Write(p []byte) (int, error) { return len(p), nil }

func (l levelFilterWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	if lvl >= zerolog.ErrorLevel {
		return l.w.Write(p)
	}
	return len(p), nil
}

// Level returns the level the logger was initialized with.
func Level() string { return level }

// Logger returns the global zerolog.Logger, for libraries that want one.
func Logger() *zerolog.Logger { return &log }

func logw(ev *zerolog.Event, msg string, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}

// Debug logs the arguments at debug level.
func Debug(args ...any) { log.Debug().Msg(fmt.Sprint(args...)) }

// Info logs the arguments at info level.
func Info(args ...any) { log.Info().Msg(fmt.Sprint(args...)) }

// Warn logs the arguments at warning level.
func Warn(args ...any) { log.Warn().Msg(fmt.Sprint(args...)) }

// Error logs the arguments at error level.
func Error(args ...any) { log.Error().Msg(fmt.Sprint(args...)) }

// Fatal logs the arguments at fatal level and exits.
func Fatal(args ...any) { log.Fatal().Msg(fmt.Sprint(args...)) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { log.Debug().Msgf(format, args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { log.Info().Msgf(format, args...) }

// Warnf logs a formatted message at warning level.
func Warnf(format string, args ...any) { log.Warn().Msgf(format, args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { log.Error().Msgf(format, args...) }

// Fatalf logs a formatted message at fatal level and exits.
func Fatalf(format string, args ...any) { log.Fatal().Msgf(format, args...) }

// Debugw logs a message at debug level with alternating key-value pairs.
func Debugw(msg string, keyvals ...any) { logw(log.Debug(), msg, keyvals) }

// Infow logs a message at info level with alternating key-value pairs.
func Infow(msg string, keyvals ...any) { logw(log.Info(), msg, keyvals) }

// Warnw logs a message at warning level with alternating key-value pairs.
func Warnw(msg string, keyvals ...any) { logw(log.Warn(), msg, keyvals) }

// Errorw logs an error at error level with alternating key-value pairs.
func Errorw(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}
