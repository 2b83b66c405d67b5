package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

const (
	EnvLogDir      = "DORA_LOG_DIR"
	EnvLogLevel    = "DORA_LOG_LEVEL"
	EnvServiceName = "DORA_SERVICE_NAME"

	DefaultServiceName = "num2int"
)

var (
	global     atomic.Pointer[zerolog.Logger] // global, shared logger.
	once       sync.Once                      // guards global.
	logFile    *os.File
	logfileErr error
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// ParseLevel parses a zerolog level name, falling back to info on an empty string.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}

// New builds a standalone logger writing JSON lines to w.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Logfile returns the log file for this instance of the program, if any.
// You generally shouldn't use this function directly.
func Logfile() (*os.File, error) {
	initLogger()
	return logFile, logfileErr
}

func newDiode(w io.Writer) io.Writer {
	const size, pollInterval = 1024, 15 * time.Millisecond
	// use diode so we don't have racy writes and safely drop messages
	return diode.NewWriter(w, size, pollInterval, func(missed int) { log.Printf("diode: dropped %d log messages", missed) })
}

func initLogger() {
	once.Do(func() {
		servicename := envOr(EnvServiceName, DefaultServiceName)

		// logs go to stderr, and also to $DORA_LOG_DIR/<service_name>_<timestamp>.log when
		// the directory is set and writable
		var w io.Writer = os.Stderr
		var fileWarn error
		if dir, ok := os.LookupEnv(EnvLogDir); ok && dir != "" {
			if logfileErr = os.MkdirAll(dir, 0o755); logfileErr == nil {
				name := fmt.Sprintf("%s_%s.log", servicename, time.Now().UTC().Format("2006-01-02T15-04-05"))
				logFile, logfileErr = os.Create(filepath.Join(dir, name))
			}
			if logfileErr != nil {
				fileWarn = logfileErr
			} else {
				w = io.MultiWriter(logFile, os.Stderr)
			}
		}

		lvl, lvlErr := ParseLevel(envOr(EnvLogLevel, "info"))
		if lvlErr != nil {
			lvl = zerolog.InfoLevel
		}

		logger := zerolog.New(newDiode(w)).
			Level(lvl).
			With().
			Timestamp().
			Str("instance_id", must(uuid.NewV7()).String()).Str("service", servicename).
			Logger()

		if fileWarn != nil {
			logger.Warn().Err(fileWarn).Msg("logfile is not being used, check DORA_LOG_DIR")
		}
		if lvlErr != nil {
			logger.Warn().Err(lvlErr).Msg("invalid DORA_LOG_LEVEL, using info")
		}

		// write debug logs that give metadata about this program and its logger
		dbglogger := logger.With().
			Int("gomaxprocs", runtime.GOMAXPROCS(0)).
			Str("goarch", runtime.GOARCH).
			Str("goos", runtime.GOOS).
			Str("user", envOr("USER", "unknown")).
			Logger()

		if info, ok := debug.ReadBuildInfo(); ok {
			dbglogger.Debug().Str("go", info.GoVersion).Str("module", info.Main.Path).Str("version", info.Main.Version).Msg("buildinfo")
		}
		dbglogger.Debug().Msg("logger init")
		global.Store(&logger)
	})
}

// Global returns the global logger. This function initializes the logger exactly once.
// It is safe to call this function from multiple goroutines.
// The Global logger relies on the following environment variables:
//
//   - DORA_LOG_DIR: directory to also write a log file to, "<service_name>_<timestamp>.log". Unset logs to stderr only.
//   - DORA_LOG_LEVEL: the log level, defaults to "info". Possible values are "debug", "info", "warn", "error", "fatal", "panic".
//   - DORA_SERVICE_NAME: the name of the service, defaults to "num2int"
//   - USER: the user running the service, defaults to "unknown"
func Global() *zerolog.Logger {
	initLogger()
	return global.Load()
}

// AddFieldsToGlobal adds fields to the global logger, thread-safe. Avoid this where possible, but sometimes it's handy.
func AddFieldsToGlobal(fields map[string]any) {
	for {
		old := Global()
		newentry := old.With()
		for k, v := range fields {
			newentry = newentry.Any(k, v)
		}
		updated := newentry.Logger()

		if global.CompareAndSwap(old, &updated) {
			return
		}
	}
}
