// Package logger writes the diagnostic log. Entries go to a rotating file
// beside the habit data, and to stderr as well when debugging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitly/internal/config"
	"github.com/julianstephens/habitly/internal/constants"
)

var (
	// Logger is nil until Init succeeds; the helpers below are no-ops until then
	Logger *log.Logger

	path string
)

type Config struct {
	Debug bool
	// Storage is the storage location. The log lives in its data directory,
	// or the default config directory for non-file backends.
	Storage string
}

// Dir returns the log directory for a storage location
func Dir(storage string) string {
	return filepath.Join(config.DataDir(storage), "logs")
}

// Path returns the active log file, or "" before Init
func Path() string {
	return path
}

func Init(cfg Config) error {
	dir := Dir(cfg.Storage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	path = filepath.Join(dir, constants.AppName+".log")

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 5,
		MaxAge:     90, // days
		Compress:   true,
	}

	// logfmt keeps the file greppable; debug output is for humans
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
		Prefix:          constants.AppName,
		Formatter:       log.LogfmtFormatter,
	}
	var w io.Writer = file
	if cfg.Debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		opts.CallerOffset = 2
		opts.Formatter = log.TextFormatter
		w = io.MultiWriter(os.Stderr, file)
	}

	Logger = log.NewWithOptions(w, opts)
	return nil
}

func Debug(msg string, keyvals ...any) { emit(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...any) { emit(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...any) { emit(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...any) { emit(log.ErrorLevel, msg, keyvals) }

func emit(level log.Level, msg string, keyvals []any) {
	if Logger != nil {
		Logger.Log(level, msg, keyvals...)
	}
}
