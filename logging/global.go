// Package logging sets up the gateway's slog logger: text on the console,
// JSON in a weekly rotating file, plus a request logging middleware.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/openfda-gateway/config"
)

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level for an environment. An explicit
// LOG_LEVEL wins, except under test where the console stays at error.
func GetConsoleLogLevel(env config.Environment, logLevel string) slog.Level {
	if env == config.EnvTest {
		return slog.LevelError
	}
	if logLevel != "" {
		return parseLogLevel(logLevel)
	}
	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is always debug; the file is the full record
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// NewLogger builds the console+file logger. An empty logDir, or a directory
// that cannot be used, gives a console-only logger.
func NewLogger(console io.Writer, cfg *config.Config) (*slog.Logger, *RotatingLogger) {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(cfg.Env, cfg.LogLevel),
	})

	if cfg.LogDir == "" {
		return slog.New(consoleHandler), nil
	}

	rotating := NewRotatingLogger(cfg.LogDir, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	if err := rotating.Open(); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		return logger, nil
	}

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating
}

// InitLogger initializes the global logger instance and sets it as slog default
func InitLogger(cfg *config.Config) {
	logger, file := NewLogger(os.Stdout, cfg)
	DefaultLoggingService = &LoggingService{Logger: logger, file: file}
	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	return DefaultLoggingService.file.Close()
}

// Logger returns the global logger, or a stderr fallback before InitLogger
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
