// Package logger builds zap loggers and the gin and gorm adapters around them.
// Loggers are always passed explicitly; the package holds no global logger.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error; empty means info
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string // time layout, RFC 3339 with milliseconds by default
}

// New builds a logger for cfg; a nil cfg gives an info level JSON logger on
// stdout. Unknown levels and unwritable outputs are errors.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := zapcore.ParseLevel(normalizeLevel(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format, cfg.TimeFormat), sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func normalizeLevel(level string) string {
	switch level = strings.ToLower(strings.TrimSpace(level)); level {
	case "":
		return "info"
	case "warning":
		return "warn"
	case "debug", "info", "warn", "error":
		return level
	default:
		// ParseLevel would accept dpanic, panic and fatal; they are not log levels here
		return "invalid:" + level
	}
}

func newEncoder(format, timeFormat string) zapcore.Encoder {
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return zapcore.AddSync(f), nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are expected
// on some platforms and may be ignored by callers.
func Sync(l *zap.Logger) error {
	return l.Sync()
}
