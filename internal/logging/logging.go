// Package logging provides structured logging configuration.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration options.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|console

	// File, when set, receives JSON logs through a rotating writer.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// New creates a new configured zap logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, zapcore.Lock(os.Stderr))
}

// NewWithWriter creates a logger whose console output goes to w.
func NewWithWriter(cfg Config, w zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, err
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
	}

	var encCfg zapcore.EncoderConfig
	if format == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
	}
	setKeys(&encCfg)

	var consoleEnc zapcore.Encoder
	if format == "console" {
		consoleEnc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, w, level)}

	if cfg.File != "" {
		fileEncCfg := zap.NewProductionEncoderConfig()
		setKeys(&fileEncCfg)
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncCfg), fileWriter, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	logger = logger.With(zap.String("service", "darkdork"))

	return logger, nil
}

func setKeys(c *zapcore.EncoderConfig) {
	c.TimeKey = "ts"
	c.LevelKey = "level"
	c.MessageKey = "msg"
	c.CallerKey = "caller"
	c.EncodeTime = zapcore.ISO8601TimeEncoder
}

// Sync flushes any buffered log entries.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Path returns a zap field for a filesystem path.
func Path(path string) zap.Field { return zap.String("path", path) }

// DorkID returns a zap field for a library entry id.
func DorkID(id int) zap.Field { return zap.Int("dork_id", id) }

// Category returns a zap field for a dork category.
func Category(category string) zap.Field { return zap.String("category", category) }

// Count returns a zap field for a number of records.
func Count(n int) zap.Field { return zap.Int("count", n) }

// ProjectID returns a zap field for a project id.
func ProjectID(id int64) zap.Field { return zap.Int64("project_id", id) }

// SearchID returns a zap field for a search id.
func SearchID(id int64) zap.Field { return zap.Int64("search_id", id) }

// ResultID returns a zap field for a result id.
func ResultID(id int64) zap.Field { return zap.Int64("result_id", id) }

// FindingID returns a zap field for a finding id.
func FindingID(id int64) zap.Field { return zap.Int64("finding_id", id) }

// Tag returns a zap field for a tag name.
func Tag(name string) zap.Field { return zap.String("tag", name) }

// Severity returns a zap field for a severity label.
func Severity(s string) zap.Field { return zap.String("severity", s) }

// EventType returns a zap field for an analytics event type.
func EventType(t string) zap.Field { return zap.String("event_type", t) }
