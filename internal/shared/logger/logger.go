// Package logger is the structured logger shared by every module. Messages go
// through logrus; call sites attach fields with zap field constructors.
package logger

import (
	"context"
	"io"
	"os"

	"pass-questions/internal/shared/contextkeys"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	jsonTimestamp = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Config selects level and output format. JSON is forced in production.
type Config struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Format      string `env:"LOG_FORMAT" envDefault:"text"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Service     string `env:"SERVICE_NAME" envDefault:"pass-questions"`
}

func (c Config) json() bool {
	return c.Format == "json" || c.Environment == "production" || c.Environment == "prod"
}

// LogrusLogger implements Logger on a logrus entry.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger reads Config from the environment. Unparseable values fall back
// to the defaults.
func NewLogger() Logger {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		cfg = Config{Level: "info", Format: "text", Service: "pass-questions"}
	}
	return New(cfg)
}

// NewLoggerWithConfig builds a logger with an explicit level and format.
func NewLoggerWithConfig(level string, format string) Logger {
	return New(Config{Level: level, Format: format})
}

func New(cfg Config) Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(parseLevel(cfg.Level))
	base.SetFormatter(formatter(cfg))

	entry := logrus.NewEntry(base)
	if cfg.Service != "" {
		entry = entry.WithField("service", cfg.Service)
	}
	return &LogrusLogger{entry: entry}
}

// NewNopLogger discards everything. Constructors fall back to it when handed
// a nil logger.
func NewNopLogger() Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

func formatter(cfg Config) logrus.Formatter {
	if cfg.json() {
		return &logrus.JSONFormatter{TimestampFormat: jsonTimestamp}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: textTimestamp,
		ForceColors:     cfg.Environment == "development",
	}
}

// fields splits zap.Field arguments off the message arguments and encodes
// them as logrus fields.
func (l *LogrusLogger) fields(args []interface{}) (*logrus.Entry, []interface{}) {
	var enc *zapcore.MapObjectEncoder
	msg := make([]interface{}, 0, len(args))
	for _, arg := range args {
		f, ok := arg.(zap.Field)
		if !ok {
			msg = append(msg, arg)
			continue
		}
		if enc == nil {
			enc = zapcore.NewMapObjectEncoder()
		}
		f.AddTo(enc)
	}
	if enc == nil {
		return l.entry, msg
	}
	return l.entry.WithFields(enc.Fields), msg
}

func (l *LogrusLogger) Debug(args ...interface{}) {
	e, msg := l.fields(args)
	e.Debug(msg...)
}

func (l *LogrusLogger) Info(args ...interface{}) {
	e, msg := l.fields(args)
	e.Info(msg...)
}

func (l *LogrusLogger) Warn(args ...interface{}) {
	e, msg := l.fields(args)
	e.Warn(msg...)
}

func (l *LogrusLogger) Error(args ...interface{}) {
	e, msg := l.fields(args)
	e.Error(msg...)
}

// Fatal logs and exits the process.
func (l *LogrusLogger) Fatal(args ...interface{}) {
	e, msg := l.fields(args)
	e.Fatal(msg...)
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

var contextFields = []struct {
	key  interface{}
	name string
}{
	{contextkeys.UserIDKey, "uid"},
	{contextkeys.UserEmailKey, "email"},
	{contextkeys.UserRoleKey, "role"},
	{contextkeys.SessionIDKey, "session_id"},
	{contextkeys.RequestIDKey, "request_id"},
	{contextkeys.ComponentKey, "component"},
	{contextkeys.OperationKey, "operation"},
}

// WithContext attaches the request identity carried by ctx. Empty values
// are skipped.
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	data := logrus.Fields{}
	for _, f := range contextFields {
		if v, ok := ctx.Value(f.key).(string); ok && v != "" {
			data[f.name] = v
		}
	}
	if len(data) == 0 {
		return l
	}
	return &LogrusLogger{entry: l.entry.WithFields(data)}
}

func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}
