package telemetry

import (
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(build("production"))
}

// Init configures the process logger for the given environment. Production and
// staging emit JSON to stdout; other environments use zap's development encoder.
func Init(env string) {
	current.Store(build(env))
}

// SetLogger swaps the process logger and returns a func that restores the previous one.
func SetLogger(l *zap.Logger) func() {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

// L returns the process logger for callers that want zap directly.
func L() *zap.Logger {
	return current.Load()
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	current.Load().Info(msg, toZap(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	current.Load().Warn(msg, toZap(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	current.Load().Error(msg, toZap(fields)...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = current.Load().Sync()
}

func build(env string) *zap.Logger {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
