// Package logger wraps zap behind a small package-level API so feature
// packages can log without carrying a logger value around.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a bag of structured context attached to a log line.
type Fields map[string]interface{}

var (
	mu   sync.Mutex
	base *zap.SugaredLogger
)

// Init configures the process logger. env "production" selects the JSON
// production config, anything else the development console config.
// Calling it more than once replaces the previous logger.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap config building only fails on broken output paths; fall back
		// to a plain stderr logger rather than dying before main starts.
		l = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zapcore.DebugLevel,
		))
	}
	base = l.Sugar()
}

// WithError wraps an error into Fields under the "error" key.
func WithError(err error) Fields {
	return Fields{"error": err}
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		l, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
		base = l.Sugar()
	}
	return base
}

func flatten(fields []Fields) []interface{} {
	var kv []interface{}
	for _, f := range fields {
		for k, v := range f {
			kv = append(kv, k, v)
		}
	}
	return kv
}

func Debug(msg string, fields ...Fields) { get().Debugw(msg, flatten(fields)...) }
func Info(msg string, fields ...Fields)  { get().Infow(msg, flatten(fields)...) }
func Warn(msg string, fields ...Fields)  { get().Warnw(msg, flatten(fields)...) }
func Error(msg string, fields ...Fields) { get().Errorw(msg, flatten(fields)...) }

// Sync flushes buffered log entries. Meant for deferred use in main.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
