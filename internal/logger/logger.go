package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leasebill/billing-engine/internal/types"
)

// Logger wraps zap.SugaredLogger so call sites never import zap directly.
type Logger struct {
	*zap.SugaredLogger
}

// L is a package-level fallback logger for scripts and tests. Everywhere
// else services should take a *Logger as an explicit constructor argument.
var L *Logger

func init() {
	L, _ = NewLogger()
}

// NewLogger builds a production-configured logger at info level. Use
// NewLoggerAtLevel when the configured level matters (cmd/billingengine).
func NewLogger() (*Logger, error) {
	return NewLoggerAtLevel(types.LogLevelInfo)
}

// NewLoggerAtLevel builds a production-configured logger at the given level.
func NewLoggerAtLevel(level types.LogLevel) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if zapLevel, err := zapcore.ParseLevel(string(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewTestLogger builds a development logger suitable for test output.
func NewTestLogger() *Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &Logger{SugaredLogger: zapLogger.Sugar()}
}

func GetLogger() *Logger {
	if L == nil {
		L, _ = NewLogger()
	}
	return L
}

// WithContext attaches the request and org identifiers carried on ctx so
// every log line from a request or run can be correlated.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(
			"request_id", types.GetRequestID(ctx),
			"org_id", types.GetOrgID(ctx),
		),
	}
}

func GetLoggerWithContext(ctx context.Context) *Logger {
	return GetLogger().WithContext(ctx)
}
