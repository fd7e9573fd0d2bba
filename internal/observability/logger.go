package observability

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/internal/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger from the observability settings.
// "json" selects the production encoder, anything else the console encoder.
func NewLogger(cfg config.ObservabilityConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zc zap.Config
	if strings.EqualFold(cfg.LogFormat, "json") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.Development = false
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// CLI output goes to stdout; logs stay on stderr
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// WithContext returns a logger annotated with the request ID carried by ctx
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := shared.RequestID(ctx); id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
