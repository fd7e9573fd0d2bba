package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/internal/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.ObservabilityConfig
		wantErr   bool
		wantLevel zapcore.Level
	}{
		{name: "json info", cfg: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"}, wantLevel: zapcore.InfoLevel},
		{name: "text debug", cfg: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "text"}, wantLevel: zapcore.DebugLevel},
		{name: "upper case level", cfg: config.ObservabilityConfig{LogLevel: "WARN", LogFormat: "json"}, wantLevel: zapcore.WarnLevel},
		{name: "invalid level", cfg: config.ObservabilityConfig{LogLevel: "loud", LogFormat: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
		})
	}
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(shared.WithRequestID(context.Background(), "req-1"), base).Info("with id")
	WithContext(context.Background(), base).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
