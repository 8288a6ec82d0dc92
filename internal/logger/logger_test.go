package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"json warn", "warn", "json", zapcore.WarnLevel, false},
		{"bad level", "loud", "json", zapcore.InfoLevel, true},
		{"bad format", "info", "xml", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, SetLevel("info"))
			err := Init(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, Level())
		})
	}
}

func TestStdLogWritesThroughGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	StdLog(zapcore.WarnLevel).Print("slow query")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "slow query", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
