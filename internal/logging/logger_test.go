package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, tc := range []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	} {
		logger, err := New(tc.level, FormatConsole)
		require.NoError(t, err, tc.level)
		assert.True(t, logger.Core().Enabled(tc.want), tc.level)
		if tc.want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(tc.want-1), tc.level)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	logger, err := New("info", FormatJSON)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", FormatConsole)
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
