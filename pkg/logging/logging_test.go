package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)
			t.Cleanup(func() { SetLogger(zerolog.Nop()) })

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, GetLogger("test").GetLevel())

			logPath := filepath.Join(tempDir, "lumen", "lumen.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("with XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, filepath.Join("/custom/state", "lumen", "lumen.log"), getLogFilePath())
	})

	t.Run("without XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")
		got := getLogFilePath()
		assert.True(t, strings.HasSuffix(filepath.ToSlash(got), ".local/state/lumen/lumen.log"), got)
	})
}

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	logger := GetLogger("palette")
	logger.Info().Msg("rendered")
	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"component":"palette"`)
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(zerolog.Nop())
	assert.Equal(t, zerolog.Disabled, GetLogger("x").GetLevel())
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	done := LogOperationStart(zerolog.New(&buf), "detect")
	done()
	assert.Equal(t, 2, strings.Count(buf.String(), `"operation":"detect"`))
}
