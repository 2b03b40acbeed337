package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Component(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug").Component("classifier")

	log.Error().Int64("chat.id", 42).Msg("unable to find supergroup")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "classifier", line["component"])
	assert.Equal(t, float64(42), line["chat.id"])
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info().Msg("hidden")
	log.Debug().Msg("hidden")

	assert.Empty(t, buf.String())
}

func TestNewWithWriter_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_CreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New("info", path)

	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.FileExists(t, path)
}

func TestGet_NoopWhenUninitialized(t *testing.T) {
	saved := Global
	Global = nil
	t.Cleanup(func() { Global = saved })

	assert.NotPanics(t, func() {
		Get().Error().Msg("dropped")
	})
	assert.NotNil(t, OrGlobal(nil))
}
