package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevel_Severity(t *testing.T) {
	assert.Equal(t, SeverityDebug, LevelDebug.Severity())
	assert.Equal(t, SeverityInfo, LevelInfo.Severity())
	assert.Equal(t, SeverityWarning, LevelWarn.Severity())
	assert.Equal(t, SeverityError, LevelError.Severity())
	assert.Equal(t, SeverityCritical, LevelFatal.Severity())
	assert.Equal(t, SeverityDefault, LevelUnknown.Severity())

	assert.Equal(t, SeverityDefault, Level(6).Severity())
	assert.Equal(t, SeverityDefault, Level(-1).Severity())
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"Warn":    LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"unknown": LevelUnknown,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = ParseLevel("warning")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestLevel_YAML(t *testing.T) {
	var cfg struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: error\n"), &cfg))
	assert.Equal(t, LevelError, cfg.Level)

	assert.Error(t, yaml.Unmarshal([]byte("level: loud\n"), &cfg))

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "level: error\n", string(out))
}
