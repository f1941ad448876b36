package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Engine struct {
		SlotDuration  time.Duration `yaml:"slotDuration" env:"TEST_SLOT_DURATION"`
		PeakStartHour int           `yaml:"peakStartHour"`
	} `yaml:"engine"`
	Debug bool `yaml:"debug"`
}

func TestLoadConfig_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "http:\n  port: \"9090\"\nengine:\n  slotDuration: 30m\n  peakStartHour: 16\ndebug: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_FILE", path)

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.Engine.SlotDuration)
	assert.Equal(t, 16, cfg.Engine.PeakStartHour)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9090\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("TEST_SLOT_DURATION", "1h")
	t.Setenv("ENGINE_PEAKSTARTHOUR", "17")

	var cfg testConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Engine.SlotDuration)
	assert.Equal(t, 17, cfg.Engine.PeakStartHour)
}

func TestLoadConfig_RejectsNonPointer(t *testing.T) {
	assert.Error(t, LoadConfig(testConfig{}))
	assert.Error(t, LoadConfig(nil))
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENGINE_PEAKSTARTHOUR", "not-a-number")

	var cfg testConfig
	assert.Error(t, LoadConfig(&cfg))
}
