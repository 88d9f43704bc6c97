package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, "", cfg.RatesFile)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "logfmt", cfg.Log.Format)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CONVERTER_HTTP_ADDR", ":9090")
	t.Setenv("CONVERTER_RATES_FILE", "/etc/converter/rates.json")
	t.Setenv("CONVERTER_REFRESH_INTERVAL", "30s")
	t.Setenv("CONVERTER_LOG_LEVEL", "debug")
	t.Setenv("CONVERTER_LOG_FORMAT", "json")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/etc/converter/rates.json", cfg.RatesFile)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONVERTER_HTTP_ADDR=:7070\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CONVERTER_HTTP_ADDR") }) //nolint:errcheck

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"level", "CONVERTER_LOG_LEVEL", "loud"},
		{"format", "CONVERTER_LOG_FORMAT", "xml"},
		{"duration", "CONVERTER_REFRESH_INTERVAL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestValidate_RefreshInterval(t *testing.T) {
	cfg := Config{RatesFile: "rates.json", Log: Log{Level: "info", Format: "logfmt"}}
	assert.Error(t, cfg.Validate())

	cfg.RefreshInterval = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Log{Level: "warn", Format: "logfmt"}, &buf)
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=warn")
	assert.Contains(t, buf.String(), "msg=shown")

	buf.Reset()
	logger, err = NewLogger(Log{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	level.Info(logger).Log("msg", "hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = NewLogger(Log{Level: "trace"}, &buf)
	assert.Error(t, err)
}
