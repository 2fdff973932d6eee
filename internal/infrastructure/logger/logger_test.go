package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestProductionConfig(t *testing.T) {
	cfg := ProductionConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "production config", cfg: ProductionConfig()},
		{
			name: "debug level console",
			cfg: &Config{
				Level:      "debug",
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
		{
			name: "json to stderr",
			cfg: &Config{
				Level:      "info",
				Format:     "json",
				Output:     "stderr",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)

			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	t.Run("writes to the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shopsync.log")

		log, err := New(&Config{
			Level:      "info",
			Format:     "json",
			Output:     path,
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		})
		require.NoError(t, err)

		log.Info("started")
		_ = log.Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "started")
	})

	t.Run("unopenable file path is an error", func(t *testing.T) {
		log, err := New(&Config{
			Level:      "info",
			Format:     "json",
			Output:     filepath.Join(t.TempDir(), "missing", "dir", "shopsync.log"),
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		})

		assert.Error(t, err)
		assert.Nil(t, log)
	})
}

func TestNewForEnvironment(t *testing.T) {
	tests := []string{"development", "production", "staging"}

	for _, env := range tests {
		t.Run(env, func(t *testing.T) {
			log, err := NewForEnvironment(env)

			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestSync(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	// stdout may reject Sync on some platforms; only panics would fail here
	_ = Sync(log)
}

func TestJSONOutputShape(t *testing.T) {
	var buf bytes.Buffer

	core := zapcore.NewCore(
		buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Info("webhook received", zap.String("shop", "acme.myshopify.com"))

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "webhook received", output["msg"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, "acme.myshopify.com", output["shop"])
	assert.NotEmpty(t, output["time"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	core := zapcore.NewCore(
		buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}),
		zapcore.AddSync(&buf),
		parseLevel("info"),
	)
	log := zap.New(core)

	log.Debug("debug message")
	assert.NotContains(t, buf.String(), "debug message")

	log.Info("info message")
	assert.Contains(t, buf.String(), "info message")
}
