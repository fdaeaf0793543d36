package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/trailhead/utils"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "gpt-oss:20b", cfg.Model)
	assert.Equal(t, PolicyReframe, cfg.WeatherPolicy)
	assert.Equal(t, 8, cfg.DaylightStart)
	assert.Equal(t, 17, cfg.DaylightEnd)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.True(t, cfg.Reflect)
	assert.False(t, cfg.StructuredGates)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	environ := map[string]string{
		"LLM_PROVIDER":             "openai",
		"LLM_MODEL":                "llama3.1",
		"LLM_TEMPERATURE":          "0.2",
		"LLM_TIMEOUT":              "45s",
		"LLM_SEED":                 "42",
		"LLM_LOG_LEVEL":            "debug",
		"TRAILHEAD_WEATHER_POLICY": "abort",
		"TRAILHEAD_REFLECT":        "false",
		"NPS_API_KEY":              "nps-secret",
		"ANTHROPIC_API_KEY":        "sk-ant-secret",
		"UNRELATED":                "ignored",
	}

	cfg, err := load("", environ)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "llama3.1", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, 42, *cfg.Seed)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, PolicyAbort, cfg.WeatherPolicy)
	assert.False(t, cfg.Reflect)
	assert.Equal(t, "nps-secret", cfg.APIKey("nps"))
	assert.Equal(t, "sk-ant-secret", cfg.APIKey("ANTHROPIC"))
	// untouched values keep their defaults
	assert.Equal(t, "http://localhost:11434", cfg.OllamaEndpoint)
	assert.Equal(t, 17, cfg.DaylightEnd)
}

func TestLoadFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailhead.yaml")
	content := `
model: mistral
weather_policy: abort
daylight_start: 9
daylight_end: 16
log_level: info
fetch_timeout: 10s
api_keys:
  nps: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := load(path, map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, "mistral", cfg.Model)
		assert.Equal(t, PolicyAbort, cfg.WeatherPolicy)
		assert.Equal(t, 9, cfg.DaylightStart)
		assert.Equal(t, 16, cfg.DaylightEnd)
		assert.Equal(t, utils.LogLevelInfo, cfg.LogLevel)
		assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
		assert.Equal(t, "from-file", cfg.APIKey("nps"))
		assert.Equal(t, "ollama", cfg.Provider)
	})

	t.Run("environment over file", func(t *testing.T) {
		cfg, err := load(path, map[string]string{
			"LLM_MODEL":   "qwen3",
			"NPS_API_KEY": "from-env",
		})
		require.NoError(t, err)
		assert.Equal(t, "qwen3", cfg.Model)
		assert.Equal(t, "from-env", cfg.APIKey("nps"))
		assert.Equal(t, PolicyAbort, cfg.WeatherPolicy)
	})

	t.Run("path from environment", func(t *testing.T) {
		cfg, err := load("", map[string]string{ConfigFileEnv: path})
		require.NoError(t, err)
		assert.Equal(t, "mistral", cfg.Model)
	})
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := load(filepath.Join(dir, "missing.yaml"), map[string]string{})
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("no_such_field: 1\n"), 0o600))
	_, err = load(bad, map[string]string{})
	assert.Error(t, err, "unknown fields are rejected")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := load(empty, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-oss:20b", cfg.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{name: "defaults"},
		{
			name:    "unknown provider",
			opts:    []ConfigOption{SetProvider("cohere")},
			wantErr: "Provider must be one of",
		},
		{
			name:    "unknown policy",
			opts:    []ConfigOption{SetWeatherPolicy("ignore")},
			wantErr: "WeatherPolicy must be one of",
		},
		{
			name:    "inverted daylight window",
			opts:    []ConfigOption{SetDaylightWindow(17, 8)},
			wantErr: "DaylightStart must be before DaylightEnd",
		},
		{
			name:    "anthropic without key",
			opts:    []ConfigOption{SetProvider("anthropic")},
			wantErr: "provider anthropic requires an API key",
		},
		{
			name: "anthropic with key",
			opts: []ConfigOption{SetProvider("anthropic"), SetAPIKey("anthropic", "sk-ant-123")},
		},
		{
			name:    "bad endpoint",
			opts:    []ConfigOption{SetWeatherEndpoint("not a url")},
			wantErr: "WeatherEndpoint failed url validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			ApplyOptions(cfg, tt.opts...)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateKey(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.ValidateKey("nps"))
	assert.True(t, cfg.HasPlaceholderKey("nps"))

	ApplyOptions(cfg, SetAPIKey("nps", PlaceholderAPIKey))
	assert.Error(t, cfg.ValidateKey("nps"))

	ApplyOptions(cfg, SetAPIKey("NPS", "real-key"))
	assert.NoError(t, cfg.ValidateKey("nps"))
	assert.False(t, cfg.HasPlaceholderKey("nps"))
}

func TestSetMaxTokensFloor(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetMaxTokens(0))
	assert.Equal(t, 1, cfg.MaxTokens)
}
