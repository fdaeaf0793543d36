// Package config holds the runtime configuration of trailhead and the
// functional options used to adjust it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/teilomillet/trailhead/utils"
	"gopkg.in/yaml.v3"
)

// Weather gate policies.
const (
	// PolicyAbort stops the run when the model says the weather is unsuitable.
	PolicyAbort = "abort"
	// PolicyReframe keeps going and only changes how recommendations are framed.
	PolicyReframe = "reframe"
)

// PlaceholderAPIKey is the value shipped in sample configs; it is never accepted.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// ConfigFileEnv names the variable pointing at an optional YAML config file.
const ConfigFileEnv = "TRAILHEAD_CONFIG"

type Config struct {
	Provider       string        `env:"LLM_PROVIDER" yaml:"provider" validate:"required,oneof=ollama openai anthropic"`
	Model          string        `env:"LLM_MODEL" yaml:"model" validate:"required"`
	OllamaEndpoint string        `env:"OLLAMA_ENDPOINT" yaml:"ollama_endpoint" validate:"required,url"`
	OpenAIEndpoint string        `env:"OPENAI_ENDPOINT" yaml:"openai_endpoint" validate:"required,url"`
	Temperature    float64       `env:"LLM_TEMPERATURE" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int           `env:"LLM_MAX_TOKENS" yaml:"max_tokens" validate:"gte=1"`
	Seed           *int          `env:"LLM_SEED" yaml:"seed"`
	Timeout        time.Duration `env:"LLM_TIMEOUT" yaml:"timeout" validate:"gt=0"`
	MaxRetries     int           `env:"LLM_MAX_RETRIES" yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay     time.Duration `env:"LLM_RETRY_DELAY" yaml:"retry_delay" validate:"gte=0"`

	APIKeys  map[string]string `yaml:"api_keys" validate:"-"`
	LogLevel utils.LogLevel    `env:"LLM_LOG_LEVEL" yaml:"log_level"`
	Logger   utils.Logger      `yaml:"-" validate:"-"`

	WeatherPolicy     string `env:"TRAILHEAD_WEATHER_POLICY" yaml:"weather_policy" validate:"required,oneof=abort reframe"`
	Reflect           bool   `env:"TRAILHEAD_REFLECT" yaml:"reflect"`
	StructuredGates   bool   `env:"TRAILHEAD_STRUCTURED_GATES" yaml:"structured_gates"`
	DaylightStart     int    `env:"TRAILHEAD_DAYLIGHT_START" yaml:"daylight_start" validate:"gte=0,lte=23,ltfield=DaylightEnd"`
	DaylightEnd       int    `env:"TRAILHEAD_DAYLIGHT_END" yaml:"daylight_end" validate:"gte=0,lte=23"`
	MemoryTokenBudget int    `env:"TRAILHEAD_MEMORY_TOKENS" yaml:"memory_tokens" validate:"gte=0"`

	LocationEndpoint string        `env:"TRAILHEAD_LOCATION_ENDPOINT" yaml:"location_endpoint" validate:"required,url"`
	WeatherEndpoint  string        `env:"TRAILHEAD_WEATHER_ENDPOINT" yaml:"weather_endpoint" validate:"required,url"`
	ParksEndpoint    string        `env:"TRAILHEAD_PARKS_ENDPOINT" yaml:"parks_endpoint" validate:"required,url"`
	FetchTimeout     time.Duration `env:"TRAILHEAD_FETCH_TIMEOUT" yaml:"fetch_timeout" validate:"gt=0"`
	FetchRate        float64       `env:"TRAILHEAD_FETCH_RATE" yaml:"fetch_rate" validate:"gt=0"`
	FetchBurst       int           `env:"TRAILHEAD_FETCH_BURST" yaml:"fetch_burst" validate:"gte=1"`
}

// NewConfig returns the defaults every other source is layered on.
func NewConfig() *Config {
	return &Config{
		Provider:          "ollama",
		Model:             "gpt-oss:20b",
		OllamaEndpoint:    "http://localhost:11434",
		OpenAIEndpoint:    "http://localhost:11434/v1",
		Temperature:       0.7,
		MaxTokens:         1024,
		Timeout:           120 * time.Second,
		MaxRetries:        0,
		RetryDelay:        2 * time.Second,
		APIKeys:           make(map[string]string),
		LogLevel:          utils.LogLevelWarn,
		WeatherPolicy:     PolicyReframe,
		Reflect:           true,
		DaylightStart:     8,
		DaylightEnd:       17,
		MemoryTokenBudget: 8000,
		LocationEndpoint:  "https://ipinfo.io/json",
		WeatherEndpoint:   "https://api.open-meteo.com/v1/forecast",
		ParksEndpoint:     "https://developer.nps.gov/api/v1",
		FetchTimeout:      30 * time.Second,
		FetchRate:         4,
		FetchBurst:        1,
	}
}

// LoadConfig builds a Config from defaults, then the YAML file at path (if
// path is empty, $TRAILHEAD_CONFIG is used; no file is fine), then the
// process environment. Later sources win.
func LoadConfig(path string) (*Config, error) {
	return load(path, env.ToMap(os.Environ()))
}

func load(path string, environ map[string]string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = environ[ConfigFileEnv]
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	loadAPIKeys(cfg, environ)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty file decodes to io.EOF; defaults stand.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.APIKeys == nil {
		cfg.APIKeys = make(map[string]string)
	}
	return nil
}

// loadAPIKeys copies every *_API_KEY variable into APIKeys, keyed by the
// lower-cased prefix: NPS_API_KEY becomes APIKeys["nps"].
func loadAPIKeys(cfg *Config, environ map[string]string) {
	if cfg.APIKeys == nil {
		cfg.APIKeys = make(map[string]string)
	}
	for key, value := range environ {
		upper := strings.ToUpper(key)
		if !strings.HasSuffix(upper, "_API_KEY") || value == "" {
			continue
		}
		provider := strings.TrimSuffix(upper, "_API_KEY")
		cfg.APIKeys[strings.ToLower(provider)] = value
	}
}

// APIKey returns the key stored for name, or "".
func (c *Config) APIKey(name string) string {
	return c.APIKeys[strings.ToLower(name)]
}

// HasPlaceholderKey reports whether the key for name is missing or still the sample value.
func (c *Config) HasPlaceholderKey(name string) bool {
	key := strings.TrimSpace(c.APIKey(name))
	return key == "" || key == PlaceholderAPIKey
}

type ConfigOption func(*Config)

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = strings.ToLower(provider)
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetOllamaEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.OllamaEndpoint = endpoint
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetSeed(seed int) ConfigOption {
	return func(c *Config) {
		c.Seed = &seed
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

// SetAPIKey stores key under name (e.g. "nps", "anthropic").
func SetAPIKey(name, key string) ConfigOption {
	return func(c *Config) {
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[strings.ToLower(name)] = key
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// SetLogger replaces the logger built from LogLevel.
func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func SetWeatherPolicy(policy string) ConfigOption {
	return func(c *Config) {
		c.WeatherPolicy = strings.ToLower(policy)
	}
}

func SetReflect(reflect bool) ConfigOption {
	return func(c *Config) {
		c.Reflect = reflect
	}
}

func SetStructuredGates(enabled bool) ConfigOption {
	return func(c *Config) {
		c.StructuredGates = enabled
	}
}

func SetDaylightWindow(start, end int) ConfigOption {
	return func(c *Config) {
		c.DaylightStart = start
		c.DaylightEnd = end
	}
}

func SetMemoryTokenBudget(tokens int) ConfigOption {
	return func(c *Config) {
		c.MemoryTokenBudget = tokens
	}
}

func SetLocationEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.LocationEndpoint = endpoint
	}
}

func SetWeatherEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.WeatherEndpoint = endpoint
	}
}

func SetParksEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.ParksEndpoint = endpoint
	}
}

// SetFetchRate sets the upstream requests per second.
func SetFetchRate(perSecond float64) ConfigOption {
	return func(c *Config) {
		c.FetchRate = perSecond
	}
}

func SetFetchBurst(burst int) ConfigOption {
	return func(c *Config) {
		c.FetchBurst = burst
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}

// NewLogger returns cfg.Logger when one was set, otherwise a DefaultLogger at LogLevel.
func (c *Config) NewLogger() utils.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return utils.NewLogger(c.LogLevel)
}
