package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ZaguanLabs/mtbridge"
)

// EnvFileVar names an optional .env file loaded before the environment is read.
const EnvFileVar = "MTBRIDGE_ENV_FILE"

type Config struct {
	Environment string `envconfig:"MTBRIDGE_ENVIRONMENT" default:"production"`
	LogLevel    string `envconfig:"MTBRIDGE_LOG_LEVEL" default:"warn"`
	LogFile     string `envconfig:"MTBRIDGE_LOG_FILE" default:""`

	Engine            string  `envconfig:"MTBRIDGE_ENGINE" default:"openai"`
	OpenAIBaseURL     string  `envconfig:"MTBRIDGE_OPENAI_BASE_URL" default:"http://127.0.0.1:8845/v1"`
	OpenAIAPIKey      string  `envconfig:"MTBRIDGE_OPENAI_API_KEY" default:""`
	OpenAITemperature float32 `envconfig:"MTBRIDGE_OPENAI_TEMPERATURE" default:"0.2"`
	EngineMaxRetries  int     `envconfig:"MTBRIDGE_ENGINE_MAX_RETRIES" default:"0"`
	EngineRPM         int     `envconfig:"MTBRIDGE_ENGINE_RPM" default:"0"`

	ResultCache     string `envconfig:"MTBRIDGE_RESULT_CACHE" default:"memory"`
	ResultCacheSize int    `envconfig:"MTBRIDGE_RESULT_CACHE_SIZE" default:"256"`
	ResultCacheTTL  int    `envconfig:"MTBRIDGE_RESULT_CACHE_TTL" default:"0"`
	RedisURL        string `envconfig:"MTBRIDGE_REDIS_URL" default:""`

	ValidateConfig    bool   `envconfig:"MTBRIDGE_VALIDATE_CONFIG" default:"true"`
	Teardown          string `envconfig:"MTBRIDGE_TEARDOWN" default:"auto"`
	DetectorLanguages string `envconfig:"MTBRIDGE_DETECTOR_LANGUAGES" default:""`
}

// Load reads the environment, after applying MTBRIDGE_ENV_FILE if set.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	if path := strings.TrimSpace(os.Getenv(EnvFileVar)); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load %s=%s: %w", EnvFileVar, path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.EngineName() {
	case "openai", "mock":
	default:
		return fmt.Errorf("MTBRIDGE_ENGINE must be openai or mock, got %q", c.Engine)
	}

	switch c.ResultCacheKind() {
	case "memory", "none":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("MTBRIDGE_REDIS_URL is required when MTBRIDGE_RESULT_CACHE=redis")
		}
	default:
		return fmt.Errorf("MTBRIDGE_RESULT_CACHE must be memory, redis or none, got %q", c.ResultCache)
	}

	if c.ResultCacheSize < 0 {
		return fmt.Errorf("MTBRIDGE_RESULT_CACHE_SIZE must be >= 0")
	}
	if c.ResultCacheTTL < 0 {
		return fmt.Errorf("MTBRIDGE_RESULT_CACHE_TTL must be >= 0")
	}
	if c.EngineMaxRetries < 0 {
		return fmt.Errorf("MTBRIDGE_ENGINE_MAX_RETRIES must be >= 0")
	}
	if c.EngineRPM < 0 {
		return fmt.Errorf("MTBRIDGE_ENGINE_RPM must be >= 0")
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		return fmt.Errorf("MTBRIDGE_OPENAI_TEMPERATURE must be within [0, 2]")
	}
	if _, err := mtbridge.ParseTeardownPolicy(c.Teardown); err != nil {
		return fmt.Errorf("MTBRIDGE_TEARDOWN: %w", err)
	}
	return nil
}

func (c *Config) EngineName() string {
	return strings.ToLower(strings.TrimSpace(c.Engine))
}

func (c *Config) ResultCacheKind() string {
	return strings.ToLower(strings.TrimSpace(c.ResultCache))
}

// TeardownPolicy returns the parsed policy; Validate guarantees it parses.
func (c *Config) TeardownPolicy() mtbridge.TeardownPolicy {
	p, _ := mtbridge.ParseTeardownPolicy(c.Teardown)
	return p
}

// DetectorLanguageList splits MTBRIDGE_DETECTOR_LANGUAGES, dropping blanks
// and duplicates.
func (c *Config) DetectorLanguageList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.DetectorLanguages, ",")
	langs := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		lang := strings.TrimSpace(part)
		if lang == "" {
			continue
		}
		if _, exists := seen[lang]; exists {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	return langs
}
