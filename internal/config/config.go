// Package config loads and holds all guidance service configuration.
// Settings are resolved in three layers: built-in defaults, then
// guidance-config.yaml, then environment variables. The file is optional;
// env vars always win.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	Port        int    `yaml:"port"`
	BindAddress string `yaml:"bindAddress"`
	LogLevel    string `yaml:"logLevel"`

	// OpenAI (primary provider)
	OpenAIAPIKey    string `yaml:"openaiApiKey"`
	OpenAIModel     string `yaml:"openaiModel"`
	OpenAIMaxTokens int    `yaml:"openaiMaxTokens"`

	// Anthropic (secondary provider)
	AnthropicAPIKey    string `yaml:"anthropicApiKey"`
	AnthropicModel     string `yaml:"anthropicModel"`
	AnthropicMaxTokens int    `yaml:"anthropicMaxTokens"`

	// Gemini (tertiary provider)
	GeminiAPIKey string `yaml:"geminiApiKey"`
	GeminiModel  string `yaml:"geminiModel"`

	ProviderTimeoutSecs int `yaml:"providerTimeoutSeconds"`

	// Cache
	CacheBackend  string `yaml:"cacheBackend"` // memory, bbolt, sqlite
	CachePath     string `yaml:"cachePath"`    // file path for bbolt/sqlite backends
	CacheTTLSecs  int    `yaml:"cacheTtlSeconds"`
	DescKeyPrefix int    `yaml:"descriptionKeyPrefixLength"`

	// Feature flags
	EnableCaching       bool `yaml:"enableCaching"`
	EnableAnonymization bool `yaml:"enablePiiAnonymization"`
	EnableFallback      bool `yaml:"enableFallbackResponses"`
}

// DefaultConfigFile is the config file consulted by Load and Watch.
const DefaultConfigFile = "guidance-config.yaml"

// Load returns config with defaults overridden by guidance-config.yaml
// and env vars.
func Load() *Config {
	cfg := defaults()
	loadFile(cfg, DefaultConfigFile)
	loadEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Port:                3007,
		BindAddress:         "0.0.0.0",
		LogLevel:            "info",
		OpenAIModel:         "gpt-4-turbo-preview",
		OpenAIMaxTokens:     1000,
		AnthropicModel:      "claude-3-sonnet-20240229",
		AnthropicMaxTokens:  1000,
		GeminiModel:         "gemini-1.5-flash",
		ProviderTimeoutSecs: 60,
		CacheBackend:        "memory",
		CachePath:           "guidance-cache.db",
		CacheTTLSecs:        3600,
		DescKeyPrefix:       100,
		EnableCaching:       true,
		EnableAnonymization: true,
		EnableFallback:      true,
	}
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // file is optional
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[CONFIG] Warning: could not parse %s: %v", path, err)
	} else {
		log.Printf("[CONFIG] Loaded %s", path)
	}
}

func loadEnv(cfg *Config) {
	setInt(&cfg.Port, "PORT")
	setStr(&cfg.BindAddress, "BIND_ADDRESS")
	setStr(&cfg.LogLevel, "LOG_LEVEL")

	setStr(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setStr(&cfg.OpenAIModel, "OPENAI_MODEL")
	setInt(&cfg.OpenAIMaxTokens, "OPENAI_MAX_TOKENS")

	setStr(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setStr(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	setInt(&cfg.AnthropicMaxTokens, "ANTHROPIC_MAX_TOKENS")

	setStr(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setStr(&cfg.GeminiModel, "GEMINI_MODEL")

	setInt(&cfg.ProviderTimeoutSecs, "PROVIDER_TIMEOUT_SECONDS")

	setStr(&cfg.CacheBackend, "CACHE_BACKEND")
	setStr(&cfg.CachePath, "CACHE_PATH")
	setInt(&cfg.CacheTTLSecs, "CACHE_TTL")
	setInt(&cfg.DescKeyPrefix, "DESCRIPTION_KEY_PREFIX_LENGTH")

	setBool(&cfg.EnableCaching, "ENABLE_CACHING")
	setBool(&cfg.EnableAnonymization, "ENABLE_PII_ANONYMIZATION")
	setBool(&cfg.EnableFallback, "ENABLE_FALLBACK_RESPONSES")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	}
}
