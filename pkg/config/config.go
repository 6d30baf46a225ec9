// Package config loads engine configuration from config.yaml with
// environment variable overrides. Secrets must only come from environment
// variables.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for aiquery-engine.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Logging configuration
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`

	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Memory    MemoryConfig    `yaml:"memory"`
	LLM       LLMConfig       `yaml:"llm"`
	Database  DatabaseConfig  `yaml:"database"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Semantic  SemanticConfig  `yaml:"semantic"`
	Reports   ReportsConfig   `yaml:"reports"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	// Backend selects "memory" or "redis".
	Backend    string `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"`
	MaxEntries int    `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"100"`
	TTLSeconds int    `yaml:"ttl_seconds" env:"CACHE_TTL_SECONDS" env-default:"1800"`

	// Redis settings, used when Backend is "redis".
	RedisAddr     string `yaml:"redis_addr" env:"CACHE_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"-" env:"CACHE_REDIS_PASSWORD"` // Secret - not in YAML
	RedisDB       int    `yaml:"redis_db" env:"CACHE_REDIS_DB" env-default:"0"`
}

// RateLimitConfig controls per-user admission limits.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"10"`
	PerHour   int `yaml:"per_hour" env:"RATE_LIMIT_PER_HOUR" env-default:"100"`
}

// MemoryConfig controls conversation memory.
type MemoryConfig struct {
	MaxTurns int `yaml:"max_turns" env:"MEMORY_MAX_TURNS" env-default:"20"`
}

// LLMConfig holds the generation backend settings. The primary backend is
// any OpenAI-compatible endpoint; the fallback is Anthropic and is used
// once after the primary exhausts its retry budget.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model          string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey         string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`

	FallbackModel  string `yaml:"fallback_model" env:"LLM_FALLBACK_MODEL" env-default:""`
	FallbackAPIKey string `yaml:"-" env:"LLM_FALLBACK_API_KEY"` // Secret - not in YAML
}

// FallbackAvailable reports whether the alternate backend is configured.
func (c *LLMConfig) FallbackAvailable() bool {
	return c.FallbackModel != "" && c.FallbackAPIKey != ""
}

// DatabaseConfig holds the target database connection settings. An empty
// host runs the engine in demo mode against a canned dataset.
type DatabaseConfig struct {
	// Type selects the connector: "postgres" or "sqlserver".
	Type     string `yaml:"type" env:"DB_TYPE" env-default:"postgres"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:""`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"aiquery"`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DB_DATABASE" env-default:"aiquery"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"prefer"`

	ExecTimeoutSeconds int `yaml:"exec_timeout_seconds" env:"DB_EXEC_TIMEOUT_SECONDS" env-default:"30"`
}

// FeedbackConfig controls feedback persistence.
type FeedbackConfig struct {
	// StoragePath is the directory for feedback.json. Empty disables
	// persistence (records are kept in memory only).
	StoragePath string `yaml:"storage_path" env:"FEEDBACK_STORAGE_PATH" env-default:"data"`
}

// SemanticConfig points at the optional semantic mapping file.
type SemanticConfig struct {
	MappingsPath string `yaml:"mappings_path" env:"SEMANTIC_MAPPINGS_PATH" env-default:""`
}

// ReportsConfig points at the optional report template file.
type ReportsConfig struct {
	TemplatesPath string `yaml:"templates_path" env:"REPORT_TEMPLATES_PATH" env-default:""`
}

// Load reads config.yaml with environment overrides. A missing file is
// fine: everything then comes from environment variables and defaults.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom reads configuration from the given YAML path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
		return cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("unknown cache backend %q (want memory or redis)", c.Cache.Backend)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTLSeconds < 1 {
		return fmt.Errorf("cache ttl must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.PerHour <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimit.PerMinute > c.RateLimit.PerHour {
		return fmt.Errorf("per-minute limit %d exceeds per-hour limit %d", c.RateLimit.PerMinute, c.RateLimit.PerHour)
	}
	return nil
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
