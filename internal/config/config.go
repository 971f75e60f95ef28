package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MinWorkerPoolSize is the fan-out width: four sections run at once, so a
// smaller pool would queue sections behind each other under the outer deadline.
const MinWorkerPoolSize = 4

// Config holds all configuration for the trip planner
type Config struct {
	// Server configuration
	HTTPPort int    `env:"TRIP_HTTP_PORT" envDefault:"8080" yaml:"http_port"`
	GRPCPort int    `env:"TRIP_GRPC_PORT" envDefault:"9090" yaml:"grpc_port"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`

	Cache    CacheConfig   `yaml:"cache"`
	Redis    RedisConfig   `yaml:"redis"`
	LLM      LLMConfig     `yaml:"llm"`
	Images   ImagesConfig  `yaml:"images"`
	Workers  WorkerConfig  `yaml:"workers"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Events   EventsConfig  `yaml:"events"`
}

// CacheConfig selects and configures the plan cache
type CacheConfig struct {
	Backend    string `env:"CACHE_BACKEND" envDefault:"file" yaml:"backend"`
	File       string `env:"CACHE_FILE" envDefault:".travel_cache.json" yaml:"file"`
	SQLitePath string `env:"CACHE_SQLITE_PATH" envDefault:"tripplanner.db" yaml:"sqlite_path"`
	Shards     int    `env:"CACHE_SHARDS" envDefault:"1" yaml:"shards"`
	TTLSeconds int    `env:"TRAVEL_CACHE_TTL" envDefault:"3600" yaml:"ttl_seconds"`
	RedisKey   string `env:"CACHE_REDIS_PREFIX" envDefault:"tripplanner:plan" yaml:"redis_prefix"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379" yaml:"addr"`
	Password string `env:"REDIS_PASS" yaml:"password"`
	DB       int    `env:"REDIS_DB" envDefault:"0" yaml:"db"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10" yaml:"pool_size"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2" yaml:"min_idle_conns"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3" yaml:"max_retries"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s" yaml:"read_timeout"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s" yaml:"write_timeout"`
}

// LLMConfig holds text generation provider configuration
type LLMConfig struct {
	Provider       string        `env:"LLM_PROVIDER" envDefault:"anthropic" yaml:"provider"`
	APIKey         string        `env:"LLM_API_KEY" yaml:"api_key"`
	BaseURL        string        `env:"LLM_BASE_URL" yaml:"base_url"`
	Model          string        `env:"LLM_MODEL" envDefault:"claude-sonnet-4-20250514" yaml:"model"`
	MaxTokens      int64         `env:"LLM_MAX_TOKENS" envDefault:"2048" yaml:"max_tokens"`
	MaxRetries     int           `env:"LLM_MAX_RETRIES" envDefault:"0" yaml:"max_retries"`
	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"20s" yaml:"request_timeout"`
}

// ImagesConfig holds image search configuration
type ImagesConfig struct {
	AccessKey      string        `env:"UNSPLASH_ACCESS_KEY" yaml:"access_key"`
	BaseURL        string        `env:"UNSPLASH_BASE_URL" envDefault:"https://api.unsplash.com" yaml:"base_url"`
	RequestTimeout time.Duration `env:"UNSPLASH_REQUEST_TIMEOUT" envDefault:"10s" yaml:"request_timeout"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"8" yaml:"pool_size"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s" yaml:"health_check_interval"`
}

// TimeoutConfig holds the plan stage bounds
type TimeoutConfig struct {
	Trend    time.Duration `env:"TIMEOUT_TREND" envDefault:"20s" yaml:"trend"`
	Task     time.Duration `env:"TIMEOUT_TASK" envDefault:"8s" yaml:"task"`
	FanOut   time.Duration `env:"TIMEOUT_FANOUT" envDefault:"40s" yaml:"fan_out"`
	Shutdown time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s" yaml:"shutdown"`
}

// EventsConfig selects the plan event bus
type EventsConfig struct {
	Backend       string `env:"EVENTS_BACKEND" envDefault:"memory" yaml:"backend"`
	Buffer        int    `env:"EVENTS_BUFFER" envDefault:"64" yaml:"buffer"`
	StreamPrefix  string `env:"EVENTS_STREAM_PREFIX" envDefault:"tripplanner:events" yaml:"stream_prefix"`
	ConsumerGroup string `env:"EVENTS_CONSUMER_GROUP" yaml:"consumer_group"`
	ConsumerName  string `env:"EVENTS_CONSUMER_NAME" yaml:"consumer_name"`
}

// Load reads configuration from a .env file if present, then the
// environment, then the optional YAML file at path. Values in the file win
// over the environment; ${VAR} references in it are expanded.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// overlay applies a YAML config file on top of cfg
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	// Validate cache config
	switch c.Cache.Backend {
	case "file":
		if c.Cache.File == "" {
			return fmt.Errorf("cache file path is required")
		}
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache sqlite path is required")
		}
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache backend: %s (must be file, memory, sqlite, or redis)", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 1 {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}
	if c.Cache.Shards < 1 {
		return fmt.Errorf("cache shards must be at least 1")
	}

	// Validate Redis config
	if c.usesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Validate LLM config
	if c.LLM.Provider != "anthropic" {
		return fmt.Errorf("unsupported LLM provider: %s (only 'anthropic' is supported)", c.LLM.Provider)
	}

	// Validate worker config
	if c.Workers.PoolSize < MinWorkerPoolSize {
		return fmt.Errorf("worker pool size must be at least %d", MinWorkerPoolSize)
	}

	// Validate timeouts
	if c.Timeouts.Trend <= 0 || c.Timeouts.Task <= 0 || c.Timeouts.FanOut <= 0 {
		return fmt.Errorf("trend, task and fan-out timeouts must be positive")
	}

	// Validate events config
	if c.Events.Backend != "memory" && c.Events.Backend != "redis" {
		return fmt.Errorf("unsupported events backend: %s (must be memory or redis)", c.Events.Backend)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MissingCredentials lists the environment variables naming API keys that
// are not set. Planning needs both.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.LLM.APIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if c.Images.AccessKey == "" {
		missing = append(missing, "UNSPLASH_ACCESS_KEY")
	}
	return missing
}

// TTL returns the cache freshness window
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) usesRedis() bool {
	return c.Cache.Backend == "redis" || c.Events.Backend == "redis"
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
