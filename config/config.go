package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Cart      CartConfig      `mapstructure:"cart"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	ChatModel   string        `mapstructure:"chat_model"`
	ImageModel  string        `mapstructure:"image_model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// CartConfig holds cart persistence configuration
type CartConfig struct {
	Store         string        `mapstructure:"store"` // "memory" or "bolt"
	BoltPath      string        `mapstructure:"bolt_path"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// AssistantConfig holds chat assistant configuration
type AssistantConfig struct {
	MaxHistory   int           `mapstructure:"max_history"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	EnableImages bool          `mapstructure:"enable_images"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"`
	Gemini int `mapstructure:"gemini"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Mode       string `mapstructure:"mode"` // "development" or "production"
	FileEnable bool   `mapstructure:"file_enable"`
	Filename   string `mapstructure:"filename"`
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pawradise/")

	// PAWRADISE_GEMINI_API_KEY -> gemini.api_key
	v.SetEnvPrefix("PAWRADISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key gets a default
// so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.chat_model", "gemini-2.5-flash")
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Cart defaults
	v.SetDefault("cart.store", "memory")
	v.SetDefault("cart.bolt_path", "data/carts.db")
	v.SetDefault("cart.ttl", "720h")
	v.SetDefault("cart.sweep_schedule", "@every 1h")

	// Assistant defaults
	v.SetDefault("assistant.max_history", 50)
	v.SetDefault("assistant.session_ttl", "24h")
	v.SetDefault("assistant.enable_images", true)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.gemini", 60)

	// Logger defaults
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.file_enable", false)
	v.SetDefault("logger.filename", "logs/pawradise.log")
}

// validate validates the configuration. A missing Gemini API key is allowed:
// the assistant then answers with its fallback reply.
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Gemini.Temperature <= 0 || config.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini temperature must be in (0, 2], got: %v", config.Gemini.Temperature)
	}

	if config.Cart.Store != "memory" && config.Cart.Store != "bolt" {
		return fmt.Errorf("cart store must be 'memory' or 'bolt', got: %s", config.Cart.Store)
	}

	if config.Cart.Store == "bolt" && config.Cart.BoltPath == "" {
		return fmt.Errorf("bolt path is required when cart store is 'bolt'")
	}

	if config.Assistant.MaxHistory < 0 {
		return fmt.Errorf("assistant max history must not be negative, got: %d", config.Assistant.MaxHistory)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Gemini < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if config.Logger.FileEnable && config.Logger.Filename == "" {
		return fmt.Errorf("logger filename is required when file logging is enabled")
	}

	return nil
}
