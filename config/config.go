package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/text-utility/metrics"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	OpenAI        OpenAIConfig
	Defaults      DefaultsConfig
	Reports       ReportsConfig
	Pricing       PricingConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// OpenAIConfig holds OpenAI provider configuration
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultsConfig holds the per-request defaults applied when the caller
// omits the optional fields.
type DefaultsConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// ReportsConfig holds report generation configuration
type ReportsConfig struct {
	OutputDir      string
	PersistDefault bool
}

// PricingConfig holds model pricing configuration.
// File points to an optional YAML price table that overrides the
// built-in rates.
type PricingConfig struct {
	File string
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout:    getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries: getEnvAsInt("OPENAI_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("OPENAI_RETRY_DELAY", 500*time.Millisecond),
		},
		Defaults: DefaultsConfig{
			Model:       getEnv("DEFAULT_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvAsInt("DEFAULT_MAX_TOKENS", 500),
			Temperature: getEnvAsFloat("DEFAULT_TEMPERATURE", 0.7),
		},
		Reports: ReportsConfig{
			OutputDir:      getEnv("REPORTS_OUTPUT_DIR", "reports"),
			PersistDefault: getEnvAsBool("REPORTS_PERSIST_DEFAULT", false),
		},
		Pricing: PricingConfig{
			File: getEnv("PRICING_FILE", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.IsProduction() && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required in production")
	}

	if c.Defaults.Model == "" {
		return fmt.Errorf("default model is required")
	}
	if c.Defaults.MaxTokens <= 0 {
		return fmt.Errorf("default max tokens must be positive")
	}
	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		return fmt.Errorf("default temperature must be between 0 and 2")
	}

	if c.Reports.OutputDir == "" {
		return fmt.Errorf("reports output directory is required")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// PriceTable returns the model price table: the built-in rates, or the
// contents of the configured YAML file when PRICING_FILE is set.
func (c *Config) PriceTable() (metrics.PriceTable, error) {
	if c.Pricing.File == "" {
		return metrics.DefaultPriceTable(), nil
	}

	data, err := os.ReadFile(c.Pricing.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing file: %w", err)
	}

	var table metrics.PriceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse pricing file: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("pricing file %s contains no models", c.Pricing.File)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing file: %w", err)
	}

	return table, nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
