package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Billing    BillingConfig
	Summarizer SummarizerConfig
	Extraction ExtractionConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Worker     WorkerConfig
	Logging    LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
	// PublicURL wins over ProductionURL when both are set
	PublicURL     string
	ProductionURL string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains identity provider configuration
type AuthConfig struct {
	JWKSURL       string
	Issuer        string
	WebhookSecret string
}

// BillingConfig contains payment processor configuration
type BillingConfig struct {
	StripeSecretKey string
	WebhookSecret   string
	PriceID         string
}

// SummarizerConfig contains the LLM endpoint used by the analysis endpoint
type SummarizerConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// ExtractionConfig bounds server-side PDF extraction
type ExtractionConfig struct {
	Concurrency   int
	PageTimeout   time.Duration
	MaxUploadSize int64
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig limits analysis requests per user
type RateLimitConfig struct {
	AnalyzePerMinute int
	AnalyzeBurst     int
}

// WorkerConfig schedules background jobs. An empty schedule disables the job.
type WorkerConfig struct {
	ResyncSchedule string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDatabase loads only the database section, for tools that never serve
// traffic and so need no provider secrets
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return fromEnv().Database
}

func fromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			PublicURL:       getEnv("PUBLIC_URL", ""),
			ProductionURL:   getEnv("PRODUCTION_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "docbrief"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./docbrief.db"),
		},
		Auth: AuthConfig{
			JWKSURL:       getEnv("CLERK_JWKS_URL", ""),
			Issuer:        getEnv("CLERK_ISSUER", ""),
			WebhookSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),
		},
		Billing: BillingConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceID:         getEnv("STRIPE_PRICE_ID", ""),
		},
		Summarizer: SummarizerConfig{
			APIKey:    getEnv("SUMMARIZER_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:   getEnv("SUMMARIZER_BASE_URL", ""),
			Model:     getEnv("SUMMARIZER_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvAsInt("SUMMARIZER_MAX_TOKENS", 1500),
			Timeout:   getEnvAsDuration("SUMMARIZER_TIMEOUT", 60*time.Second),
			CacheTTL:  getEnvAsDuration("SUMMARIZER_CACHE_TTL", 24*time.Hour),
		},
		Extraction: ExtractionConfig{
			Concurrency:   getEnvAsInt("EXTRACT_CONCURRENCY", 4),
			PageTimeout:   getEnvAsDuration("EXTRACT_PAGE_TIMEOUT", 30*time.Second),
			MaxUploadSize: int64(getEnvAsInt("EXTRACT_MAX_UPLOAD_BYTES", 20<<20)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			AnalyzePerMinute: getEnvAsInt("ANALYZE_REQUESTS_PER_MINUTE", 5),
			AnalyzeBurst:     getEnvAsInt("ANALYZE_BURST", 5),
		},
		Worker: WorkerConfig{
			ResyncSchedule: getEnv("WORKER_RESYNC_SCHEDULE", "@every 1h"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Billing.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set")
	}

	if c.Extraction.Concurrency < 1 {
		return fmt.Errorf("EXTRACT_CONCURRENCY must be at least 1, got %d", c.Extraction.Concurrency)
	}

	if c.RateLimit.AnalyzePerMinute < 1 {
		return fmt.Errorf("ANALYZE_REQUESTS_PER_MINUTE must be at least 1, got %d", c.RateLimit.AnalyzePerMinute)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// DomainURL returns the public base URL used in billing redirects. It is
// empty when running in production without PUBLIC_URL or PRODUCTION_URL.
func (s ServerConfig) DomainURL() string {
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/")
	}
	if s.IsProduction() {
		return strings.TrimRight(s.ProductionURL, "/")
	}
	return "http://localhost:3000"
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Addr returns the Redis host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Helper functions

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
