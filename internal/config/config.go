package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/imzeeshaan/grocery-analytics/internal/analytics"
)

type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Analytics AnalyticsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatasetConfig struct {
	CSVPath      string
	CacheDir     string
	CacheEnabled bool
}

type LoggerConfig struct {
	Level     string
	Format    string
	AddSource bool
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// AnalyticsConfig carries the aggregation knobs. They are read once at
// startup and passed into the engine explicitly; nothing in the engine
// reads the environment.
type AnalyticsConfig struct {
	ChurnRecencyThresholdDays    int
	HighValuePercentile          float64
	AnomalyQuantityCap           int
	AnomalyPriceStddevMultiplier float64
	DiscountBucketEdges          []float64
}

func Load() (*Config, error) {
	environment := getEnvString("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("HOST", ""),
			Port:            getEnvInt("PORT", 8080),
			Environment:     environment,
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Dataset: DatasetConfig{
			CSVPath:      getEnvString("CSV_PATH", "data/grocery_transactions.csv"),
			CacheDir:     getEnvString("CACHE_DIR", ".cache"),
			CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		},
		Logger: LoggerConfig{
			Level:     getEnvString("LOG_LEVEL", "info"),
			Format:    getEnvString("LOG_FORMAT", "json"),
			AddSource: environment == "development",
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Analytics: AnalyticsConfig{
			ChurnRecencyThresholdDays:    getEnvInt("CHURN_RECENCY_THRESHOLD_DAYS", 30),
			HighValuePercentile:          getEnvFloat("HIGH_VALUE_PERCENTILE", 90),
			AnomalyQuantityCap:           getEnvInt("ANOMALY_QUANTITY_CAP", 50),
			AnomalyPriceStddevMultiplier: getEnvFloat("ANOMALY_PRICE_STDDEV_MULTIPLIER", 3),
			DiscountBucketEdges:          getEnvFloatSlice("DISCOUNT_BUCKET_EDGES", []float64{0, 0.1, 0.2, 0.3, 0.5, 1.0}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.CSVPath == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Analytics.ChurnRecencyThresholdDays < 0 {
		return fmt.Errorf("churn recency threshold must not be negative, got %d", c.Analytics.ChurnRecencyThresholdDays)
	}

	if p := c.Analytics.HighValuePercentile; p <= 0 || p > 100 {
		return fmt.Errorf("high-value percentile must be in (0, 100], got %v", p)
	}

	if c.Analytics.AnomalyQuantityCap < 1 {
		return fmt.Errorf("anomaly quantity cap must be at least 1, got %d", c.Analytics.AnomalyQuantityCap)
	}

	if m := c.Analytics.AnomalyPriceStddevMultiplier; m <= 0 {
		return fmt.Errorf("anomaly stddev multiplier must be positive, got %v", m)
	}

	return validateBucketEdges(c.Analytics.DiscountBucketEdges)
}

// validateBucketEdges requires edges that start at exactly 0, rise strictly,
// and end at or below 1, so the buckets partition every legal discount rate.
func validateBucketEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("discount bucket edges need at least two values, got %d", len(edges))
	}
	if edges[0] != 0 {
		return fmt.Errorf("discount bucket edges must start at 0, got %v", edges[0])
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("discount bucket edges must be strictly increasing, got %v after %v", edges[i], edges[i-1])
		}
	}
	if last := edges[len(edges)-1]; last > 1 {
		return fmt.Errorf("discount bucket edges must end at or below 1, got %v", last)
	}
	return nil
}

// Options converts the analytics section into the engine's option set.
func (c *Config) Options() analytics.Options {
	return analytics.Options{
		ChurnRecencyThresholdDays: c.Analytics.ChurnRecencyThresholdDays,
		HighValuePercentile:       c.Analytics.HighValuePercentile,
		AnomalyQuantityCap:        c.Analytics.AnomalyQuantityCap,
		AnomalyPriceStddevMult:    c.Analytics.AnomalyPriceStddevMultiplier,
		DiscountBucketEdges:       c.Analytics.DiscountBucketEdges,
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvFloatSlice(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	parsed := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return defaultValue
		}
		parsed = append(parsed, f)
	}
	return parsed
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
