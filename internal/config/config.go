package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Cache    CacheConfig
	Extract  ExtractConfig
	Batch    BatchConfig
	Notify   NotifyConfig
	Selector SelectorConfig
}

// ProviderConfig holds settings for a single model provider in the chain.
type ProviderConfig struct {
	Name         string `mapstructure:"name"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// IsConfigured reports whether the slot names a provider with a credential.
func (p *ProviderConfig) IsConfigured() bool {
	return p != nil && p.Name != "" && p.APIKey != ""
}

// ExtractConfig holds extraction settings with a four-slot provider chain.
type ExtractConfig struct {
	TimeoutSecs   int            `mapstructure:"timeout_secs"`
	MaxFileSizeMB int64          `mapstructure:"max_file_size_mb"`
	Primary       ProviderConfig `mapstructure:"primary"`
	Secondary     ProviderConfig `mapstructure:"secondary"`
	Tertiary      ProviderConfig `mapstructure:"tertiary"`
	Quaternary    ProviderConfig `mapstructure:"quaternary"`
}

// Chain returns the ordered provider chain, configured or not.
func (e *ExtractConfig) Chain() []*ProviderConfig {
	return []*ProviderConfig{&e.Primary, &e.Secondary, &e.Tertiary, &e.Quaternary}
}

// CacheConfig holds template catalog cache settings.
type CacheConfig struct {
	TTLSecs      int `mapstructure:"ttl_secs"`
	MaxRetries   int `mapstructure:"max_retries"`
	RetryBaseMs  int `mapstructure:"retry_base_ms"`
	ManagedPct   int `mapstructure:"managed_pct"`
	UsageBufSize int `mapstructure:"usage_buf_size"`
}

// BatchConfig holds bulk extraction settings.
type BatchConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	InterItemDelayMs int `mapstructure:"inter_item_delay_ms"`
	MaxItemsPerBatch int `mapstructure:"max_items_per_batch"`
}

// NotifyConfig holds notification delivery settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// SelectorConfig holds template selection settings.
type SelectorConfig struct {
	DefaultTemperature float64 `mapstructure:"default_temperature"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT verification settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for document archival.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Enabled   bool   `mapstructure:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the DOCPILOT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docpilot")
	v.SetDefault("db.password", "docpilot_secret")
	v.SetDefault("db.name", "docpilot_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "docpilot")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docpilot-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.enabled", false)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Cache defaults
	v.SetDefault("cache.ttl_secs", 300)
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.retry_base_ms", 200)
	v.SetDefault("cache.managed_pct", 100)
	v.SetDefault("cache.usage_buf_size", 256)

	// Extraction defaults
	v.SetDefault("extract.timeout_secs", 120)
	v.SetDefault("extract.max_file_size_mb", 25)
	v.SetDefault("extract.primary.name", "openai")
	v.SetDefault("extract.primary.api_key", "")
	v.SetDefault("extract.primary.default_model", "gpt-4o")
	v.SetDefault("extract.primary.max_retries", 2)
	v.SetDefault("extract.primary.timeout_secs", 120)
	v.SetDefault("extract.secondary.name", "claude")
	v.SetDefault("extract.secondary.api_key", "")
	v.SetDefault("extract.secondary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extract.secondary.max_retries", 2)
	v.SetDefault("extract.secondary.timeout_secs", 120)
	v.SetDefault("extract.tertiary.name", "gemini")
	v.SetDefault("extract.tertiary.api_key", "")
	v.SetDefault("extract.tertiary.default_model", "gemini-2.0-flash")
	v.SetDefault("extract.tertiary.max_retries", 2)
	v.SetDefault("extract.tertiary.timeout_secs", 120)
	v.SetDefault("extract.quaternary.name", "")
	v.SetDefault("extract.quaternary.api_key", "")
	v.SetDefault("extract.quaternary.default_model", "")
	v.SetDefault("extract.quaternary.max_retries", 2)
	v.SetDefault("extract.quaternary.timeout_secs", 120)

	// Batch defaults
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("batch.inter_item_delay_ms", 250)
	v.SetDefault("batch.max_items_per_batch", 25)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@docpilot.dev")
	v.SetDefault("notify.from_name", "DocPilot")

	// Selector defaults
	v.SetDefault("selector.default_temperature", 0.1)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "DOCPILOT_SERVER_PORT",
		"server.read_timeout":  "DOCPILOT_SERVER_READ_TIMEOUT",
		"server.write_timeout": "DOCPILOT_SERVER_WRITE_TIMEOUT",
		"server.environment":   "DOCPILOT_SERVER_ENVIRONMENT",
		"db.host":              "DOCPILOT_DB_HOST",
		"db.port":              "DOCPILOT_DB_PORT",
		"db.user":              "DOCPILOT_DB_USER",
		"db.password":          "DOCPILOT_DB_PASSWORD",
		"db.name":              "DOCPILOT_DB_NAME",
		"db.sslmode":           "DOCPILOT_DB_SSLMODE",
		"db.max_open":          "DOCPILOT_DB_MAX_OPEN",
		"db.max_idle":          "DOCPILOT_DB_MAX_IDLE",
		"jwt.secret":           "DOCPILOT_JWT_SECRET",
		"jwt.issuer":           "DOCPILOT_JWT_ISSUER",
		"s3.region":            "DOCPILOT_S3_REGION",
		"s3.bucket":            "DOCPILOT_S3_BUCKET",
		"s3.endpoint":          "DOCPILOT_S3_ENDPOINT",
		"s3.access_key":        "DOCPILOT_S3_ACCESS_KEY",
		"s3.secret_key":        "DOCPILOT_S3_SECRET_KEY",
		"s3.enabled":           "DOCPILOT_S3_ENABLED",
		"log.level":            "DOCPILOT_LOG_LEVEL",
		"log.format":           "DOCPILOT_LOG_FORMAT",
		"cors.allowed_origins": "DOCPILOT_CORS_ALLOWED_ORIGINS",
		"cache.ttl_secs":       "DOCPILOT_CACHE_TTL_SECS",
		"cache.max_retries":    "DOCPILOT_CACHE_MAX_RETRIES",
		"cache.retry_base_ms":  "DOCPILOT_CACHE_RETRY_BASE_MS",
		"cache.managed_pct":    "DOCPILOT_CACHE_MANAGED_PCT",
		"cache.usage_buf_size": "DOCPILOT_CACHE_USAGE_BUF_SIZE",
		"extract.timeout_secs":     "DOCPILOT_EXTRACT_TIMEOUT_SECS",
		"extract.max_file_size_mb": "DOCPILOT_EXTRACT_MAX_FILE_SIZE_MB",
		"extract.primary.name":              "DOCPILOT_EXTRACT_PRIMARY_NAME",
		"extract.primary.api_key":           "DOCPILOT_EXTRACT_PRIMARY_API_KEY",
		"extract.primary.default_model":     "DOCPILOT_EXTRACT_PRIMARY_DEFAULT_MODEL",
		"extract.primary.max_retries":       "DOCPILOT_EXTRACT_PRIMARY_MAX_RETRIES",
		"extract.primary.timeout_secs":      "DOCPILOT_EXTRACT_PRIMARY_TIMEOUT_SECS",
		"extract.secondary.name":            "DOCPILOT_EXTRACT_SECONDARY_NAME",
		"extract.secondary.api_key":         "DOCPILOT_EXTRACT_SECONDARY_API_KEY",
		"extract.secondary.default_model":   "DOCPILOT_EXTRACT_SECONDARY_DEFAULT_MODEL",
		"extract.secondary.max_retries":     "DOCPILOT_EXTRACT_SECONDARY_MAX_RETRIES",
		"extract.secondary.timeout_secs":    "DOCPILOT_EXTRACT_SECONDARY_TIMEOUT_SECS",
		"extract.tertiary.name":             "DOCPILOT_EXTRACT_TERTIARY_NAME",
		"extract.tertiary.api_key":          "DOCPILOT_EXTRACT_TERTIARY_API_KEY",
		"extract.tertiary.default_model":    "DOCPILOT_EXTRACT_TERTIARY_DEFAULT_MODEL",
		"extract.tertiary.max_retries":      "DOCPILOT_EXTRACT_TERTIARY_MAX_RETRIES",
		"extract.tertiary.timeout_secs":     "DOCPILOT_EXTRACT_TERTIARY_TIMEOUT_SECS",
		"extract.quaternary.name":           "DOCPILOT_EXTRACT_QUATERNARY_NAME",
		"extract.quaternary.api_key":        "DOCPILOT_EXTRACT_QUATERNARY_API_KEY",
		"extract.quaternary.default_model":  "DOCPILOT_EXTRACT_QUATERNARY_DEFAULT_MODEL",
		"extract.quaternary.max_retries":    "DOCPILOT_EXTRACT_QUATERNARY_MAX_RETRIES",
		"extract.quaternary.timeout_secs":   "DOCPILOT_EXTRACT_QUATERNARY_TIMEOUT_SECS",
		"batch.concurrency":         "DOCPILOT_BATCH_CONCURRENCY",
		"batch.inter_item_delay_ms": "DOCPILOT_BATCH_INTER_ITEM_DELAY_MS",
		"batch.max_items_per_batch": "DOCPILOT_BATCH_MAX_ITEMS_PER_BATCH",
		"notify.provider":     "DOCPILOT_NOTIFY_PROVIDER",
		"notify.region":       "DOCPILOT_NOTIFY_REGION",
		"notify.from_address": "DOCPILOT_NOTIFY_FROM_ADDRESS",
		"notify.from_name":    "DOCPILOT_NOTIFY_FROM_NAME",
		"selector.default_temperature": "DOCPILOT_SELECTOR_DEFAULT_TEMPERATURE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCPILOT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCPILOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Enabled:   v.GetBool("s3.enabled"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Cache = CacheConfig{
		TTLSecs:      v.GetInt("cache.ttl_secs"),
		MaxRetries:   v.GetInt("cache.max_retries"),
		RetryBaseMs:  v.GetInt("cache.retry_base_ms"),
		ManagedPct:   v.GetInt("cache.managed_pct"),
		UsageBufSize: v.GetInt("cache.usage_buf_size"),
	}

	providerSlot := func(slot string) ProviderConfig {
		return ProviderConfig{
			Name:         v.GetString("extract." + slot + ".name"),
			APIKey:       v.GetString("extract." + slot + ".api_key"),
			DefaultModel: v.GetString("extract." + slot + ".default_model"),
			MaxRetries:   v.GetInt("extract." + slot + ".max_retries"),
			TimeoutSecs:  v.GetInt("extract." + slot + ".timeout_secs"),
		}
	}
	cfg.Extract = ExtractConfig{
		TimeoutSecs:   v.GetInt("extract.timeout_secs"),
		MaxFileSizeMB: v.GetInt64("extract.max_file_size_mb"),
		Primary:       providerSlot("primary"),
		Secondary:     providerSlot("secondary"),
		Tertiary:      providerSlot("tertiary"),
		Quaternary:    providerSlot("quaternary"),
	}

	cfg.Batch = BatchConfig{
		Concurrency:      v.GetInt("batch.concurrency"),
		InterItemDelayMs: v.GetInt("batch.inter_item_delay_ms"),
		MaxItemsPerBatch: v.GetInt("batch.max_items_per_batch"),
	}

	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
	}

	cfg.Selector = SelectorConfig{
		DefaultTemperature: v.GetFloat64("selector.default_temperature"),
	}

	return cfg, nil
}
