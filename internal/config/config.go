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
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	OCR       OCRConfig
	Batch     BatchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Archive   ArchiveConfig
	CORS      CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BatchConfig holds the multi-image ingestion settings.
type BatchConfig struct {
	Size       int           `mapstructure:"size"`
	Delay      time.Duration `mapstructure:"delay"`
	MaxImages  int           `mapstructure:"max_images"`
	MaxImageMB int64         `mapstructure:"max_image_mb"`
}

// MaxImageBytes returns the per-image upload limit in bytes.
func (b *BatchConfig) MaxImageBytes() int64 {
	return b.MaxImageMB * 1024 * 1024
}

// CacheConfig holds the extraction result cache settings.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig throttles outbound OCR calls. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ArchiveConfig toggles archiving uploaded screenshots to object storage.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// OCRProviderConfig holds settings for a single OCR / vision provider.
type OCRProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	Languages    string `mapstructure:"languages"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds OCR provider settings with multi-provider fallback support.
type OCRConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	Languages    string `mapstructure:"languages"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   OCRProviderConfig `mapstructure:"primary"`
	Secondary OCRProviderConfig `mapstructure:"secondary"`
	Tertiary  OCRProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (o *OCRConfig) PrimaryConfig() *OCRProviderConfig {
	if o.Primary.Provider != "" {
		return &o.Primary
	}
	return &OCRProviderConfig{
		Provider:     o.Provider,
		APIKey:       o.APIKey,
		DefaultModel: o.DefaultModel,
		BaseURL:      o.BaseURL,
		Languages:    o.Languages,
		TimeoutSecs:  o.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (o *OCRConfig) SecondaryConfig() *OCRProviderConfig {
	if o.Secondary.Provider != "" {
		return &o.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (o *OCRConfig) TertiaryConfig() *OCRProviderConfig {
	if o.Tertiary.Provider != "" {
		return &o.Tertiary
	}
	return nil
}

// Chain returns the configured providers in fallback order.
func (o *OCRConfig) Chain() []*OCRProviderConfig {
	chain := []*OCRProviderConfig{o.PrimaryConfig()}
	if s := o.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := o.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the run log.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
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

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	MaxAge int    `mapstructure:"max_age"`
}

var providerKeys = []string{"provider", "api_key", "default_model", "base_url", "languages", "timeout_secs"}

// Load reads configuration from environment variables with the FOLIOSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FOLIOSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "folioscan")
	v.SetDefault("db.password", "folioscan_secret")
	v.SetDefault("db.name", "folioscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "folioscan-screenshots")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 900)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_age", 7)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Batch defaults
	v.SetDefault("batch.size", 2)
	v.SetDefault("batch.delay", "500ms")
	v.SetDefault("batch.max_images", 10)
	v.SetDefault("batch.max_image_mb", 10)

	// Cache and rate limit defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("rate_limit.requests_per_second", 0)
	v.SetDefault("rate_limit.burst", 2)

	v.SetDefault("archive.enabled", false)

	// OCR defaults (legacy flat)
	v.SetDefault("ocr.provider", "gemini")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.default_model", "")
	v.SetDefault("ocr.base_url", "")
	v.SetDefault("ocr.languages", "kor+eng")
	v.SetDefault("ocr.timeout_secs", 60)
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, k := range providerKeys {
			v.SetDefault("ocr."+tier+"."+k, "")
		}
		v.SetDefault("ocr."+tier+".languages", "kor+eng")
		v.SetDefault("ocr."+tier+".timeout_secs", 60)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "FOLIOSCAN_SERVER_PORT",
		"server.read_timeout":            "FOLIOSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "FOLIOSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":             "FOLIOSCAN_SERVER_ENVIRONMENT",
		"db.enabled":                     "FOLIOSCAN_DB_ENABLED",
		"db.host":                        "FOLIOSCAN_DB_HOST",
		"db.port":                        "FOLIOSCAN_DB_PORT",
		"db.user":                        "FOLIOSCAN_DB_USER",
		"db.password":                    "FOLIOSCAN_DB_PASSWORD",
		"db.name":                        "FOLIOSCAN_DB_NAME",
		"db.sslmode":                     "FOLIOSCAN_DB_SSLMODE",
		"db.max_open":                    "FOLIOSCAN_DB_MAX_OPEN",
		"db.max_idle":                    "FOLIOSCAN_DB_MAX_IDLE",
		"s3.region":                      "FOLIOSCAN_S3_REGION",
		"s3.bucket":                      "FOLIOSCAN_S3_BUCKET",
		"s3.endpoint":                    "FOLIOSCAN_S3_ENDPOINT",
		"s3.access_key":                  "FOLIOSCAN_S3_ACCESS_KEY",
		"s3.secret_key":                  "FOLIOSCAN_S3_SECRET_KEY",
		"s3.presign_expiry":              "FOLIOSCAN_S3_PRESIGN_EXPIRY",
		"log.level":                      "FOLIOSCAN_LOG_LEVEL",
		"log.format":                     "FOLIOSCAN_LOG_FORMAT",
		"log.output":                     "FOLIOSCAN_LOG_OUTPUT",
		"log.max_age":                    "FOLIOSCAN_LOG_MAX_AGE",
		"cors.allowed_origins":           "FOLIOSCAN_CORS_ALLOWED_ORIGINS",
		"batch.size":                     "FOLIOSCAN_BATCH_SIZE",
		"batch.delay":                    "FOLIOSCAN_BATCH_DELAY",
		"batch.max_images":               "FOLIOSCAN_BATCH_MAX_IMAGES",
		"batch.max_image_mb":             "FOLIOSCAN_BATCH_MAX_IMAGE_MB",
		"cache.enabled":                  "FOLIOSCAN_CACHE_ENABLED",
		"cache.ttl":                      "FOLIOSCAN_CACHE_TTL",
		"cache.cleanup_interval":         "FOLIOSCAN_CACHE_CLEANUP_INTERVAL",
		"rate_limit.requests_per_second": "FOLIOSCAN_RATE_LIMIT_REQUESTS_PER_SECOND",
		"rate_limit.burst":               "FOLIOSCAN_RATE_LIMIT_BURST",
		"archive.enabled":                "FOLIOSCAN_ARCHIVE_ENABLED",
	}
	for _, k := range providerKeys {
		envBindings["ocr."+k] = "FOLIOSCAN_OCR_" + strings.ToUpper(k)
		for _, tier := range []string{"primary", "secondary", "tertiary"} {
			envBindings["ocr."+tier+"."+k] = "FOLIOSCAN_OCR_" + strings.ToUpper(tier) + "_" + strings.ToUpper(k)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FOLIOSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FOLIOSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
		MaxAge: v.GetInt("log.max_age"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Batch = BatchConfig{
		Size:       v.GetInt("batch.size"),
		Delay:      v.GetDuration("batch.delay"),
		MaxImages:  v.GetInt("batch.max_images"),
		MaxImageMB: v.GetInt64("batch.max_image_mb"),
	}
	if cfg.Batch.Size < 1 {
		return nil, fmt.Errorf("batch.size must be at least 1, got %d", cfg.Batch.Size)
	}
	if cfg.Batch.Delay < 0 {
		return nil, fmt.Errorf("batch.delay must not be negative, got %s", cfg.Batch.Delay)
	}

	cfg.Cache = CacheConfig{
		Enabled:         v.GetBool("cache.enabled"),
		TTL:             v.GetDuration("cache.ttl"),
		CleanupInterval: v.GetDuration("cache.cleanup_interval"),
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("rate_limit.requests_per_second"),
		Burst:             v.GetInt("rate_limit.burst"),
	}
	cfg.Archive = ArchiveConfig{Enabled: v.GetBool("archive.enabled")}

	cfg.OCR = OCRConfig{
		Provider:     v.GetString("ocr.provider"),
		APIKey:       v.GetString("ocr.api_key"),
		DefaultModel: v.GetString("ocr.default_model"),
		BaseURL:      v.GetString("ocr.base_url"),
		Languages:    v.GetString("ocr.languages"),
		TimeoutSecs:  v.GetInt("ocr.timeout_secs"),
		Primary:      loadProvider(v, "ocr.primary"),
		Secondary:    loadProvider(v, "ocr.secondary"),
		Tertiary:     loadProvider(v, "ocr.tertiary"),
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) OCRProviderConfig {
	return OCRProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		Languages:    v.GetString(prefix + ".languages"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}
