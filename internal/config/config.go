package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the API, the crawler and the CLI read from the environment.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	BaseURL    string `mapstructure:"BASE_URL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	DBDSN     string `mapstructure:"DB_DSN"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Generation service (Gemini). An empty key means "templates only".
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	GenerationTimeoutSeconds int    `mapstructure:"GENERATION_TIMEOUT_SECONDS"`
	BreakerThreshold         int    `mapstructure:"BREAKER_THRESHOLD"`
	BreakerResetSeconds      int    `mapstructure:"BREAKER_RESET_SECONDS"`

	SlugMaxAttempts int `mapstructure:"SLUG_MAX_ATTEMPTS"`

	// Redis config
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	// Media storage. When S3Bucket is empty uploads go to UploadDir.
	S3Bucket     string `mapstructure:"S3_BUCKET"`
	S3Region     string `mapstructure:"S3_REGION"`
	S3Endpoint   string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey  string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey  string `mapstructure:"S3_SECRET_KEY"`
	MediaBaseURL string `mapstructure:"MEDIA_BASE_URL"`
	UploadDir    string `mapstructure:"UPLOAD_DIR"`

	// Crawler
	CrawlBaseURL     string `mapstructure:"CRAWL_BASE_URL"`
	CrawlMaxPages    int    `mapstructure:"CRAWL_MAX_PAGES"`
	CrawlSchedule    string `mapstructure:"CRAWL_SCHEDULE"`
	CrawlAutoSuggest bool   `mapstructure:"CRAWL_AUTO_SUGGEST"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("DB_DSN", "root:root@tcp(127.0.0.1:3306)/koodos?parseTime=true")
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 15)
	v.SetDefault("BREAKER_THRESHOLD", 5)
	v.SetDefault("BREAKER_RESET_SECONDS", 60)

	v.SetDefault("SLUG_MAX_ATTEMPTS", 1000)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("MEDIA_BASE_URL", "")
	v.SetDefault("UPLOAD_DIR", "./uploads")

	v.SetDefault("CRAWL_BASE_URL", "")
	v.SetDefault("CRAWL_MAX_PAGES", 50)
	v.SetDefault("CRAWL_SCHEDULE", "")
	v.SetDefault("CRAWL_AUTO_SUGGEST", true)

	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// GenerationTimeout is the per-call budget for the generation service.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

func (c *Config) BreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
