package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Config struct {
	InstagramClientID     string
	InstagramClientSecret string
	InstagramRedirectURI  string
	GraphBaseURL          string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	R2                    R2
	SecretKey             string
	CookieName            string
	CronSecret            string

	// MockMode swaps the real Instagram client and OAuth flow for simulated
	// ones. Threaded explicitly through constructors, never read at call time.
	MockMode  bool
	MockDelay time.Duration

	// Publishing client tuning.
	MinRequestInterval time.Duration
	RequestsPerMinute  int
	MaxAttempts        int
	RetryBaseDelay     time.Duration
	RateLimitDelay     time.Duration
	SettleDelay        time.Duration
	SweepBatchSize     int
}

func LoadConfig() *Config {
	return &Config{
		InstagramClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		InstagramRedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		GraphBaseURL:          getEnv("GRAPH_BASE_URL", "https://graph.instagram.com/v21.0"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", ""),
		CronSecret: getEnv("CRON_SECRET", ""),

		MockMode:  getEnvBool("MOCK_MODE", false),
		MockDelay: getEnvDuration("MOCK_DELAY", 500*time.Millisecond),

		MinRequestInterval: getEnvDuration("MIN_REQUEST_INTERVAL", 6*time.Second),
		RequestsPerMinute:  getEnvInt("REQUESTS_PER_MINUTE", 10),
		MaxAttempts:        getEnvInt("MAX_ATTEMPTS", 3),
		RetryBaseDelay:     getEnvDuration("RETRY_BASE_DELAY", 2*time.Second),
		RateLimitDelay:     getEnvDuration("RATE_LIMIT_DELAY", 30*time.Second),
		SettleDelay:        getEnvDuration("SETTLE_DELAY", 5*time.Second),
		SweepBatchSize:     getEnvInt("SWEEP_BATCH_SIZE", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
