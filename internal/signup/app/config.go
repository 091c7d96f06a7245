package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	signuphttp "github.com/aussiebroadwan/firststore/internal/signup/http"
	"github.com/aussiebroadwan/firststore/pkg/httpx"
	"github.com/joho/godotenv"
)

type Config struct {
	OTPIssuer            string        // Issuer name used when generating OTP secrets (default: FirstStore)
	DatabaseFile         string        // Path to SQLite database file; empty keeps sessions in memory
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	CountdownInterval    time.Duration // Resend countdown tick (default: 1s)
	HousekeepingInterval time.Duration // Idle session sweep interval (default: 5m)
	SessionTTL           time.Duration // Idle time after which a session is discarded (default: 30m)
	RateLimits           signuphttp.RateLimits
}

// LoadConfig reads the environment, after loading DOTENV_FILE (default .env)
// if it exists. Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(getEnvOrDefault("DOTENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	defaults := signuphttp.DefaultRateLimits()

	return Config{
		OTPIssuer:            getEnvOrDefault("OTP_ISSUER", "FirstStore"),
		DatabaseFile:         os.Getenv("SIGNUP_DATABASE_FILE"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		CountdownInterval:    getEnvDurationOrDefault("COUNTDOWN_INTERVAL", time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
		RateLimits: signuphttp.RateLimits{
			Start:   httpx.ParseRateLimitFromEnv("START", defaults.Start),
			OTP:     httpx.ParseRateLimitFromEnv("OTP", defaults.OTP),
			Session: httpx.ParseRateLimitFromEnv("SESSION", defaults.Session),
			Public:  httpx.ParseRateLimitFromEnv("PUBLIC", defaults.Public),
		},
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("1s", "30m") or a bare
// integer number of seconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
