package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxBodyBytes caps submission bodies when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes = 10 << 20

// Config holds the service settings read from the environment.
type Config struct {
	HTTPAddr        string
	AnalyzerAddr    string
	AnalyzerTimeout time.Duration
	RedisAddr       string
	ResultCacheTTL  time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads the environment, falling back to defaults for unset or malformed values.
func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8900"),
		AnalyzerAddr:    getEnv("ANALYZER_ADDR", "analyzer:50051"),
		AnalyzerTimeout: getDuration("ANALYZER_TIMEOUT", 60*time.Second),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		ResultCacheTTL:  getDuration("RESULT_CACHE_TTL", 10*time.Minute),
		MaxBodyBytes:    getInt64("MAX_BODY_BYTES", DefaultMaxBodyBytes),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
