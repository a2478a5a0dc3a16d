package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	MPVPath            string
	MPVSocketPath      string
	MPVExtraArgs       []string
	ConnectDelay       time.Duration
	ConnectMaxAttempts int // 0 = retry until the request is cancelled
	CommandTimeout     time.Duration
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MPVPath:            getEnv("MPV_PATH", "mpv"),
		MPVSocketPath:      getEnv("MPV_SOCKET_PATH", "/tmp/mpvsocket"),
		MPVExtraArgs:       parseCommaSeparated(os.Getenv("MPV_EXTRA_ARGS")),
		ConnectDelay:       time.Duration(getEnvInt64("MPV_CONNECT_DELAY_MS", 100)) * time.Millisecond,
		ConnectMaxAttempts: int(getEnvInt64("MPV_CONNECT_MAX_ATTEMPTS", 0)),
		CommandTimeout:     time.Duration(getEnvInt64("MPV_COMMAND_TIMEOUT_MS", 5000)) * time.Millisecond,
		CORSAllowedOrigins: parseCommaSeparated(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitRPS:       float64(getEnvInt64("RATE_LIMIT_RPS", 20)),
		RateLimitBurst:     int(getEnvInt64("RATE_LIMIT_BURST", 40)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func parseCommaSeparated(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
