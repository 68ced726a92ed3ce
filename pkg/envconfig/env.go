package envconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"merchantops/pkg/logger"
)

// LoadEnvFile loads environment variables from the given file. Variables
// already set in the process environment are not overwritten.
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}

// GetEnv returns the value of the environment variable or the fallback
// when it is unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt returns the environment variable parsed as an integer, or
// the fallback when it is unset or not a number.
func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvBool returns the environment variable parsed as a boolean, or
// the fallback when it is unset or not parseable.
func GetEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetLogLevel maps the LOG_LEVEL environment variable to a logger level,
// defaulting to info.
func GetLogLevel() logger.LogLevel {
	switch strings.ToLower(GetEnv("LOG_LEVEL", "info")) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
