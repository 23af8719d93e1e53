// Package config reads service settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	SeedDir  string
}

// LoadEnv loads variables from a .env file if present. It reports whether
// a file was read.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// FromEnv builds the configuration from the current environment.
func FromEnv() Config {
	return Config{
		Port:     GetIntEnv("PORT", 8080),
		DBPath:   GetEnv("DB_PATH", "earnings.db"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		SeedDir:  GetEnv("SEED_DIR", "testdata"),
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// NewLogger builds a production JSON logger at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
