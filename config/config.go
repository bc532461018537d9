package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	Data   DataConfig
	Redis  RedisConfig
	Cache  CacheConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Port int
}

// DataConfig points at the collisions CSV. RowLimit is the row count
// loaded at startup; requests may only ask for one of AllowedRowLimits.
type DataConfig struct {
	Path             string
	RowLimit         int
	AllowedRowLimits []int
}

// RedisConfig with an empty Host disables the response cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CacheConfig struct {
	TTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rowLimit, err := getIntEnv("DATA_ROW_LIMIT", 100000)
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_ROW_LIMIT: %w", err)
	}

	if rowLimit < 0 {
		return nil, fmt.Errorf("invalid DATA_ROW_LIMIT: %d is negative", rowLimit)
	}

	allowedRowLimits, err := getIntListEnv("DATA_ALLOWED_ROW_LIMITS", []int{1000, 10000, 100000})
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_ALLOWED_ROW_LIMITS: %w", err)
	}
	for _, n := range allowedRowLimits {
		if n < 0 {
			return nil, fmt.Errorf("invalid DATA_ALLOWED_ROW_LIMITS: %d is negative", n)
		}
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ttlSec, err := getIntEnv("CACHE_TTL_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Data: DataConfig{
			Path:             getEnv("DATA_PATH", "Motor_Vehicle_Collisions.csv"),
			RowLimit:         rowLimit,
			AllowedRowLimits: allowedRowLimits,
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTL: time.Duration(ttlSec) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// getIntListEnv parses a comma-separated list of integers.
func getIntListEnv(key string, fallback []int) ([]int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
