package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the engine needs. Values come from the
// environment after a best-effort .env load.
type Config struct {
	CatalogPath  string
	OverridePath string

	BaseURL string
	Region  string
	Origins []string

	CacheTTL     time.Duration
	FetchTimeout time.Duration
	RatePerSec   float64
	ResolveLimit int
}

const defaultOrigins = "红玉海,神意之地,拉诺西亚,幻影群岛,萌芽池,宇宙和音,沃仙曦染,晨曦王座"

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		CatalogPath:  getEnv("MB_CATALOG_PATH", "data/items.json"),
		OverridePath: getEnv("MB_OVERRIDE_PATH", ""),

		BaseURL: getEnv("MB_MARKET_BASE_URL", "https://universalis.app/api/v2"),
		Region:  getEnv("MB_REGION", "陆行鸟"),
		Origins: splitList(getEnv("MB_ORIGINS", defaultOrigins)),

		CacheTTL:     getDuration("MB_CACHE_TTL", 5*time.Minute),
		FetchTimeout: getDuration("MB_FETCH_TIMEOUT", 10*time.Second),
		RatePerSec:   getFloat("MB_RATE_PER_SEC", 8),
		ResolveLimit: getInt("MB_RESOLVE_LIMIT", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
