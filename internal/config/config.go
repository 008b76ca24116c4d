// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port        string
	RedisURL    string // empty falls back to the in-memory ledger store
	DatabaseURL string // empty disables run history

	AdminJWTSecret string // empty leaves the reset endpoint unguarded

	RateLimitRPS int

	CacheTTL        time.Duration
	CacheMaxEntries int

	LedgerHistoryLimit int

	// Software measurement probe calibration.
	CPUPowerWatts   float64 // assumed package power while integrating
	CarbonIntensity float64 // kgCO2 per kWh of the local grid

	AllowedOrigins []string
	Debug          bool
}

// Load reads the configuration from the environment. Each call parses the
// environment afresh so tests can exercise it with t.Setenv.
func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		RedisURL:           getEnvAllowEmpty("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		RateLimitRPS:       getEnvInt("RATE_LIMIT_RPS", 100),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		CacheMaxEntries:    getEnvInt("CACHE_MAX_ENTRIES", 1024),
		LedgerHistoryLimit: getEnvInt("LEDGER_HISTORY_LIMIT", 100),
		CPUPowerWatts:      getEnvFloat("CPU_POWER_WATTS", 65),
		CarbonIntensity:    getEnvFloat("CARBON_INTENSITY_KG_PER_KWH", 0.056),
		Debug:              getEnvBool("DEBUG", false),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"*"}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats an explicitly empty variable as a value, not as
// unset. REDIS_URL="" means "use the in-memory store", which getEnv would
// swallow.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
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
