package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort string
	CacheTTL  time.Duration

	GinMode string
	Port    string

	// SuperAdminIDs hold elevated callers; identity is supplied by the
	// caller and trusted, so this is the only role source outside the DB.
	SuperAdminIDs []uint64

	// RegistrationPasswordHash is the bcrypt hash self-registration is
	// verified against. Empty disables password-gated registration.
	RegistrationPasswordHash string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "team_tasks"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),
		CacheTTL:  getDuration("CACHE_TTL", 5*time.Minute),

		GinMode: getEnv("GIN_MODE", "debug"),
		Port:    getEnv("PORT", "8080"),

		SuperAdminIDs:            parseIDList(getEnv("SUPER_ADMIN_IDS", "")),
		RegistrationPasswordHash: getEnv("REGISTRATION_PASSWORD_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// parseIDList parses a comma-separated list of numeric user IDs.
func parseIDList(s string) []uint64 {
	var ids []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
