package config

import "os"

// Config holds the runtime settings of the service, read from the
// environment (a .env file is loaded by the entrypoints before Load runs).
type Config struct {
	Port          string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	// StoreBackend selects the matching-state backend: "memory" keeps
	// everything in-process, "postgres" uses PostgreSQL + Redis.
	StoreBackend string
	// Lang is the language of user-facing strings.
	Lang string
}

// Load reads the configuration from environment variables, applying the
// defaults used by the local docker-compose setup.
func Load() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		DatabaseDSN:   getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=healjaidb port=5432 sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6380"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-only-secret"),
		StoreBackend:  getenv("STORE_BACKEND", "memory"),
		Lang:          getenv("LANG_CODE", "th"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
