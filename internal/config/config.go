package config

import (
	"log"
	"os"
)

// Config holds everything read from the environment at startup. The JWT
// secret is copied once into the token service and never mutated after.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins []string
}

// Load reads the environment with development fallbacks. A missing
// JWT_SECRET is fatal in release mode.
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "comptabilite")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	cfg.DatabaseDSN = "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	if cfg.JWTSecret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // development fallback only
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
