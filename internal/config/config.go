package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	GeoStatic = "static"
	GeoBridge = "bridge"
)

type Config struct {
	Port string

	StoreDriver string
	SQLitePath  string
	PostgresDSN string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	RateLimit  int
	RateWindow time.Duration

	ImageDir string

	GeoProvider     string
	GeoBridgeURL    string
	StaticLatitude  float64
	StaticLongitude float64

	Acquire domain.AcquireOptions
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Load reads configuration from the environment, with an optional .env
// file for local development. Every knob has a working default: a bare
// `go run ./cmd/api` serves the sqlite store and the static provider.
func Load() Config {
	_ = godotenv.Load()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "wildwatch"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "wildwatch"),
	)

	defaults := domain.DefaultAcquireOptions()

	return Config{
		Port: getEnv("PORT", "8080"),

		StoreDriver: getEnv("STORE_DRIVER", StoreSQLite),
		SQLitePath:  getEnv("SQLITE_PATH", "wildwatch.db"),
		PostgresDSN: dsn,

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RateLimit:  getEnvInt("RATE_LIMIT", 100),
		RateWindow: getEnvDuration("RATE_WINDOW", time.Minute),

		ImageDir: getEnv("IMAGE_DIR", "images"),

		GeoProvider:     getEnv("GEO_PROVIDER", GeoStatic),
		GeoBridgeURL:    os.Getenv("GEO_BRIDGE_URL"),
		StaticLatitude:  getEnvFloat("GEO_STATIC_LAT", 48.8566),
		StaticLongitude: getEnvFloat("GEO_STATIC_LON", 2.3522),

		Acquire: domain.AcquireOptions{
			Accuracy:        domain.Accuracy(getEnv("GEO_ACCURACY", string(defaults.Accuracy))),
			MinInterval:     getEnvDuration("GEO_MIN_INTERVAL", defaults.MinInterval),
			MinDisplacement: getEnvFloat("GEO_MIN_DISPLACEMENT", defaults.MinDisplacement),
		},
	}
}
