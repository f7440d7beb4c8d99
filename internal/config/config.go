package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=mandi port=5432 sslmode=disable"

type Config struct {
	AppEnv         string
	HTTPPort       string
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string
	LogLevel       string
	RequestTimeout time.Duration

	// Nominal price used for the dashboard's inventory value card.
	InventoryValuePerKg float64
	// GST percentage applied in the tax summary. Fresh produce is exempt.
	GSTRate float64

	MinIO MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether bills go to object storage.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the environment (and a .env file when present). Missing or weak
// secrets are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:         getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		CORSOrigins:         getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 15*time.Second),
		InventoryValuePerKg: getFloat("INVENTORY_VALUE_PER_KG", 50),
		GSTRate:             getFloat("GST_RATE", 0),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "bills"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN not set, using the local default")
	}
	if !cfg.MinIO.Enabled() {
		log.Warn("MINIO_ENDPOINT not set, bills will be stored inline")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
