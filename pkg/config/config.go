package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port           string
	Env            string
	DatabaseDriver string // "postgres" or "sqlite"
	PostgresUrl    string
	SQLitePath     string
	MongoURI       string
	MongoDatabase  string
	CacheBackend   string // "memory" or "mongo"
	CacheTTL       time.Duration
	PostsPerPage   int
	JWTSecret      string
	SessionKey     string
	MediaRoot      string
	BodyLimit      string // e.g. "10M", caps request bodies including uploads
	LogLevel       string
}

// Load reads an optional .env file and then the process environment.
// Missing files are not an error: the environment may already be set.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Debug("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		PostgresUrl:    getEnv("POSTGRES_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "yatube.db"),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "yatube"),
		CacheBackend:   getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:       getEnvDuration("CACHE_TTL", 20*time.Second),
		PostsPerPage:   getEnvInt("POSTS_PER_PAGE", 10),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretjwtkey"),
		SessionKey:     getEnv("SESSION_KEY", "supersecretsessionkey"),
		MediaRoot:      getEnv("MEDIA_ROOT", "media"),
		BodyLimit:      getEnv("BODY_LIMIT", "10M"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite"
		if cfg.PostgresUrl != "" {
			cfg.DatabaseDriver = "postgres"
		}
	}
	if cfg.PostsPerPage < 1 {
		cfg.PostsPerPage = 10
	}
	return cfg
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using default %s", value, defaultValue)
		return defaultValue
	}
	return d
}
