package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port         string
	AllowOrigins []string

	StoreBackend string
	ConfigKey    string
	RedisURI     string
	PostgresURI  string
	StoreTimeout time.Duration

	GitHubAPIURL          string
	MirrorPath            string
	MirrorCommitMessage   string
	MirrorCreateIfMissing bool
	MirrorTimeout         time.Duration

	LogLevel string
	LogFile  string
}

// Load reads an optional .env file and builds the process configuration from the environment.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		AllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreRedis)),
		ConfigKey:    getEnv("CONFIG_KEY", "config"),
		RedisURI:     getEnv("REDIS_URI", "redis://localhost:6379/0"),
		PostgresURI:  getEnv("POSTGRES_URI", "postgres://localhost:5432/uptime?sslmode=disable"),

		GitHubAPIURL:        getEnv("GITHUB_API_URL", ""),
		MirrorPath:          getEnv("MIRROR_PATH", "uptime.config.ts"),
		MirrorCommitMessage: getEnv("MIRROR_COMMIT_MESSAGE", "Update uptime configuration"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	var err error
	if cfg.StoreTimeout, err = getEnvDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MirrorTimeout, err = getEnvDuration("MIRROR_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.MirrorCreateIfMissing, err = getEnvBool("MIRROR_CREATE_IF_MISSING", false); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if strings.TrimSpace(cfg.ConfigKey) == "" {
		return nil, fmt.Errorf("CONFIG_KEY must not be empty")
	}
	if strings.TrimSpace(cfg.MirrorPath) == "" {
		return nil, fmt.Errorf("MIRROR_PATH must not be empty")
	}

	return cfg, nil
}

func loadDotEnv() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
