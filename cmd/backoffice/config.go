package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrymomot/backoffice/core/config"
	"github.com/dmitrymomot/backoffice/integration/database/redis"
)

// Session store backends.
const (
	storeFile   = "file"
	storeSQLite = "sqlite"
	storeRedis  = "redis"
	storeMemory = "memory"
)

// AppConfig is the environment of the backoffice binary.
type AppConfig struct {
	APIURL         string        `env:"BACKOFFICE_API_URL" envDefault:"http://localhost:8080"`
	Store          string        `env:"BACKOFFICE_STORE" envDefault:"file"`
	StorePath      string        `env:"BACKOFFICE_STORE_PATH"`
	StoreKey       string        `env:"BACKOFFICE_STORE_KEY"`
	RefreshTimeout time.Duration `env:"BACKOFFICE_REFRESH_TIMEOUT" envDefault:"5s"`
	StaleAfter     time.Duration `env:"BACKOFFICE_STALE_AFTER" envDefault:"5m"`
	LogFormat      string        `env:"BACKOFFICE_LOG_FORMAT" envDefault:"text"`
	LogLevel       string        `env:"BACKOFFICE_LOG_LEVEL" envDefault:"warn"`
	MetricsAddr    string        `env:"BACKOFFICE_METRICS_ADDR"`

	Redis redis.Config
}

// flags override the environment for a single invocation.
type flags struct {
	apiURL    string
	store     string
	storePath string
	logLevel  string
}

func loadConfig(f flags) (AppConfig, error) {
	var cfg AppConfig
	if err := config.Load(&cfg); err != nil {
		return AppConfig{}, err
	}

	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.store != "" {
		cfg.Store = f.store
	}
	if f.storePath != "" {
		cfg.StorePath = f.storePath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case storeFile, storeSQLite, storeRedis, storeMemory:
	default:
		return AppConfig{}, fmt.Errorf("config: unknown store %q (want file, sqlite, redis or memory)", cfg.Store)
	}

	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath(cfg.Store)
	}
	return cfg, nil
}

func defaultStorePath(backend string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	switch backend {
	case storeSQLite:
		return filepath.Join(dir, "backoffice", "session.db")
	case storeFile:
		return filepath.Join(dir, "backoffice", "session.json")
	default:
		return ""
	}
}
