package config

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cursolab/cursolab-backend/internal/platform/envutil"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
)

const configPathEnv = "CURSOLAB_CONFIG_YAML"

//go:embed cursolab.yaml
var defaultConfigFS embed.FS

// Config holds server-level settings. Values come from the embedded defaults,
// optionally overridden by a YAML file named in CURSOLAB_CONFIG_YAML, then by
// individual environment variables.
type Config struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`

	PackConcurrency int `yaml:"pack_concurrency"`

	CacheDebounceMS int    `yaml:"cache_debounce_ms"`
	CacheSQLitePath string `yaml:"cache_sqlite_path"`
}

func (c Config) CacheDebounce() time.Duration {
	return time.Duration(c.CacheDebounceMS) * time.Millisecond
}

func Load(log *logger.Logger) (Config, error) {
	var cfg Config

	raw, err := defaultConfigFS.ReadFile("cursolab.yaml")
	if err != nil {
		return cfg, fmt.Errorf("read embedded config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse embedded config: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read %s: %w", configPathEnv, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config overrides", "path", path)
		}
	}

	cfg.Port = envutil.Int("PORT", cfg.Port)
	cfg.PackConcurrency = envutil.Int("PACK_CONCURRENCY", cfg.PackConcurrency)
	cfg.CacheDebounceMS = envutil.Int("CACHE_DEBOUNCE_MS", cfg.CacheDebounceMS)
	cfg.CacheSQLitePath = envutil.String("CACHE_SQLITE_PATH", cfg.CacheSQLitePath)

	if cfg.Port <= 0 {
		cfg.Port = 8080
	}
	if cfg.PackConcurrency <= 0 {
		cfg.PackConcurrency = 8
	}
	if cfg.CacheDebounceMS <= 0 {
		cfg.CacheDebounceMS = 1500
	}
	return cfg, nil
}
