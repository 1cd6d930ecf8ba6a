package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	PostgresURL    string
	GraphDBPath    string
	SpoolDir       string
	ArchiveDir     string
	LogPath        string
	SyncWorkers    int
	PollInterval   time.Duration
	ReconcileCron  string
	ReconcileBatch int
	Sites          map[string]*SiteConfig
}

// SiteConfig describes one broker site integration. Selector groups are
// broker-supplied; when none are given the markup strategy falls back to
// its built-in generic groups.
type SiteConfig struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Website        string          `yaml:"website"`
	SelectorGroups []SelectorGroup `yaml:"selector_groups"`
}

// SelectorGroup is one card selector plus per-field sub-selectors. Field
// names are the canonical candidate field names (title, location, price...).
type SelectorGroup struct {
	Card   string            `yaml:"card"`
	Fields map[string]string `yaml:"fields"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PostgresURL:    os.Getenv("DATABASE_URL"),
		GraphDBPath:    getEnv("GRAPH_DB_PATH", "graph.db"),
		SpoolDir:       getEnv("SPOOL_DIR", "spool"),
		ArchiveDir:     getEnv("ARCHIVE_DIR", "spool/processed"),
		LogPath:        getEnv("LOG_PATH", "daemon.log"),
		SyncWorkers:    getEnvInt("SYNC_WORKERS", 4),
		PollInterval:   30 * time.Second,
		ReconcileCron:  os.Getenv("RECONCILE_CRON"),
		ReconcileBatch: getEnvInt("RECONCILE_BATCH", 100),
		Sites:          make(map[string]*SiteConfig),
	}

	if interval := os.Getenv("POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.PollInterval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfigs() error {
	configDir := getEnv("SITES_DIR", "config/sites")
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return err
		}
		if site.ID == "" {
			log.Printf("Config: skipping %s: missing site id", path)
			continue
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
