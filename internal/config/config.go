package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hersh/blitztris/internal/logging"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config is the score server configuration.
type Config struct {
	Server ServerConfig   `yaml:"server"`
	Store  StoreConfig    `yaml:"store"`
	Log    logging.Config `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StoreConfig struct {
	Backend         string `yaml:"backend"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	PostgresDSN     string `yaml:"postgres_dsn"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 5000},
		Store: StoreConfig{
			Backend:         StoreMemory,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "tetris",
			MongoCollection: "scores",
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path (or $SCORES_CONFIG when path is empty),
// then applies environment overrides. A missing path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SCORES_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	setString(&cfg.Store.Backend, "SCORES_STORE")
	setString(&cfg.Store.MongoURI, "MONGODB_URI")
	setString(&cfg.Store.MongoDatabase, "MONGODB_DATABASE")
	setString(&cfg.Store.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("mongo store needs a URI")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("postgres store needs a DSN")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
