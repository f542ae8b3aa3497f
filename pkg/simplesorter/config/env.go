package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// settings is the external representation of ServerConfig read from the
// environment or from a YAML/ENV file.
type settings struct {
	Port               string   `yaml:"port" env:"PORT"`
	Environment        string   `yaml:"environment" env:"ENVIRONMENT"`
	DatabaseURL        string   `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseType       string   `yaml:"database_type" env:"DATABASE_TYPE"`
	DBSchema           string   `yaml:"db_schema" env:"SORTER_DB_SCHEMA"`
	SQLitePath         string   `yaml:"sqlite_path" env:"SQLITE_PATH"`
	APIKeySHA256       string   `yaml:"api_key_sha256" env:"API_KEY_SHA256"`
	EnableEventLogging bool     `yaml:"enable_event_logging" env:"ENABLE_EVENT_LOGGING"`
	EnableMetrics      bool     `yaml:"enable_metrics" env:"ENABLE_METRICS"`
	CORSOrigins        []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
}

func settingsFrom(c *ServerConfig) settings {
	return settings{
		Port:               c.Port,
		Environment:        c.Environment,
		DatabaseURL:        c.DatabaseURL,
		DatabaseType:       c.DatabaseType,
		DBSchema:           c.DBSchema,
		SQLitePath:         c.SQLitePath,
		APIKeySHA256:       c.APIKeySHA256,
		EnableEventLogging: c.EnableEventLogging,
		EnableMetrics:      c.EnableMetrics,
		CORSOrigins:        c.CORSOrigins,
	}
}

func (s settings) apply(c *ServerConfig) error {
	c.Port = s.Port
	c.Environment = s.Environment
	c.DBSchema = s.DBSchema
	c.SQLitePath = s.SQLitePath
	c.APIKeySHA256 = s.APIKeySHA256
	c.EnableEventLogging = s.EnableEventLogging
	c.EnableMetrics = s.EnableMetrics
	c.CORSOrigins = s.CORSOrigins
	return applyDatabase(s.DatabaseType, s.DatabaseURL, c)
}

// WithEnv applies environment variable overrides.
//
// Variables that are not set leave the current value untouched:
//
//	PORT                 Server port (default: "8080")
//	ENVIRONMENT          development, production or testing
//	DATABASE_URL         "memory", "postgres://...", "postgresql://..." or "sqlite://path"
//	                     The scheme selects DATABASE_TYPE when that is not given.
//	DATABASE_TYPE        memory, postgres or sqlite
//	SORTER_DB_SCHEMA     Postgres search_path (default: "sorter")
//	SQLITE_PATH          SQLite database file
//	API_KEY_SHA256       SHA-256 of the admin API key
//	ENABLE_EVENT_LOGGING Log order events
//	ENABLE_METRICS       Expose /metrics
//	CORS_ORIGINS         Comma separated allowed origins
func WithEnv() Option {
	return func(c *ServerConfig) error {
		s := settingsFrom(c)
		if err := cleanenv.ReadEnv(&s); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return s.apply(c)
	}
}

// WithConfigFile loads a YAML or .env file, then applies environment overrides.
func WithConfigFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		s := settingsFrom(c)
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return s.apply(c)
	}
}

// applyDatabase resolves the database type from an explicit type or the URL scheme
func applyDatabase(dbType, dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "" || dbURL == "memory" || dbURL == "memory://":
		c.DatabaseURL = ""
		if dbType == "" {
			dbType = c.DatabaseType
		}
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseURL = dbURL
		if dbType == "" || dbType == DatabaseMemory {
			dbType = DatabasePostgres
		}
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseURL = ""
		c.SQLitePath = path
		if dbType == "" || dbType == DatabaseMemory {
			dbType = DatabaseSQLite
		}
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'sqlite://...')", dbURL)
	}

	c.DatabaseType = dbType
	return nil
}
