package config

import (
	"fmt"
	"strings"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case DatabaseMemory:
		case DatabasePostgres:
			if url == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
		case DatabaseSQLite:
			if url != "" {
				c.SQLitePath = strings.TrimPrefix(url, "sqlite://")
			}
			c.DatabaseType = dbType
			c.DatabaseURL = ""
			return nil
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithSQLitePath sets the SQLite database file
func WithSQLitePath(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty")
		}
		c.SQLitePath = path
		return nil
	}
}

// WithAPIKeyHash sets the SHA-256 of the admin API key
func WithAPIKeyHash(hash string) Option {
	return func(c *ServerConfig) error {
		c.APIKeySHA256 = hash
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithMetrics enables or disables the /metrics endpoint
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithCORSOrigins replaces the allowed CORS origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSOrigins = origins
		return nil
	}
}
