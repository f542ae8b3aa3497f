package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	"github.com/tendant/simple-sorter/pkg/simplesorter/repo/memory"
	repopg "github.com/tendant/simple-sorter/pkg/simplesorter/repo/postgres"
	reposqlite "github.com/tendant/simple-sorter/pkg/simplesorter/repo/sqlite"
)

// Database types
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       DatabaseMemory,
		DBSchema:           "sorter",
		SQLitePath:         "./data/sorter.db",
		EnableEventLogging: true,
		EnableMetrics:      true,
		CORSOrigins:        []string{"http://localhost:3000"},
	}
}

// ServerConfig represents server configuration for the simple-sorter service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres", "sqlite"
	DBSchema     string // Postgres schema to use (default: sorter)
	SQLitePath   string

	// Admin routes require an API key whose SHA-256 matches this value.
	// Empty disables the check.
	APIKeySHA256 string

	// Server options
	EnableEventLogging bool
	EnableMetrics      bool
	CORSOrigins        []string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	case DatabaseSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required when using sqlite")
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	if c.Environment == "production" && c.APIKeySHA256 == "" {
		return errors.New("api_key_sha256 is required in production")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// Extra options are applied after the configured ones.
func (c *ServerConfig) BuildService(extra ...simplesorter.Option) (simplesorter.Service, error) {
	var options []simplesorter.Option

	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, simplesorter.WithRepository(repo))

	if c.EnableEventLogging {
		options = append(options, simplesorter.WithEventSink(simplesorter.NewLoggingEventSink(slog.Default())))
	}

	options = append(options, extra...)
	return simplesorter.New(options...)
}

// BuildRepository creates a Repository based on the configuration
func (c *ServerConfig) BuildRepository() (simplesorter.Repository, error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), nil
	case DatabasePostgres:
		pool, err := c.newPool(context.Background())
		if err != nil {
			return nil, err
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		return repo, nil
	case DatabaseSQLite:
		return reposqlite.New(c.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres using the configured URL and schema.
func (c *ServerConfig) PingPostgres() error {
	pool, err := c.newPool(context.Background())
	if err != nil {
		return err
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
