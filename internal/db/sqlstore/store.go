package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/db/sqlgen"
)

// Compile-time check: Store implements db.Executor.
var _ db.Executor = (*Store)(nil)

// Config holds connection parameters for a relational store.
type Config struct {
	// Driver is one of postgres, pgx, sqlite, sqlite3 or mysql.
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// CreateExtensions tries CREATE EXTENSION pg_trgm during detection.
	CreateExtensions bool
}

// Store implements db.Executor over database/sql.
type Store struct {
	db       *sql.DB
	compiler *sqlgen.Compiler
	cfg      Config
	caps     db.Capabilities
}

// NewStore opens a connection pool. It does not contact the server; call
// WaitForReady and DetectCapabilities before serving.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	dialect, err := sqlgen.ForName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	conn, err := open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &Store{
		db:       conn,
		compiler: sqlgen.NewCompiler(dialect),
		cfg:      cfg,
		caps:     db.Capabilities{Backend: dialect.Name()},
	}, nil
}

// Wrap adopts an already opened pool. Closing the Store closes conn.
func Wrap(conn *sql.DB, driver string) (*Store, error) {
	dialect, err := sqlgen.ForName(driver)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:       conn,
		compiler: sqlgen.NewCompiler(dialect),
		cfg:      Config{Driver: driver},
		caps:     db.Capabilities{Backend: dialect.Name()},
	}, nil
}

func open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "pgx":
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, err
		}
		return stdlib.OpenDB(*cfg), nil
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		cfg.ParseTime = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	case "sqlite", "sqlite3":
		return sql.Open(driver, dsn)
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// DB exposes the pool for schema setup in tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

// Capabilities returns the last detected capabilities.
func (s *Store) Capabilities() db.Capabilities { return s.caps }

// DetectCapabilities probes the server once. Only Postgres offers the
// fuzzy path: ts_rank is built in, similarity needs pg_trgm.
func (s *Store) DetectCapabilities(ctx context.Context) (db.Capabilities, error) {
	caps := db.Capabilities{Backend: s.compiler.Dialect().Name()}
	if caps.Backend != "postgres" {
		s.caps = caps
		return caps, nil
	}
	caps.FullText = true

	if s.cfg.CreateExtensions {
		// Needs CREATE privilege; absence is detected below.
		_, _ = s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS pg_trgm")
	}
	var has bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'pg_trgm')").Scan(&has)
	if err != nil {
		return db.Capabilities{}, &db.Error{Op: db.OpPing, Err: fmt.Errorf("detect pg_trgm: %w", err)}
	}
	caps.Trigram = has
	s.caps = caps
	return caps, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
