package gridex

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver string // postgres, sqlite, mysql
	dsn    string
	db     *sql.DB

	resources     []Resource
	resourcesFile string

	defaultPageSize  int
	maxPageSize      int
	ensureIndexes    bool
	readinessTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres connects to PostgreSQL through pgx.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.dsn = dsn
	})
}

// WithSQLite opens a SQLite database file (pure Go driver).
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.dsn = path
	})
}

// WithMySQL connects to MySQL.
func WithMySQL(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "mysql"
		c.dsn = dsn
	})
}

// WithDB uses an already opened pool. dialect is postgres, sqlite or mysql.
// Client.Close closes db.
func WithDB(db *sql.DB, dialect string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = dialect
		c.db = db
	})
}

// WithResource declares a listable resource. May be repeated.
func WithResource(r Resource) Option {
	return optionFunc(func(c *clientConfig) {
		c.resources = append(c.resources, r)
	})
}

// WithResourcesFile loads resource declarations from a YAML file.
func WithResourcesFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.resourcesFile = path
	})
}

// WithPagination sets the default and maximum page sizes.
// Defaults: 10 and 100.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultPageSize
		c.maxPageSize = maxPageSize
	})
}

// WithEnsureIndexes creates the indexes declared resources hint at
// (search.enable_index_hint) during New.
func WithEnsureIndexes() Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureIndexes = true
	})
}

// WithReadinessTimeout bounds the initial connectivity check. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
