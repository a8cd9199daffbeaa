package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/gridex/internal/domain/group"
)

// Executor is the relational query executor facade combining all
// sub-interfaces. Consumers depend on the narrow ones.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Executor interface {
	Pinger
	Scanner
	Counter
	Aggregator
	IndexManager
	Capabilities() Capabilities
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scanner runs filtered, ordered, limited row scans.
type Scanner interface {
	RunFilteredScan(ctx context.Context, q *ScanQuery) (*ScanResult, error)
}

// Counter counts rows matching a predicate.
type Counter interface {
	Count(ctx context.Context, q *CountQuery) (int64, error)
}

// Aggregator runs group-by passes.
type Aggregator interface {
	RunAggregate(ctx context.Context, q *AggregateQuery) ([]group.AggregateRow, error)
	CountGroups(ctx context.Context, q *AggregateQuery) (int64, error)
}

// IndexManager provisions secondary indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
}

// KVStore provides simple key-value operations for caches.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
}

// Capabilities is decided once per configured backend.
type Capabilities struct {
	Backend string
	// FullText reports a ranked full-text function (ts_rank).
	FullText bool
	// Trigram reports a trigram similarity function (pg_trgm).
	Trigram bool
}

// Fuzzy reports whether the fuzzy search path can run.
func (c Capabilities) Fuzzy() bool { return c.FullText && c.Trigram }
