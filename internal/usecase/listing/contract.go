package listing

import (
	"context"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/request"
	"github.com/kailas-cloud/gridex/internal/domain/search/result"
	"github.com/kailas-cloud/gridex/internal/usecase/aggregate"
)

// SchemaProvider resolves resource names to declared schemas.
type SchemaProvider interface {
	Get(ctx context.Context, name string) (schema.Resource, error)
}

// Searcher runs the search cascade.
type Searcher interface {
	Search(ctx context.Context, res schema.Resource, req *request.Request) (result.Ranked, error)
}

// Aggregator builds grouped views and totals.
type Aggregator interface {
	Build(ctx context.Context, q aggregate.Query) (aggregate.Result, error)
	CountGroups(ctx context.Context, q aggregate.Query) (int64, error)
	Totals(ctx context.Context, table string, where predicate.Predicate, summaries []group.BoundSummary) (int64, []any, error)
}

// RowReader reads flat pages.
type RowReader interface {
	RunFilteredScan(ctx context.Context, q *db.ScanQuery) (*db.ScanResult, error)
	Count(ctx context.Context, q *db.CountQuery) (int64, error)
}

// Cache stores rendered responses per (resource, tenant).
type Cache interface {
	Get(ctx context.Context, resource, tenant, paramsKey string) (domlist.Response, bool)
	Put(ctx context.Context, resource, tenant, paramsKey string, resp domlist.Response)
	Invalidate(ctx context.Context, resource, tenant string) error
}
