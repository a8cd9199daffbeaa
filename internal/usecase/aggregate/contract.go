package aggregate

import (
	"context"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/group"
)

// Executor runs group-by passes.
type Executor interface {
	RunAggregate(ctx context.Context, q *db.AggregateQuery) ([]group.AggregateRow, error)
	CountGroups(ctx context.Context, q *db.AggregateQuery) (int64, error)
}
