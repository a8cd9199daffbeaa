package provision

import (
	"context"

	"github.com/kailas-cloud/gridex/internal/db"
)

// IndexCreator provisions secondary indexes.
type IndexCreator interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}
