package search

import (
	"context"

	"github.com/kailas-cloud/gridex/internal/db"
)

// Scanner runs the single ranked scan each search issues.
type Scanner interface {
	RunFilteredScan(ctx context.Context, q *db.ScanQuery) (*db.ScanResult, error)
}
