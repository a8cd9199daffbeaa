package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// Service creates the indexes listing queries rely on for resources that
// ask for them (search.enable_index_hint).
type Service struct {
	indexes IndexCreator
	caps    db.Capabilities
	logger  *zap.Logger
}

// New creates a provisioning service.
func New(indexes IndexCreator, caps db.Capabilities, logger *zap.Logger) *Service {
	return &Service{indexes: indexes, caps: caps, logger: logger}
}

// Ensure creates every planned index. Creation is idempotent; the first
// failure aborts.
func (s *Service) Ensure(ctx context.Context, resources []schema.Resource) error {
	for _, res := range resources {
		for _, def := range Plan(res, s.caps) {
			err := s.indexes.CreateIndex(ctx, &def)
			if errors.Is(err, db.ErrUnsupported) {
				s.logger.Info("Index method unsupported by backend",
					zap.String("index", def.Name), zap.String("method", string(def.Method)))
				continue
			}
			if err != nil {
				return fmt.Errorf("ensure index %s on %s: %w", def.Name, res.Name(), err)
			}
			s.logger.Debug("Index ensured", zap.String("index", def.Name), zap.String("resource", res.Name()))
		}
	}
	return nil
}

// Plan lists the indexes for one resource: btree on sortable and
// filterable columns, LOWER() on filterable text columns and, with
// trigram support, GIN trigram on searchable text columns.
func Plan(res schema.Resource, caps db.Capabilities) []db.IndexDefinition {
	if !res.SearchConfig().EnableIndexHint {
		return nil
	}
	base := "ix_" + strings.ReplaceAll(res.Table(), ".", "_") + "_"

	var out []db.IndexDefinition
	seen := make(map[string]bool)
	// Columns that are not plain identifiers cannot be indexed and are skipped.
	add := func(column, suffix string, b *db.IndexBuilder) {
		name := base + column + suffix
		if seen[name] {
			return
		}
		seen[name] = true
		def, err := b.Named(name).Build()
		if err != nil {
			return
		}
		out = append(out, *def)
	}
	btree := func(column string) { add(column, "", db.NewIndex(res.Table()).Columns(column)) }

	if col := res.SoftDeleteColumn(); col != "" {
		btree(col)
	}
	if col := res.TenantColumn(); col != "" {
		btree(col)
	}
	for _, f := range res.Fields() {
		if f.Column() == res.PrimaryKey() {
			continue
		}
		if f.IsSortable() || (f.IsFilterable() && !f.IsText()) {
			btree(f.Column())
		}
		if f.IsFilterable() && f.IsText() && caps.Backend != "mysql" {
			add(f.Column(), "_lower", db.NewIndex(res.Table()).Lower(f.Column()))
		}
		if f.IsSearchable() && f.IsText() && caps.Trigram {
			add(f.Column(), "_trgm", db.NewIndex(res.Table()).Trigram(f.Column()))
		}
	}
	return out
}
