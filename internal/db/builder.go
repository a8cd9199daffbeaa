package db

import (
	"fmt"
	"strings"
)

// IndexBuilder is a fluent builder for secondary index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building a btree index on table. The name is derived from
// table, columns and method unless Named is called.
func NewIndex(table string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Table:  table,
			Method: IndexBTree,
		},
	}
}

// Named sets an explicit index name.
func (b *IndexBuilder) Named(name string) *IndexBuilder {
	b.def.Name = name
	return b
}

// Columns appends btree key columns.
func (b *IndexBuilder) Columns(columns ...string) *IndexBuilder {
	b.def.Columns = append(b.def.Columns, columns...)
	return b
}

// Trigram turns the index into a GIN trigram index on column.
func (b *IndexBuilder) Trigram(column string) *IndexBuilder {
	b.def.Method = IndexTrigram
	b.def.Columns = []string{column}
	return b
}

// Lower turns the index into an expression index on LOWER(column).
func (b *IndexBuilder) Lower(column string) *IndexBuilder {
	b.def.Method = IndexLower
	b.def.Columns = []string{column}
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	def := b.def
	def.Columns = append([]string(nil), b.def.Columns...)
	if def.Name == "" {
		def.Name = indexName(def)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIndexSpec, err)
	}
	return &def, nil
}

// MustBuild is like Build but panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// indexName is "gridex_<table>_<cols>_<method>" with dots replaced; long
// names are cut to the 63-byte Postgres identifier limit.
func indexName(def IndexDefinition) string {
	parts := append([]string{"gridex", def.Table}, def.Columns...)
	parts = append(parts, string(def.Method))
	name := strings.ReplaceAll(strings.Join(parts, "_"), ".", "_")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
