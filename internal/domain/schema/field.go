package schema

import (
	"fmt"
	"regexp"
)

// Kind is the value kind of a declared field.
type Kind string

// Field kinds.
const (
	Text     Kind = "text"
	Numeric  Kind = "numeric"
	Date     Kind = "date"
	Boolean  Kind = "boolean"
	Relation Kind = "relation"
)

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	switch k {
	case Text, Numeric, Date, Boolean, Relation:
		return true
	}
	return false
}

var (
	fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	identRegex     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// IsValidIdentifier reports whether s is safe to use as a (optionally
// schema-qualified) SQL identifier.
func IsValidIdentifier(s string) bool { return identRegex.MatchString(s) }

// Field is an immutable value object describing one declared field.
type Field struct {
	name       string
	column     string
	kind       Kind
	searchable bool
	sortable   bool
	filterable bool
}

// FieldOption customises a Field.
type FieldOption func(*Field)

// Searchable marks the field as a free-text search column.
func Searchable() FieldOption { return func(f *Field) { f.searchable = true } }

// Sortable marks the field as a valid sort target.
func Sortable() FieldOption { return func(f *Field) { f.sortable = true } }

// NotFilterable excludes the field from structured filters.
func NotFilterable() FieldOption { return func(f *Field) { f.filterable = false } }

// WithColumn maps the field to a physical column name.
func WithColumn(column string) FieldOption { return func(f *Field) { f.column = column } }

// NewField validates and creates a Field. Fields are filterable unless
// NotFilterable is passed; the column defaults to the name.
func NewField(name string, kind Kind, opts ...FieldOption) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 128 {
		return Field{}, fmt.Errorf("field name %q too long (max 128)", name)
	}
	if !fieldNameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q must be a dotted identifier path", name)
	}
	if !kind.IsValid() {
		return Field{}, fmt.Errorf("invalid field kind %q for %q", kind, name)
	}
	f := Field{name: name, kind: kind, filterable: true}
	for _, opt := range opts {
		opt(&f)
	}
	if f.column == "" {
		f.column = name
	}
	if !IsValidIdentifier(f.column) {
		return Field{}, fmt.Errorf("invalid column %q for field %q", f.column, name)
	}
	return f, nil
}

// Name returns the public field name (selector).
func (f Field) Name() string { return f.name }

// Column returns the physical column name.
func (f Field) Column() string { return f.column }

// Kind returns the field kind.
func (f Field) Kind() Kind { return f.kind }

// IsSearchable reports whether free-text search may target the field.
func (f Field) IsSearchable() bool { return f.searchable }

// IsSortable reports whether the field may be used for ordering.
func (f Field) IsSortable() bool { return f.sortable }

// IsFilterable reports whether structured filters may target the field.
func (f Field) IsFilterable() bool { return f.filterable }

// IsText reports whether the field participates in fuzzy text scoring.
func (f Field) IsText() bool { return f.kind == Text }
