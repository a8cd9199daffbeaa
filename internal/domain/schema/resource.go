package schema

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/gridex/internal/domain/search/settings"
)

var resourceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Resource is the declared shape of one listable table (immutable).
type Resource struct {
	name          string
	table         string
	primaryKey    string
	softDelete    string
	tenantColumn  string
	fields        []Field
	byName        map[string]int
	defaultSearch []string
	search        settings.Config
}

// ResourceOption customises a Resource.
type ResourceOption func(*Resource)

// WithPrimaryKey overrides the primary identifier column (default "id").
func WithPrimaryKey(column string) ResourceOption {
	return func(r *Resource) { r.primaryKey = column }
}

// WithSoftDelete declares the boolean column that marks removed rows.
func WithSoftDelete(column string) ResourceOption {
	return func(r *Resource) { r.softDelete = column }
}

// WithTenantColumn declares the column holding the owning tenant.
func WithTenantColumn(column string) ResourceOption {
	return func(r *Resource) { r.tenantColumn = column }
}

// WithDefaultSearch sets the columns searched when the caller names none.
// Defaults to every searchable field in declaration order.
func WithDefaultSearch(fields ...string) ResourceOption {
	return func(r *Resource) { r.defaultSearch = fields }
}

// WithSearchConfig sets the search configuration.
func WithSearchConfig(cfg settings.Config) ResourceOption {
	return func(r *Resource) { r.search = cfg }
}

// NewResource validates and creates a Resource.
func NewResource(name, table string, fields []Field, opts ...ResourceOption) (Resource, error) {
	if name == "" || len(name) > 64 || !resourceNameRegex.MatchString(name) {
		return Resource{}, fmt.Errorf("invalid resource name %q", name)
	}
	if !IsValidIdentifier(table) {
		return Resource{}, fmt.Errorf("invalid table %q for resource %q", table, name)
	}
	if len(fields) == 0 {
		return Resource{}, fmt.Errorf("resource %q declares no fields", name)
	}

	r := Resource{
		name:       name,
		table:      table,
		primaryKey: "id",
		fields:     append([]Field(nil), fields...),
		byName:     make(map[string]int, len(fields)),
		search:     settings.Default(),
	}
	for _, opt := range opts {
		opt(&r)
	}

	for i, f := range r.fields {
		if _, dup := r.byName[f.Name()]; dup {
			return Resource{}, fmt.Errorf("duplicate field %q in resource %q", f.Name(), name)
		}
		r.byName[f.Name()] = i
	}
	for _, col := range []string{r.primaryKey, r.softDelete, r.tenantColumn} {
		if col != "" && !IsValidIdentifier(col) {
			return Resource{}, fmt.Errorf("invalid column %q in resource %q", col, name)
		}
	}
	if r.primaryKey == "" {
		return Resource{}, fmt.Errorf("resource %q has no primary key", name)
	}

	if r.defaultSearch == nil {
		for _, f := range r.fields {
			if f.IsSearchable() {
				r.defaultSearch = append(r.defaultSearch, f.Name())
			}
		}
	}
	for _, n := range r.defaultSearch {
		f, ok := r.Field(n)
		if !ok || !f.IsSearchable() {
			return Resource{}, fmt.Errorf("default search field %q is not a searchable field of %q", n, name)
		}
	}

	if err := r.search.Validate(); err != nil {
		return Resource{}, fmt.Errorf("resource %q: %w", name, err)
	}
	for w := range r.search.FieldWeights {
		if _, ok := r.byName[w]; !ok {
			return Resource{}, fmt.Errorf("resource %q: weight for undeclared field %q", name, w)
		}
	}
	return r, nil
}

// Name returns the resource name.
func (r Resource) Name() string { return r.name }

// Table returns the physical table.
func (r Resource) Table() string { return r.table }

// PrimaryKey returns the primary identifier column.
func (r Resource) PrimaryKey() string { return r.primaryKey }

// SoftDeleteColumn returns the soft-delete flag column, or "".
func (r Resource) SoftDeleteColumn() string { return r.softDelete }

// TenantColumn returns the tenant column, or "".
func (r Resource) TenantColumn() string { return r.tenantColumn }

// Fields returns a copy of the declared fields in declaration order.
func (r Resource) Fields() []Field { return append([]Field(nil), r.fields...) }

// DefaultSearch returns the default search field names.
func (r Resource) DefaultSearch() []string { return append([]string(nil), r.defaultSearch...) }

// SearchConfig returns the resource's search configuration.
func (r Resource) SearchConfig() settings.Config { return r.search }

// Field looks up a declared field by name.
func (r Resource) Field(name string) (Field, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Columns returns the physical columns of all declared fields plus the
// primary key, as selected by flat listings.
func (r Resource) Columns() []string {
	out := make([]string, 0, len(r.fields)+1)
	seenPK := false
	for _, f := range r.fields {
		if f.Column() == r.primaryKey {
			seenPK = true
		}
		out = append(out, f.Column())
	}
	if !seenPK {
		out = append([]string{r.primaryKey}, out...)
	}
	return out
}
