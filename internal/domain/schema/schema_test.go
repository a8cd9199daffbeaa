package schema

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/gridex/internal/domain/search/settings"
)

func mustField(t *testing.T, name string, kind Kind, opts ...FieldOption) Field {
	t.Helper()
	f, err := NewField(name, kind, opts...)
	if err != nil {
		t.Fatalf("NewField(%q): unexpected error: %v", name, err)
	}
	return f
}

func newTestResource(t *testing.T, opts ...ResourceOption) Resource {
	t.Helper()
	fields := []Field{
		mustField(t, "id", Numeric, Sortable()),
		mustField(t, "name", Text, Searchable(), Sortable()),
		mustField(t, "sku", Text, Searchable()),
		mustField(t, "qty", Numeric, Sortable()),
		mustField(t, "customer.name", Relation, WithColumn("customer_name"), Searchable()),
		mustField(t, "notes", Text, NotFilterable()),
	}
	r, err := NewResource("products", "inventory_product", fields, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestNewField_Valid(t *testing.T) {
	f := mustField(t, "customer.name", Relation, WithColumn("customer_name"), Searchable(), Sortable())
	if f.Name() != "customer.name" || f.Column() != "customer_name" {
		t.Errorf("Name/Column = %q/%q", f.Name(), f.Column())
	}
	if !f.IsSearchable() || !f.IsSortable() || !f.IsFilterable() {
		t.Errorf("flags = %v/%v/%v", f.IsSearchable(), f.IsSortable(), f.IsFilterable())
	}
	if f.IsText() {
		t.Error("relation field reported as text")
	}

	g := mustField(t, "name", Text)
	if g.Column() != "name" {
		t.Errorf("default column = %q, want name", g.Column())
	}
}

func TestNewField_Invalid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		opts []FieldOption
	}{
		{"", Text, nil},
		{strings.Repeat("x", 129), Text, nil},
		{"bad-name", Text, nil},
		{"1abc", Text, nil},
		{"name", "blob", nil},
		{"name", Text, []FieldOption{WithColumn("name; drop table")}},
	}
	for _, tt := range tests {
		if _, err := NewField(tt.name, tt.kind, tt.opts...); err == nil {
			t.Errorf("NewField(%q, %q) expected error", tt.name, tt.kind)
		}
	}
}

func TestNewResource_Defaults(t *testing.T) {
	r := newTestResource(t)
	if r.PrimaryKey() != "id" {
		t.Errorf("PrimaryKey() = %q", r.PrimaryKey())
	}
	want := []string{"name", "sku", "customer.name"}
	got := r.DefaultSearch()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("DefaultSearch() = %v, want %v", got, want)
	}
	if r.SearchConfig().MaxResults != settings.DefaultMaxResults {
		t.Errorf("MaxResults = %d", r.SearchConfig().MaxResults)
	}
}

func TestNewResource_Invalid(t *testing.T) {
	name := mustField(t, "name", Text, Searchable())
	qty := mustField(t, "qty", Numeric)

	tests := []struct {
		desc   string
		name   string
		table  string
		fields []Field
		opts   []ResourceOption
	}{
		{"bad name", "bad name", "t", []Field{name}, nil},
		{"bad table", "r", "t;x", []Field{name}, nil},
		{"no fields", "r", "t", nil, nil},
		{"duplicate", "r", "t", []Field{name, name}, nil},
		{"bad soft delete", "r", "t", []Field{name}, []ResourceOption{WithSoftDelete("is removed")}},
		{"default search not searchable", "r", "t", []Field{name, qty}, []ResourceOption{WithDefaultSearch("qty")}},
		{"weight on unknown field", "r", "t", []Field{name}, []ResourceOption{WithSearchConfig(settings.Config{
			MaxResults: 10, FieldWeights: map[string]float64{"nope": 2},
		})}},
		{"zero max results", "r", "t", []Field{name}, []ResourceOption{WithSearchConfig(settings.Config{})}},
	}
	for _, tt := range tests {
		if _, err := NewResource(tt.name, tt.table, tt.fields, tt.opts...); err == nil {
			t.Errorf("%s: expected error", tt.desc)
		}
	}
}

func TestResolveSearchColumns(t *testing.T) {
	r := newTestResource(t)

	t.Run("defaults when none requested", func(t *testing.T) {
		got, dropped := r.ResolveSearchColumns(nil)
		if len(got) != 3 || got[0].Name() != "name" || got[2].Name() != "customer.name" {
			t.Errorf("resolved = %v", got)
		}
		if len(dropped) != 0 {
			t.Errorf("dropped = %v", dropped)
		}
	})

	t.Run("intersection", func(t *testing.T) {
		got, dropped := r.ResolveSearchColumns([]string{"sku", "qty", "missing", "sku"})
		if len(got) != 1 || got[0].Name() != "sku" {
			t.Errorf("resolved = %v", got)
		}
		if strings.Join(dropped, ",") != "qty,missing" {
			t.Errorf("dropped = %v", dropped)
		}
	})

	t.Run("empty intersection", func(t *testing.T) {
		got, _ := r.ResolveSearchColumns([]string{"qty"})
		if len(got) != 0 {
			t.Errorf("resolved = %v, want none", got)
		}
	})
}

func TestColumns_IncludesPrimaryKey(t *testing.T) {
	name := mustField(t, "name", Text)
	r, err := NewResource("r", "t", []Field{name}, WithPrimaryKey("uuid"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cols := r.Columns()
	if len(cols) != 2 || cols[0] != "uuid" || cols[1] != "name" {
		t.Errorf("Columns() = %v", cols)
	}
}
