package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

const testResources = `
resources:
  - name: orders
    table: sales.orders
    soft_delete_column: is_removed
    tenant_column: org_id
    default_search: [code, customer]
    fields:
      - {name: code, kind: text, searchable: true, sortable: true}
      - {name: customer, column: customer_name, kind: text, searchable: true}
      - {name: total, kind: numeric, sortable: true}
      - {name: notes, kind: text, filterable: false}
      - {name: created, column: created_at, kind: date, sortable: true}
    search:
      max_results: 20
      use_fuzzy: true
      field_weights: {code: 3}
  - name: customers
    table: customers
    primary_key: customer_id
    fields:
      - {name: name, kind: text, searchable: true}
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(testResources))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders, err := reg.Get(context.Background(), "orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.Table() != "sales.orders" || orders.PrimaryKey() != "id" {
		t.Errorf("table/pk = %s/%s", orders.Table(), orders.PrimaryKey())
	}
	if orders.SoftDeleteColumn() != "is_removed" || orders.TenantColumn() != "org_id" {
		t.Errorf("soft delete/tenant = %s/%s", orders.SoftDeleteColumn(), orders.TenantColumn())
	}
	customer, ok := orders.Field("customer")
	if !ok || customer.Column() != "customer_name" || !customer.IsSearchable() {
		t.Errorf("customer field = %+v, %v", customer, ok)
	}
	notes, _ := orders.Field("notes")
	if notes.IsFilterable() {
		t.Error("notes should not be filterable")
	}
	created, _ := orders.Field("created")
	if created.Kind() != schema.Date {
		t.Errorf("created kind = %s", created.Kind())
	}

	cfg := orders.SearchConfig()
	if cfg.MaxResults != 20 || !cfg.UseFuzzy || cfg.MinQueryLength != 3 || !cfg.PrioritizeExactMatches {
		t.Errorf("search config = %+v", cfg)
	}
	if cfg.Weight("code") != 3 || cfg.Weight("customer") != 1 {
		t.Errorf("weights = %v", cfg.FieldWeights)
	}

	list := reg.List(context.Background())
	if len(list) != 2 || list[0].Name() != "orders" || list[1].PrimaryKey() != "customer_id" {
		t.Errorf("List() = %v", list)
	}
}

func TestGet_NotFound(t *testing.T) {
	reg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Errorf("error = %v, want ErrResourceNotFound", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := map[string]string{
		"unknown key":    "resources:\n  - name: a\n    table: a\n    colour: red\n",
		"bad kind":       "resources:\n  - name: a\n    table: a\n    fields:\n      - {name: x, kind: blob}\n",
		"duplicate name": "resources:\n  - {name: a, table: a}\n  - {name: a, table: b}\n",
		"bad weight":     "resources:\n  - name: a\n    table: a\n    fields:\n      - {name: x, kind: text, searchable: true}\n    search:\n      field_weights: {x: -1}\n",
	}
	for name, raw := range inputs {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	if err := os.WriteFile(path, []byte(testResources), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Get(context.Background(), "customers"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
