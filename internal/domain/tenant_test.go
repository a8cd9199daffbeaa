package domain

import (
	"context"
	"testing"
)

func TestParseTenant(t *testing.T) {
	tn, err := ParseTenant("6f1c1f0e-4a5b-4c77-9d3e-0c1a2b3c4d5e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tn.String() != "6f1c1f0e-4a5b-4c77-9d3e-0c1a2b3c4d5e" {
		t.Errorf("String() = %q", tn.String())
	}
	for _, bad := range []string{"", "acme", "00000000-0000-0000-0000-000000000000"} {
		if _, err := ParseTenant(bad); err == nil {
			t.Errorf("ParseTenant(%q) expected error", bad)
		}
	}
}

func TestTenantContext(t *testing.T) {
	if !TenantFromContext(context.Background()).IsZero() {
		t.Error("empty context should carry the zero tenant")
	}
	tn := NewTenant()
	ctx := ContextWithTenant(context.Background(), tn)
	if got := TenantFromContext(ctx); got != tn {
		t.Errorf("TenantFromContext() = %v, want %v", got, tn)
	}
	if (Tenant{}).String() != "" {
		t.Error("zero tenant should render empty")
	}
}
