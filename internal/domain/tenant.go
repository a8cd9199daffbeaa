package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type tenantKey struct{}

// Tenant identifies the caller's organisation. The zero value means no
// tenant scoping.
type Tenant struct {
	id uuid.UUID
}

// ParseTenant parses a tenant UUID.
func ParseTenant(s string) (Tenant, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Tenant{}, fmt.Errorf("invalid tenant id %q: %w", s, err)
	}
	if id == uuid.Nil {
		return Tenant{}, fmt.Errorf("tenant id must not be nil uuid")
	}
	return Tenant{id: id}, nil
}

// NewTenant generates a random tenant id.
func NewTenant() Tenant { return Tenant{id: uuid.New()} }

// IsZero reports whether t carries no tenant.
func (t Tenant) IsZero() bool { return t.id == uuid.Nil }

// String returns the canonical UUID form, or "" for the zero tenant.
func (t Tenant) String() string {
	if t.IsZero() {
		return ""
	}
	return t.id.String()
}

// ContextWithTenant stores t in ctx.
func ContextWithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// TenantFromContext returns the tenant stored in ctx, or the zero tenant.
func TenantFromContext(ctx context.Context) Tenant {
	t, _ := ctx.Value(tenantKey{}).(Tenant)
	return t
}
