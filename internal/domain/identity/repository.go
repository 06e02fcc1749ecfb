package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository provides access to tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// MembershipRepository provides access to memberships
type MembershipRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	// FindActiveByPerson returns all active memberships for a person,
	// most recently used first
	FindActiveByPerson(ctx context.Context, personID uuid.UUID) ([]Membership, error)
	// FindActiveOwner returns the single active owner membership for a tenant
	FindActiveOwner(ctx context.Context, tenantID uuid.UUID) (*Membership, error)
	// CountActiveOwners counts active owner memberships for a tenant; the
	// invariant is exactly one
	CountActiveOwners(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, membership *Membership) error
}
