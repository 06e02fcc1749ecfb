package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/shared"
)

// Context is the resolved calling context: the tenant the caller is acting
// in, the role they hold there and their branch, if any. Every operation's
// asserted tenant id must match the resolved one.
type Context struct {
	PersonID uuid.UUID
	TenantID uuid.UUID
	Role     identity.Role
	BranchID *uuid.UUID
}

// Require fails with TENANT_MISMATCH unless the asserted tenant equals the
// resolved one. This is the single choke point every operation goes through.
func (c Context) Require(assertedTenantID uuid.UUID) error {
	if assertedTenantID == uuid.Nil || assertedTenantID != c.TenantID {
		return shared.ErrTenantMismatch
	}
	return nil
}

// VisibleScope returns the row predicate for the resolved role within the
// resolved tenant
func (c Context) VisibleScope() identity.ScopePredicate {
	return c.Role.VisibleScope(c.TenantID)
}

// ContextResolver resolves an authenticated identity to its working context
type ContextResolver interface {
	Resolve(ctx context.Context, personID uuid.UUID) (Context, error)
}

// Resolver resolves contexts from membership state. It has no side effects:
// resolution never mutates memberships.
type Resolver struct {
	memberships identity.MembershipRepository
	tenants     identity.TenantRepository
}

// NewResolver creates a new Resolver
func NewResolver(memberships identity.MembershipRepository, tenants identity.TenantRepository) *Resolver {
	return &Resolver{
		memberships: memberships,
		tenants:     tenants,
	}
}

// Resolve returns the caller's working context. An explicitly selected
// membership takes precedence; otherwise the most recently used active
// membership is the default. A person with no active membership, or whose
// tenant is not active, cannot resolve a context.
func (r *Resolver) Resolve(ctx context.Context, personID uuid.UUID) (Context, error) {
	if personID == uuid.Nil {
		return Context{}, shared.NewDomainError(shared.CodeValidationFailure, "Person ID cannot be empty")
	}

	memberships, err := r.memberships.FindActiveByPerson(ctx, personID)
	if err != nil {
		return Context{}, err
	}
	if len(memberships) == 0 {
		return Context{}, shared.ErrNotFound
	}

	chosen := &memberships[0] // repository orders by last_used_at desc
	for idx := range memberships {
		if memberships[idx].Selected {
			chosen = &memberships[idx]
			break
		}
	}

	tenant, err := r.tenants.FindByID(ctx, chosen.TenantID)
	if err != nil {
		return Context{}, err
	}
	if !tenant.IsActive() {
		return Context{}, shared.WorkflowViolation("Tenant is not active", tenant.Status.String())
	}

	role, err := chosen.Role()
	if err != nil {
		return Context{}, err
	}

	return Context{
		PersonID: personID,
		TenantID: chosen.TenantID,
		Role:     role,
		BranchID: chosen.BranchID,
	}, nil
}

// Ensure Resolver implements ContextResolver
var _ ContextResolver = (*Resolver)(nil)
