package identity

import (
	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// RoleName identifies one of the four membership roles
type RoleName string

const (
	RoleNameOwner      RoleName = "owner"
	RoleNameBranchHead RoleName = "branch_head"
	RoleNameAdvisor    RoleName = "advisor"
	RoleNameAgent      RoleName = "agent"
)

// IsValid checks if the name is a valid RoleName
func (n RoleName) IsValid() bool {
	switch n {
	case RoleNameOwner, RoleNameBranchHead, RoleNameAdvisor, RoleNameAgent:
		return true
	}
	return false
}

// String returns the string representation of RoleName
func (n RoleName) String() string {
	return string(n)
}

// ScopePredicate describes the rows a role may see. The persistence layer
// translates it into query conditions; nil pointer fields mean "no constraint
// on that column".
type ScopePredicate struct {
	TenantID uuid.UUID
	BranchID *uuid.UUID
	ActorID  *uuid.UUID
}

// Role is the behaviour attached to a membership role. Each concrete role
// decides its own visibility scope and write permission, replacing scattered
// role-name comparisons at call sites.
type Role interface {
	Name() RoleName
	// VisibleScope returns the row predicate for everything this role can see
	// within the given tenant
	VisibleScope(tenantID uuid.UUID) ScopePredicate
	// CanWrite reports whether the role may create ledger entries and post documents
	CanWrite() bool
}

// Owner sees and writes everything in the tenant
type Owner struct{}

func (Owner) Name() RoleName { return RoleNameOwner }

func (Owner) VisibleScope(tenantID uuid.UUID) ScopePredicate {
	return ScopePredicate{TenantID: tenantID}
}

func (Owner) CanWrite() bool { return true }

// BranchHead sees and writes within a single branch
type BranchHead struct {
	BranchID uuid.UUID
}

func (r BranchHead) Name() RoleName { return RoleNameBranchHead }

func (r BranchHead) VisibleScope(tenantID uuid.UUID) ScopePredicate {
	branch := r.BranchID
	return ScopePredicate{TenantID: tenantID, BranchID: &branch}
}

func (BranchHead) CanWrite() bool { return true }

// Advisor sees everything in the tenant but cannot write
type Advisor struct{}

func (Advisor) Name() RoleName { return RoleNameAdvisor }

func (Advisor) VisibleScope(tenantID uuid.UUID) ScopePredicate {
	return ScopePredicate{TenantID: tenantID}
}

func (Advisor) CanWrite() bool { return false }

// Agent sees only their own records within their branch
type Agent struct {
	BranchID uuid.UUID
	PersonID uuid.UUID
}

func (r Agent) Name() RoleName { return RoleNameAgent }

func (r Agent) VisibleScope(tenantID uuid.UUID) ScopePredicate {
	branch := r.BranchID
	actor := r.PersonID
	return ScopePredicate{TenantID: tenantID, BranchID: &branch, ActorID: &actor}
}

func (Agent) CanWrite() bool { return true }

// RoleFor builds the concrete Role for a membership. BranchHead and Agent
// require a branch assignment.
func RoleFor(name RoleName, personID uuid.UUID, branchID *uuid.UUID) (Role, error) {
	switch name {
	case RoleNameOwner:
		return Owner{}, nil
	case RoleNameAdvisor:
		return Advisor{}, nil
	case RoleNameBranchHead:
		if branchID == nil {
			return nil, shared.NewDomainError(shared.CodeValidationFailure, "Branch head role requires a branch")
		}
		return BranchHead{BranchID: *branchID}, nil
	case RoleNameAgent:
		if branchID == nil {
			return nil, shared.NewDomainError(shared.CodeValidationFailure, "Agent role requires a branch")
		}
		return Agent{BranchID: *branchID, PersonID: personID}, nil
	}
	return nil, shared.NewDomainError(shared.CodeValidationFailure, "Unknown role: "+string(name))
}
