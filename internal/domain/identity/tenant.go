package identity

import (
	"strings"

	"github.com/stocklane/backend/internal/domain/shared"
)

// TenantStatus represents the lifecycle state of a tenant
type TenantStatus string

const (
	TenantStatusOnboardingPending TenantStatus = "onboarding_pending"
	TenantStatusActive            TenantStatus = "active"
	TenantStatusSuspended         TenantStatus = "suspended"
	TenantStatusArchived          TenantStatus = "archived"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusOnboardingPending, TenantStatusActive, TenantStatusSuspended, TenantStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of TenantStatus
func (s TenantStatus) String() string {
	return string(s)
}

// InventoryPolicy governs how insufficient stock is handled when a sales
// document is posted.
type InventoryPolicy string

const (
	// InventoryPolicyStrict rejects any sale that would drive stock negative
	InventoryPolicyStrict InventoryPolicy = "strict"
	// InventoryPolicyWarnAllow records the movement and surfaces a warning
	InventoryPolicyWarnAllow InventoryPolicy = "warn_allow"
	// InventoryPolicySilent records the movement with no warning
	InventoryPolicySilent InventoryPolicy = "silent"
)

// IsValid checks if the policy is a valid InventoryPolicy
func (p InventoryPolicy) IsValid() bool {
	switch p {
	case InventoryPolicyStrict, InventoryPolicyWarnAllow, InventoryPolicySilent:
		return true
	}
	return false
}

// Blocks reports whether the policy rejects a sale that exceeds available stock
func (p InventoryPolicy) Blocks() bool {
	return p == InventoryPolicyStrict
}

// Warns reports whether the caller should see a warning when stock goes negative
func (p InventoryPolicy) Warns() bool {
	return p == InventoryPolicyWarnAllow
}

// Tenant represents an isolated business account. All stock and document data
// is partitioned by the tenant id.
type Tenant struct {
	shared.BaseAggregateRoot
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Status          TenantStatus    `gorm:"type:varchar(30);not null;default:'onboarding_pending'"`
	InventoryPolicy InventoryPolicy `gorm:"type:varchar(20);not null;default:'strict'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant in onboarding_pending state with the strict
// inventory policy
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            TenantStatusOnboardingPending,
		InventoryPolicy:   InventoryPolicyStrict,
	}, nil
}

// Activate transitions the tenant to active
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusArchived {
		return shared.WorkflowViolation("Cannot activate an archived tenant", t.Status.String())
	}
	t.Status = TenantStatusActive
	t.IncrementVersion()
	return nil
}

// Suspend transitions the tenant to suspended
func (t *Tenant) Suspend() error {
	if t.Status != TenantStatusActive {
		return shared.WorkflowViolation("Only active tenants can be suspended", t.Status.String())
	}
	t.Status = TenantStatusSuspended
	t.IncrementVersion()
	return nil
}

// Archive transitions the tenant to its terminal archived state
func (t *Tenant) Archive() {
	t.Status = TenantStatusArchived
	t.IncrementVersion()
}

// SetInventoryPolicy changes the tenant's inventory policy
func (t *Tenant) SetInventoryPolicy(policy InventoryPolicy) error {
	if !policy.IsValid() {
		return shared.NewDomainError(shared.CodeValidationFailure, "Unknown inventory policy")
	}
	t.InventoryPolicy = policy
	t.IncrementVersion()
	return nil
}

// IsActive returns true if the tenant can perform operations
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
