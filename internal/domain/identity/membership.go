package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// MembershipStatus represents the status of a membership
type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusDisabled MembershipStatus = "disabled"
)

// IsValid checks if the status is a valid MembershipStatus
func (s MembershipStatus) IsValid() bool {
	return s == MembershipStatusActive || s == MembershipStatusDisabled
}

// Membership binds a person to a tenant with a role and an optional branch.
// A person may hold memberships in several tenants; at most one of them is
// explicitly selected as the working context.
type Membership struct {
	shared.BaseAggregateRoot
	PersonID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_membership_person"`
	TenantID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_membership_tenant"`
	RoleName   RoleName         `gorm:"type:varchar(20);not null"`
	BranchID   *uuid.UUID       `gorm:"type:uuid"`
	Status     MembershipStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Selected   bool             `gorm:"not null;default:false"`
	LastUsedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// NewMembership creates a new active membership
func NewMembership(personID, tenantID uuid.UUID, roleName RoleName, branchID *uuid.UUID) (*Membership, error) {
	if personID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Person ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant ID cannot be empty")
	}
	// RoleFor validates the role/branch combination
	if _, err := RoleFor(roleName, personID, branchID); err != nil {
		return nil, err
	}

	return &Membership{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PersonID:          personID,
		TenantID:          tenantID,
		RoleName:          roleName,
		BranchID:          branchID,
		Status:            MembershipStatusActive,
		LastUsedAt:        time.Now(),
	}, nil
}

// Role materializes the concrete Role for this membership
func (m *Membership) Role() (Role, error) {
	return RoleFor(m.RoleName, m.PersonID, m.BranchID)
}

// IsActive returns true if the membership is usable
func (m *Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}

// IsOwner returns true if this is an owner membership
func (m *Membership) IsOwner() bool {
	return m.RoleName == RoleNameOwner
}

// Select marks this membership as the person's explicitly chosen context
func (m *Membership) Select() {
	m.Selected = true
	m.Touch()
}

// Deselect clears the explicit selection
func (m *Membership) Deselect() {
	m.Selected = false
	m.IncrementVersion()
}

// Touch records that the membership was used as a context
func (m *Membership) Touch() {
	m.LastUsedAt = time.Now()
	m.IncrementVersion()
}

// Disable deactivates the membership
func (m *Membership) Disable() {
	m.Status = MembershipStatusDisabled
	m.Selected = false
	m.IncrementVersion()
}
