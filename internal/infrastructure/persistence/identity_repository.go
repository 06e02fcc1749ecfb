package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindByCode finds a tenant by its unique code
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// GormMembershipRepository implements MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByID finds a membership by its ID
func (r *GormMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).First(&membership, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// FindActiveByPerson returns all active memberships for a person, most
// recently used first
func (r *GormMembershipRepository) FindActiveByPerson(ctx context.Context, personID uuid.UUID) ([]identity.Membership, error) {
	var memberships []identity.Membership
	if err := r.db.WithContext(ctx).
		Where("person_id = ? AND status = ?", personID, identity.MembershipStatusActive).
		Order("last_used_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// FindActiveOwner returns the single active owner membership for a tenant
func (r *GormMembershipRepository) FindActiveOwner(ctx context.Context, tenantID uuid.UUID) (*identity.Membership, error) {
	var membership identity.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND role_name = ? AND status = ?",
			tenantID, identity.RoleNameOwner, identity.MembershipStatusActive).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// CountActiveOwners counts active owner memberships for a tenant
func (r *GormMembershipRepository) CountActiveOwners(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Membership{}).
		Where("tenant_id = ? AND role_name = ? AND status = ?",
			tenantID, identity.RoleNameOwner, identity.MembershipStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

// Ensure implementations satisfy the domain interfaces
var _ identity.TenantRepository = (*GormTenantRepository)(nil)
var _ identity.MembershipRepository = (*GormMembershipRepository)(nil)
