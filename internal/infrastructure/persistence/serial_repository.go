package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormSerialUnitRepository implements SerialUnitRepository using GORM
type GormSerialUnitRepository struct {
	db *gorm.DB
}

// NewGormSerialUnitRepository creates a new GormSerialUnitRepository
func NewGormSerialUnitRepository(db *gorm.DB) *GormSerialUnitRepository {
	return &GormSerialUnitRepository{db: db}
}

// FindByIDForTenant finds a serial unit by ID within a tenant
func (r *GormSerialUnitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.SerialUnit, error) {
	var unit inventory.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindLive returns the single available or reserved unit for the serial
// number, if any. Used rows are history and never returned here; the partial
// unique index on live statuses guarantees at most one match.
func (r *GormSerialUnitRepository) FindLive(ctx context.Context, tenantID, itemID uuid.UUID, serialNumber string) (*inventory.SerialUnit, error) {
	var unit inventory.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ? AND serial_number = ? AND status IN ?",
			tenantID, itemID, serialNumber,
			[]inventory.SerialStatus{inventory.SerialStatusAvailable, inventory.SerialStatusReserved}).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindByIDs finds serial units by their IDs within a tenant
func (r *GormSerialUnitRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.SerialUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var units []inventory.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Save updates a serial unit with optimistic locking: the previous version is
// re-asserted in the write and zero rows affected means a concurrent
// transition won.
func (r *GormSerialUnitRepository) Save(ctx context.Context, unit *inventory.SerialUnit) error {
	result := r.db.WithContext(ctx).
		Model(unit).
		Where("tenant_id = ? AND id = ? AND version = ?", unit.TenantID, unit.ID, unit.Version-1).
		Updates(map[string]interface{}{
			"status":             unit.Status,
			"reservation_expiry": unit.ReservationExpiry,
			"version":            unit.Version,
			"updated_at":         unit.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Create inserts a new serial unit
func (r *GormSerialUnitRepository) Create(ctx context.Context, unit *inventory.SerialUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

// GormSerialLinkRepository implements SerialLinkRepository using GORM
type GormSerialLinkRepository struct {
	db *gorm.DB
}

// NewGormSerialLinkRepository creates a new GormSerialLinkRepository
func NewGormSerialLinkRepository(db *gorm.DB) *GormSerialLinkRepository {
	return &GormSerialLinkRepository{db: db}
}

// FindByDocumentItem returns all links for a document line
func (r *GormSerialLinkRepository) FindByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) ([]inventory.SerialLink, error) {
	var links []inventory.SerialLink
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_item_id = ?", tenantID, documentItemID).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// CountReservedByDocumentItem counts links still reserved for a document line
func (r *GormSerialLinkRepository) CountReservedByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.SerialLink{}).
		Where("tenant_id = ? AND document_item_id = ? AND status = ?",
			tenantID, documentItemID, inventory.SerialLinkStatusReserved).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForSerialUnit reports whether a non-expired link already binds the
// unit to the document line
func (r *GormSerialLinkRepository) ExistsForSerialUnit(ctx context.Context, tenantID, documentItemID, serialUnitID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.SerialLink{}).
		Where("tenant_id = ? AND document_item_id = ? AND serial_unit_id = ? AND status <> ?",
			tenantID, documentItemID, serialUnitID, inventory.SerialLinkStatusExpired).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindReservedBySerialUnit returns reserved links holding the unit
func (r *GormSerialLinkRepository) FindReservedBySerialUnit(ctx context.Context, tenantID, serialUnitID uuid.UUID) ([]inventory.SerialLink, error) {
	var links []inventory.SerialLink
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND serial_unit_id = ? AND status = ?",
			tenantID, serialUnitID, inventory.SerialLinkStatusReserved).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Save updates a serial link
func (r *GormSerialLinkRepository) Save(ctx context.Context, link *inventory.SerialLink) error {
	result := r.db.WithContext(ctx).
		Model(link).
		Where("tenant_id = ? AND id = ?", link.TenantID, link.ID).
		Updates(map[string]interface{}{
			"status":     link.Status,
			"updated_at": link.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Create inserts a new serial link
func (r *GormSerialLinkRepository) Create(ctx context.Context, link *inventory.SerialLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Ensure implementations satisfy the domain interfaces
var _ inventory.SerialUnitRepository = (*GormSerialUnitRepository)(nil)
var _ inventory.SerialLinkRepository = (*GormSerialLinkRepository)(nil)
