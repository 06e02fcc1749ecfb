package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/catalog"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormCatalogEntryRepository implements EntryRepository using GORM. Catalog
// entries are shared master data and deliberately not tenant-scoped.
type GormCatalogEntryRepository struct {
	db *gorm.DB
}

// NewGormCatalogEntryRepository creates a new GormCatalogEntryRepository
func NewGormCatalogEntryRepository(db *gorm.DB) *GormCatalogEntryRepository {
	return &GormCatalogEntryRepository{db: db}
}

// FindByID finds a catalog entry by its ID
func (r *GormCatalogEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Entry, error) {
	var entry catalog.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByCode finds a catalog entry by its unique code
func (r *GormCatalogEntryRepository) FindByCode(ctx context.Context, code string) (*catalog.Entry, error) {
	var entry catalog.Entry
	if err := r.db.WithContext(ctx).First(&entry, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Save creates or updates a catalog entry
func (r *GormCatalogEntryRepository) Save(ctx context.Context, entry *catalog.Entry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// CatalogApprovalGate implements the ApprovalGate contract against the item
// and catalog entry tables. An item with no catalog link is treated as
// approved and carries an empty tax classification.
type CatalogApprovalGate struct {
	items   inventory.ItemRepository
	entries catalog.EntryRepository
}

// NewCatalogApprovalGate creates a new CatalogApprovalGate
func NewCatalogApprovalGate(items inventory.ItemRepository, entries catalog.EntryRepository) *CatalogApprovalGate {
	return &CatalogApprovalGate{items: items, entries: entries}
}

// IsApproved reports whether the item's catalog entry has been approved
func (g *CatalogApprovalGate) IsApproved(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error) {
	item, err := g.items.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return false, err
	}
	if item.CatalogEntryID == nil {
		return true, nil
	}
	entry, err := g.entries.FindByID(ctx, *item.CatalogEntryID)
	if err != nil {
		return false, err
	}
	return entry.Approved, nil
}

// TaxClassification returns the tax code and rate for the item
func (g *CatalogApprovalGate) TaxClassification(ctx context.Context, tenantID, itemID uuid.UUID) (catalog.TaxClassification, error) {
	item, err := g.items.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return catalog.TaxClassification{}, err
	}
	if item.CatalogEntryID == nil {
		return catalog.TaxClassification{}, nil
	}
	entry, err := g.entries.FindByID(ctx, *item.CatalogEntryID)
	if err != nil {
		return catalog.TaxClassification{}, err
	}
	return entry.Classification(), nil
}

// Ensure implementations satisfy the domain interfaces
var _ catalog.EntryRepository = (*GormCatalogEntryRepository)(nil)
var _ catalog.ApprovalGate = (*CatalogApprovalGate)(nil)
