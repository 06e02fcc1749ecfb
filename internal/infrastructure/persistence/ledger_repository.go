package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormLedgerRepository implements the append-only LedgerRepository using
// GORM. Rows are only ever inserted; the current stock for an item is a SUM
// over its rows computed at read time.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts one immutable entry
func (r *GormLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SumForItem computes quantity on hand for (tenant, item) as the fold over
// all entries: in adds, out subtracts, adjustments carry their own sign
func (r *GormLedgerRepository) SumForItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Select("COALESCE(SUM(CASE kind WHEN 'out' THEN -quantity ELSE quantity END), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// FindForItem returns entries for (tenant, item) ordered by occurrence
func (r *GormLedgerRepository) FindForItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("occurred_at ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForDocument counts entries attached to a document
func (r *GormLedgerRepository) CountForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure implementation satisfies the domain interface
var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
