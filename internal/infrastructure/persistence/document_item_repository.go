package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormDocumentItemRepository implements DocumentItemRepository using GORM.
// Serial reservation targets a single line, so lines are addressable outside
// their parent aggregate for that one read path.
type GormDocumentItemRepository struct {
	db *gorm.DB
}

// NewGormDocumentItemRepository creates a new GormDocumentItemRepository
func NewGormDocumentItemRepository(db *gorm.DB) *GormDocumentItemRepository {
	return &GormDocumentItemRepository{db: db}
}

// FindByIDForTenant finds a document line by ID within a tenant
func (r *GormDocumentItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.DocumentItem, error) {
	var item document.DocumentItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Ensure implementation satisfies the domain interface
var _ document.DocumentItemRepository = (*GormDocumentItemRepository)(nil)
