package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForTenant finds an item by ID within a tenant
func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
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

// FindBySKU finds an item by its SKU within a tenant
func (r *GormItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds items by their IDs within a tenant. Items missing or owned
// by another tenant are simply absent from the result.
func (r *GormItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []inventory.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForTenant finds all items for a tenant
func (r *GormItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	var items []inventory.Item
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Item{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure implementation satisfies the domain interface
var _ inventory.ItemRepository = (*GormItemRepository)(nil)
