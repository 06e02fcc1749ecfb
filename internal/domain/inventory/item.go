package inventory

import (
	"strings"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// Item is a tenant-scoped stock-keeping unit. A serial-tracked item routes all
// quantity handling through serial units instead of plain quantities.
type Item struct {
	shared.TenantAggregateRoot
	SKU            string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_item_tenant_sku,priority:2"`
	Name           string     `gorm:"type:varchar(200);not null"`
	CatalogEntryID *uuid.UUID `gorm:"type:uuid;index"` // optional link to the shared master catalog
	SerialTracked  bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item for a tenant
func NewItem(tenantID uuid.UUID, sku, name string, serialTracked bool) (*Item, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item SKU cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item SKU cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item name cannot be empty")
	}

	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		SerialTracked:       serialTracked,
	}, nil
}

// LinkCatalogEntry links the item to a shared master-catalog entry
func (i *Item) LinkCatalogEntry(entryID uuid.UUID) error {
	if entryID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidationFailure, "Catalog entry ID cannot be empty")
	}
	i.CatalogEntryID = &entryID
	i.IncrementVersion()
	return nil
}

// Rename changes the display name
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidationFailure, "Item name cannot be empty")
	}
	i.Name = name
	i.IncrementVersion()
	return nil
}
