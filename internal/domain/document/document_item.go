package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// DocumentItem is a line on a purchase or sales document. Quantities are
// whole units; serial-tracked lines are fulfilled through serial links rather
// than plain quantities.
type DocumentItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentItem) TableName() string {
	return "document_items"
}

// NewDocumentItem creates a new document line
func NewDocumentItem(tenantID, documentID, itemID uuid.UUID, quantity int64) (*DocumentItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Quantity must be positive")
	}

	now := time.Now()
	return &DocumentItem{
		ID:         uuid.New(),
		DocumentID: documentID,
		TenantID:   tenantID,
		ItemID:     itemID,
		Quantity:   quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateQuantity changes the line quantity
func (i *DocumentItem) UpdateQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeValidationFailure, "Quantity must be positive")
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}
