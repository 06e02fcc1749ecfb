package inventory

import (
	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// Event types for inventory
const (
	EventTypeStockAdjusted   = "inventory.stock_adjusted"
	EventTypeSerialsReserved = "inventory.serials_reserved"
)

// StockAdjustedEvent is emitted when a manual adjustment entry is appended
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
	Delta  int64     `json:"delta"`
	Reason string    `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(entry *LedgerEntry) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "LedgerEntry", entry.ID, entry.TenantID),
		ItemID:          entry.ItemID,
		Delta:           entry.SignedQuantity(),
		Reason:          entry.Reason,
	}
}

// SerialsReservedEvent is emitted when serial units are reserved for a
// document item
type SerialsReservedEvent struct {
	shared.BaseDomainEvent
	DocumentItemID uuid.UUID `json:"document_item_id"`
	ReservedCount  int       `json:"reserved_count"`
}

// NewSerialsReservedEvent creates a new SerialsReservedEvent
func NewSerialsReservedEvent(tenantID, documentItemID uuid.UUID, reservedCount int) *SerialsReservedEvent {
	return &SerialsReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSerialsReserved, "SerialLink", documentItemID, tenantID),
		DocumentItemID:  documentItemID,
		ReservedCount:   reservedCount,
	}
}
