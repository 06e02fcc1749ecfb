package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// ItemRepository provides access to items
type ItemRepository interface {
	shared.TenantRepository[Item]
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Item, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Item, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)
}

// LedgerRepository is the append-only store of stock-movement facts. There is
// deliberately no update or delete: the ledger is immutable.
type LedgerRepository interface {
	// Append inserts one immutable entry
	Append(ctx context.Context, entry *LedgerEntry) error
	// SumForItem computes the fold over all entries for (tenant, item) at read
	// time: +in, -out, signed adjustments
	SumForItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
	// FindForItem returns entries for (tenant, item) ordered by occurrence
	FindForItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)
	// CountForDocument counts entries attached to a document
	CountForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (int64, error)
}

// SerialUnitRepository provides access to serial units
type SerialUnitRepository interface {
	shared.TenantRepository[SerialUnit]
	// FindLive returns the single available/reserved unit for the serial
	// number, if any
	FindLive(ctx context.Context, tenantID, itemID uuid.UUID, serialNumber string) (*SerialUnit, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]SerialUnit, error)
	Create(ctx context.Context, unit *SerialUnit) error
}

// SerialLinkRepository provides access to document-item/serial-unit links
type SerialLinkRepository interface {
	FindByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) ([]SerialLink, error)
	// CountReservedByDocumentItem counts links still in reserved status for a
	// document item
	CountReservedByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) (int64, error)
	// ExistsForSerialUnit reports whether a live link already binds the unit
	// to the document item
	ExistsForSerialUnit(ctx context.Context, tenantID, documentItemID, serialUnitID uuid.UUID) (bool, error)
	// FindReservedBySerialUnit returns reserved links holding the unit (used
	// during lazy reclaim of lapsed reservations)
	FindReservedBySerialUnit(ctx context.Context, tenantID, serialUnitID uuid.UUID) ([]SerialLink, error)
	Save(ctx context.Context, link *SerialLink) error
	Create(ctx context.Context, link *SerialLink) error
}
