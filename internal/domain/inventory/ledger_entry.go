package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// EntryKind represents the direction of a ledger entry
type EntryKind string

const (
	// EntryKindIn records stock received into inventory
	EntryKindIn EntryKind = "in"
	// EntryKindOut records stock leaving inventory
	EntryKindOut EntryKind = "out"
	// EntryKindAdjustment records a signed manual correction
	EntryKindAdjustment EntryKind = "adjustment"
)

// IsValid returns true if the kind is a valid EntryKind
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindIn, EntryKindOut, EntryKindAdjustment:
		return true
	}
	return false
}

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// LedgerEntry is an immutable stock-movement fact. Entries are only ever
// inserted; corrections are expressed as new adjustment entries. The current
// quantity on hand for an item is the fold over all of its entries.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_tenant_item,priority:1"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_tenant_item,priority:2"`
	Kind       EntryKind `gorm:"type:varchar(20);not null"`
	Quantity   int64     `gorm:"not null"` // whole units; signed only for adjustments
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Reason     string    `gorm:"type:varchar(255)"` // mandatory for adjustments
	DocumentID *uuid.UUID `gorm:"type:uuid;index"`  // source document, when posted
	OccurredAt time.Time `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new immutable ledger entry. in/out entries must
// carry a positive whole quantity; adjustment entries carry a non-zero signed
// delta and a reason.
func NewLedgerEntry(tenantID, itemID uuid.UUID, kind EntryKind, quantity int64, actorID uuid.UUID) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item ID cannot be empty")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Actor ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Unknown entry kind")
	}
	switch kind {
	case EntryKindAdjustment:
		if quantity == 0 {
			return nil, shared.NewDomainError(shared.CodeValidationFailure, "Adjustment delta cannot be zero")
		}
	default:
		if quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidationFailure, "Quantity must be positive")
		}
	}

	return &LedgerEntry{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ItemID:     itemID,
		Kind:       kind,
		Quantity:   quantity,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}, nil
}

// NewAdjustmentEntry creates an adjustment entry with its mandatory reason
func NewAdjustmentEntry(tenantID, itemID uuid.UUID, delta int64, reason string, actorID uuid.UUID) (*LedgerEntry, error) {
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Adjustment reason is required")
	}
	entry, err := NewLedgerEntry(tenantID, itemID, EntryKindAdjustment, delta, actorID)
	if err != nil {
		return nil, err
	}
	entry.Reason = reason
	return entry, nil
}

// WithDocument attaches the source document id to the entry
func (e *LedgerEntry) WithDocument(documentID uuid.UUID) *LedgerEntry {
	e.DocumentID = &documentID
	return e
}

// SignedQuantity returns the entry's contribution to quantity on hand
func (e *LedgerEntry) SignedQuantity() int64 {
	switch e.Kind {
	case EntryKindIn:
		return e.Quantity
	case EntryKindOut:
		return -e.Quantity
	default:
		return e.Quantity // adjustments are already signed
	}
}
