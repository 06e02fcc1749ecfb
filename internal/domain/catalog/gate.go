package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ApprovalGate is the narrow contract exposed by the master catalog. It is
// consulted only when finalizing a sales document, never for drafts and never
// again at post time. An item with no catalog link is treated as approved.
type ApprovalGate interface {
	// IsApproved reports whether the item's catalog entry has been approved
	IsApproved(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error)
	// TaxClassification returns the tax code and rate for the item
	TaxClassification(ctx context.Context, tenantID, itemID uuid.UUID) (TaxClassification, error)
}

// EntryRepository provides read access to catalog entries
type EntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindByCode(ctx context.Context, code string) (*Entry, error)
	Save(ctx context.Context, entry *Entry) error
}
