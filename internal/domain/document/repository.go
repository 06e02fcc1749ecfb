package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/shared"
)

// PurchaseDocumentRepository provides access to purchase documents
type PurchaseDocumentRepository interface {
	shared.TenantRepository[PurchaseDocument]
	// FindByIDForTenantLocked loads the document under an exclusive row lock
	// held for the remainder of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseDocument, error)
	// FindAllScoped lists documents restricted to the rows the caller's role
	// may see: always the tenant, narrowed further by branch or creator when
	// the scope carries them
	FindAllScoped(ctx context.Context, scope identity.ScopePredicate, filter shared.Filter) ([]PurchaseDocument, error)
	// UpdateStatusGuarded flips the status while re-asserting the expected
	// prior status in the same write. Zero rows affected means another actor
	// got there first and the caller must abort.
	UpdateStatusGuarded(ctx context.Context, doc *PurchaseDocument, expected PurchaseStatus) error
}

// SalesDocumentRepository provides access to sales documents
type SalesDocumentRepository interface {
	shared.TenantRepository[SalesDocument]
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*SalesDocument, error)
	FindAllScoped(ctx context.Context, scope identity.ScopePredicate, filter shared.Filter) ([]SalesDocument, error)
	UpdateStatusGuarded(ctx context.Context, doc *SalesDocument, expected SalesStatus) error
}

// DocumentItemRepository provides direct access to document lines (used by
// serial reservation, which targets a line rather than a whole document)
type DocumentItemRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DocumentItem, error)
}
