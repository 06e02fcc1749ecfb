package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/shared"
)

// GormSalesDocumentRepository implements SalesDocumentRepository using GORM
type GormSalesDocumentRepository struct {
	db *gorm.DB
}

// NewGormSalesDocumentRepository creates a new GormSalesDocumentRepository
func NewGormSalesDocumentRepository(db *gorm.DB) *GormSalesDocumentRepository {
	return &GormSalesDocumentRepository{db: db}
}

// FindByIDForTenant finds a sales document by ID within a tenant
func (r *GormSalesDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.SalesDocument, error) {
	var doc document.SalesDocument
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForTenantLocked loads the document under SELECT ... FOR UPDATE,
// serializing concurrent posting, cancellation and finalization attempts on
// the same document.
func (r *GormSalesDocumentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*document.SalesDocument, error) {
	var doc document.SalesDocument
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, id).
		Find(&doc.Items).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAllScoped finds the sales documents visible to the caller's role:
// always tenant-bound, narrowed by branch or creator when the scope carries
// them
func (r *GormSalesDocumentRepository) FindAllScoped(ctx context.Context, scope identity.ScopePredicate, filter shared.Filter) ([]document.SalesDocument, error) {
	var docs []document.SalesDocument
	query := applyFilter(
		ApplyScope(
			r.db.WithContext(ctx).Model(&document.SalesDocument{}).Preload("Items"),
			scope,
			ScopeColumns{Branch: "branch_id", Actor: "created_by"},
		),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a sales document and its lines
func (r *GormSalesDocumentRepository) Save(ctx context.Context, doc *document.SalesDocument) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(doc).Error
}

// UpdateStatusGuarded flips the status while re-asserting the expected prior
// status in the same write. Zero rows affected means the caller lost the race
// and must abort.
func (r *GormSalesDocumentRepository) UpdateStatusGuarded(ctx context.Context, doc *document.SalesDocument, expected document.SalesStatus) error {
	result := r.db.WithContext(ctx).
		Model(&document.SalesDocument{}).
		Where("tenant_id = ? AND id = ? AND status = ?", doc.TenantID, doc.ID, expected).
		Updates(map[string]interface{}{
			"status":        doc.Status,
			"finalized_at":  doc.FinalizedAt,
			"posted_at":     doc.PostedAt,
			"posted_by":     doc.PostedBy,
			"cancelled_at":  doc.CancelledAt,
			"cancel_reason": doc.CancelReason,
			"version":       doc.Version,
			"updated_at":    doc.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WorkflowViolation("Document status changed concurrently", expected.String())
	}
	return nil
}

// Ensure implementation satisfies the domain interface
var _ document.SalesDocumentRepository = (*GormSalesDocumentRepository)(nil)
