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

// GormPurchaseDocumentRepository implements PurchaseDocumentRepository using GORM
type GormPurchaseDocumentRepository struct {
	db *gorm.DB
}

// NewGormPurchaseDocumentRepository creates a new GormPurchaseDocumentRepository
func NewGormPurchaseDocumentRepository(db *gorm.DB) *GormPurchaseDocumentRepository {
	return &GormPurchaseDocumentRepository{db: db}
}

// FindByIDForTenant finds a purchase document by ID within a tenant
func (r *GormPurchaseDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.PurchaseDocument, error) {
	var doc document.PurchaseDocument
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

// FindByIDForTenantLocked loads the document under SELECT ... FOR UPDATE. The
// row lock is held for the remainder of the surrounding transaction and
// serializes concurrent posting attempts on the same document.
func (r *GormPurchaseDocumentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*document.PurchaseDocument, error) {
	var doc document.PurchaseDocument
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Lines are loaded after the lock is taken; FOR UPDATE cannot span the
	// preloaded association query.
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, id).
		Find(&doc.Items).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAllScoped finds the purchase documents visible to the caller's role:
// always tenant-bound, narrowed by branch or creator when the scope carries
// them
func (r *GormPurchaseDocumentRepository) FindAllScoped(ctx context.Context, scope identity.ScopePredicate, filter shared.Filter) ([]document.PurchaseDocument, error) {
	var docs []document.PurchaseDocument
	query := applyFilter(
		ApplyScope(
			r.db.WithContext(ctx).Model(&document.PurchaseDocument{}).Preload("Items"),
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

// Save creates or updates a purchase document and its lines
func (r *GormPurchaseDocumentRepository) Save(ctx context.Context, doc *document.PurchaseDocument) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(doc).Error
}

// UpdateStatusGuarded flips the status while re-asserting the expected prior
// status in the same write. Zero rows affected means another actor changed
// the document first; the caller must abort.
func (r *GormPurchaseDocumentRepository) UpdateStatusGuarded(ctx context.Context, doc *document.PurchaseDocument, expected document.PurchaseStatus) error {
	result := r.db.WithContext(ctx).
		Model(&document.PurchaseDocument{}).
		Where("tenant_id = ? AND id = ? AND status = ?", doc.TenantID, doc.ID, expected).
		Updates(map[string]interface{}{
			"status":      doc.Status,
			"approved_at": doc.ApprovedAt,
			"posted_at":   doc.PostedAt,
			"posted_by":   doc.PostedBy,
			"version":     doc.Version,
			"updated_at":  doc.UpdatedAt,
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
var _ document.PurchaseDocumentRepository = (*GormPurchaseDocumentRepository)(nil)
