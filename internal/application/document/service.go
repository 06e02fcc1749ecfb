package document

import (
	"context"

	"github.com/google/uuid"

	identityapp "github.com/stocklane/backend/internal/application/identity"
	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// Service manages draft documents. Lifecycle transitions past draft
// (approve, finalize, cancel, post) belong to the posting coordinator.
type Service struct {
	resolver     identityapp.ContextResolver
	purchaseDocs document.PurchaseDocumentRepository
	salesDocs    document.SalesDocumentRepository
	items        inventory.ItemRepository
}

// NewService creates a new document Service
func NewService(
	resolver identityapp.ContextResolver,
	purchaseDocs document.PurchaseDocumentRepository,
	salesDocs document.SalesDocumentRepository,
	items inventory.ItemRepository,
) *Service {
	return &Service{
		resolver:     resolver,
		purchaseDocs: purchaseDocs,
		salesDocs:    salesDocs,
		items:        items,
	}
}

// CreatePurchase creates a draft purchase document with its lines
func (s *Service) CreatePurchase(ctx context.Context, tenantID, personID uuid.UUID, req CreateDocumentRequest) (*PurchaseResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	if !rc.Role.CanWrite() {
		return nil, shared.ErrForbidden
	}
	if err := s.checkItems(ctx, tenantID, req.Lines); err != nil {
		return nil, err
	}

	doc, err := document.NewPurchaseDocument(tenantID, req.Number)
	if err != nil {
		return nil, err
	}
	doc.BranchID = req.BranchID
	doc.CreatedBy = personID
	for _, line := range req.Lines {
		if _, err := doc.AddItem(line.ItemID, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.purchaseDocs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return toPurchaseResponse(doc), nil
}

// CreateSales creates a draft sales document with its lines
func (s *Service) CreateSales(ctx context.Context, tenantID, personID uuid.UUID, req CreateDocumentRequest) (*SalesResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	if !rc.Role.CanWrite() {
		return nil, shared.ErrForbidden
	}
	if err := s.checkItems(ctx, tenantID, req.Lines); err != nil {
		return nil, err
	}

	doc, err := document.NewSalesDocument(tenantID, req.Number)
	if err != nil {
		return nil, err
	}
	doc.BranchID = req.BranchID
	doc.CreatedBy = personID
	for _, line := range req.Lines {
		if _, err := doc.AddItem(line.ItemID, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.salesDocs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return toSalesResponse(doc), nil
}

// AddSalesLine adds a line to a draft sales document
func (s *Service) AddSalesLine(ctx context.Context, tenantID, personID, documentID uuid.UUID, req AddLineRequest) (*SalesResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	if !rc.Role.CanWrite() {
		return nil, shared.ErrForbidden
	}
	if _, err := s.items.FindByIDForTenant(ctx, tenantID, req.ItemID); err != nil {
		return nil, err
	}

	doc, err := s.salesDocs.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := doc.AddItem(req.ItemID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.salesDocs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return toSalesResponse(doc), nil
}

// GetPurchase returns a purchase document for the resolved tenant
func (s *Service) GetPurchase(ctx context.Context, tenantID, personID, documentID uuid.UUID) (*PurchaseResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	doc, err := s.purchaseDocs.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(doc), nil
}

// GetSales returns a sales document for the resolved tenant
func (s *Service) GetSales(ctx context.Context, tenantID, personID, documentID uuid.UUID) (*SalesResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	doc, err := s.salesDocs.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	return toSalesResponse(doc), nil
}

// ListPurchases returns the purchase documents the caller's role may see
func (s *Service) ListPurchases(ctx context.Context, tenantID, personID uuid.UUID, filter shared.Filter) ([]PurchaseResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	docs, err := s.purchaseDocs.FindAllScoped(ctx, rc.VisibleScope(), filter)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseResponse, 0, len(docs))
	for idx := range docs {
		out = append(out, *toPurchaseResponse(&docs[idx]))
	}
	return out, nil
}

// ListSales returns the sales documents the caller's role may see
func (s *Service) ListSales(ctx context.Context, tenantID, personID uuid.UUID, filter shared.Filter) ([]SalesResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	docs, err := s.salesDocs.FindAllScoped(ctx, rc.VisibleScope(), filter)
	if err != nil {
		return nil, err
	}
	out := make([]SalesResponse, 0, len(docs))
	for idx := range docs {
		out = append(out, *toSalesResponse(&docs[idx]))
	}
	return out, nil
}

// checkItems verifies every line references a tenant-owned item
func (s *Service) checkItems(ctx context.Context, tenantID uuid.UUID, lines []LineRequest) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	items, err := s.items.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(items))
	for idx := range items {
		known[items[idx].ID] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := known[line.ItemID]; !ok {
			return shared.NewDomainErrorWithDetails(shared.CodeNotFound,
				"Line references an unknown item",
				map[string]any{"item_id": line.ItemID.String()})
		}
	}
	return nil
}
