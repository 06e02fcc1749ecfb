package posting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/stocklane/backend/internal/application/identity"
	"github.com/stocklane/backend/internal/domain/catalog"
	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
	"github.com/stocklane/backend/internal/infrastructure/logger"
)

// StockCache is invalidated after a post changes an item's ledger. The cache
// is a projection only; invalidation failures never affect the posting
// outcome.
type StockCache interface {
	Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error
}

// Metrics records posting outcomes. Implementations must not block.
type Metrics interface {
	RecordPost(ctx context.Context, kind string, outcome string)
}

// Service coordinates document posting: it confirms the asserted tenant,
// locks the target document, validates workflow status and stock, writes
// ledger entries and serial transitions, and flips the document status in a
// single transaction. Any failure rolls back everything.
type Service struct {
	resolver  identityapp.ContextResolver
	scope     TransactionScope
	tenants   identity.TenantRepository
	gate      catalog.ApprovalGate
	publisher shared.EventPublisher
	cache     StockCache
	metrics   Metrics
}

// NewService creates a new posting Service
func NewService(
	resolver identityapp.ContextResolver,
	scope TransactionScope,
	tenants identity.TenantRepository,
	gate catalog.ApprovalGate,
) *Service {
	return &Service{
		resolver: resolver,
		scope:    scope,
		tenants:  tenants,
		gate:     gate,
	}
}

// SetEventPublisher attaches the fire-and-forget notification sink
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetStockCache attaches the stock projection cache for invalidation
func (s *Service) SetStockCache(cache StockCache) {
	s.cache = cache
}

// SetMetrics attaches the posting metrics recorder
func (s *Service) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// PostPurchase posts an approved purchase document: one "in" ledger entry per
// line, plus newly received serial units for serial-tracked lines. The
// document row is locked for the duration and the status flip re-asserts the
// approved status in the same write.
func (s *Service) PostPurchase(ctx context.Context, tenantID, personID uuid.UUID, req PostPurchaseRequest) (*PostResult, error) {
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

	result := &PostResult{DocumentID: req.DocumentID}
	var doc *document.PurchaseDocument

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err = repos.PurchaseDocuments().FindByIDForTenantLocked(ctx, tenantID, req.DocumentID)
		if err != nil {
			return err
		}

		// Status is judged before the lines: a document in the wrong status
		// reports the workflow violation even when it has no items.
		if err := doc.MarkPosted(personID); err != nil {
			return err
		}

		items, err := s.loadItems(ctx, repos, tenantID, doc.Items)
		if err != nil {
			return err
		}

		receipts := indexReceipts(req.Receipts)
		for _, line := range doc.Items {
			item := items[line.ItemID]
			entry, err := inventory.NewLedgerEntry(tenantID, line.ItemID, inventory.EntryKindIn, line.Quantity, personID)
			if err != nil {
				return err
			}
			if err := repos.Ledger().Append(ctx, entry.WithDocument(doc.ID)); err != nil {
				return err
			}
			result.EntriesCreated++

			if item.SerialTracked {
				if err := s.receiveSerials(ctx, repos, tenantID, item, line, receipts[line.ItemID]); err != nil {
					return err
				}
			}
		}

		return repos.PurchaseDocuments().UpdateStatusGuarded(ctx, doc, document.PurchaseStatusApproved)
	})
	if err != nil {
		s.record(ctx, document.KindPurchase, "rejected")
		return nil, err
	}

	result.Status = doc.Status.String()
	s.afterPost(ctx, doc.TenantID, doc.Items, doc.GetDomainEvents())
	doc.ClearDomainEvents()
	s.record(ctx, document.KindPurchase, "posted")
	return result, nil
}

// PostSale posts a finalized sales document. Serial-tracked lines consume
// their reserved serial units; non-serial lines are checked against the
// projected stock under the tenant's inventory policy and then written as
// "out" entries. The policy decides whether a shortfall blocks, warns, or is
// silent; it never decides whether the fact is recorded.
func (s *Service) PostSale(ctx context.Context, tenantID, personID, documentID uuid.UUID) (*PostResult, error) {
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

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	policy := tenant.InventoryPolicy

	result := &PostResult{DocumentID: documentID}
	var doc *document.SalesDocument

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err = repos.SalesDocuments().FindByIDForTenantLocked(ctx, tenantID, documentID)
		if err != nil {
			return err
		}

		if err := doc.MarkPosted(personID); err != nil {
			return err
		}

		items, err := s.loadItems(ctx, repos, tenantID, doc.Items)
		if err != nil {
			return err
		}

		for _, line := range doc.Items {
			item := items[line.ItemID]
			if item.SerialTracked {
				if err := s.consumeSerials(ctx, repos, tenantID, item, line); err != nil {
					return err
				}
				continue
			}

			available, err := repos.Ledger().SumForItem(ctx, tenantID, line.ItemID)
			if err != nil {
				return err
			}
			if available < line.Quantity {
				if policy.Blocks() {
					return shared.InsufficientStock(available, line.Quantity)
				}
				if policy.Warns() {
					result.Warnings = append(result.Warnings, StockWarning{
						ItemID:    line.ItemID,
						Available: available,
						Requested: line.Quantity,
					})
				}
			}

			entry, err := inventory.NewLedgerEntry(tenantID, line.ItemID, inventory.EntryKindOut, line.Quantity, personID)
			if err != nil {
				return err
			}
			if err := repos.Ledger().Append(ctx, entry.WithDocument(doc.ID)); err != nil {
				return err
			}
			result.EntriesCreated++
		}

		return repos.SalesDocuments().UpdateStatusGuarded(ctx, doc, document.SalesStatusFinalized)
	})
	if err != nil {
		s.record(ctx, document.KindSales, "rejected")
		return nil, err
	}

	result.Status = doc.Status.String()
	s.afterPost(ctx, doc.TenantID, doc.Items, doc.GetDomainEvents())
	doc.ClearDomainEvents()
	s.record(ctx, document.KindSales, "posted")
	return result, nil
}

// ApprovePurchase transitions a draft purchase document to approved
func (s *Service) ApprovePurchase(ctx context.Context, tenantID, personID, documentID uuid.UUID) (*StatusResult, error) {
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

	var doc *document.PurchaseDocument
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err = repos.PurchaseDocuments().FindByIDForTenantLocked(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if err := doc.Approve(); err != nil {
			return err
		}
		return repos.PurchaseDocuments().UpdateStatusGuarded(ctx, doc, document.PurchaseStatusDraft)
	})
	if err != nil {
		return nil, err
	}
	return &StatusResult{DocumentID: doc.ID, Status: doc.Status.String()}, nil
}

// FinalizeSale transitions a draft sales document to finalized. The master
// catalog approval gate is consulted here and only here: an unapproved item
// blocks finalize, and the resolved tax classifications are returned to the
// caller.
func (s *Service) FinalizeSale(ctx context.Context, tenantID, personID, documentID uuid.UUID) (*FinalizeResult, error) {
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

	result := &FinalizeResult{DocumentID: documentID}
	var doc *document.SalesDocument

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err = repos.SalesDocuments().FindByIDForTenantLocked(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if _, err := s.loadItems(ctx, repos, tenantID, doc.Items); err != nil {
			return err
		}

		for _, line := range doc.Items {
			approved, err := s.gate.IsApproved(ctx, tenantID, line.ItemID)
			if err != nil {
				return err
			}
			if !approved {
				return shared.NewDomainErrorWithDetails(shared.CodeValidationFailure,
					"Item is not approved in the master catalog",
					map[string]any{"item_id": line.ItemID.String()})
			}
			tax, err := s.gate.TaxClassification(ctx, tenantID, line.ItemID)
			if err != nil {
				return err
			}
			result.Taxes = append(result.Taxes, LineTax{ItemID: line.ItemID, TaxCode: tax.Code, TaxRate: tax.Rate})
		}

		if err := doc.Finalize(); err != nil {
			return err
		}
		return repos.SalesDocuments().UpdateStatusGuarded(ctx, doc, document.SalesStatusDraft)
	})
	if err != nil {
		return nil, err
	}

	result.Status = doc.Status.String()
	return result, nil
}

// CancelSale cancels a draft or finalized sales document. Serial units still
// reserved for its lines are released back to available and their links
// expired.
func (s *Service) CancelSale(ctx context.Context, tenantID, personID uuid.UUID, req CancelSaleRequest) (*StatusResult, error) {
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

	var doc *document.SalesDocument
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err = repos.SalesDocuments().FindByIDForTenantLocked(ctx, tenantID, req.DocumentID)
		if err != nil {
			return err
		}
		prior := doc.Status
		if err := doc.Cancel(req.Reason); err != nil {
			return err
		}

		for _, line := range doc.Items {
			if err := s.releaseSerials(ctx, repos, tenantID, line.ID); err != nil {
				return err
			}
		}

		return repos.SalesDocuments().UpdateStatusGuarded(ctx, doc, prior)
	})
	if err != nil {
		return nil, err
	}
	return &StatusResult{DocumentID: doc.ID, Status: doc.Status.String()}, nil
}

// loadItems fetches and indexes the tenant-owned items referenced by the
// document lines. A line referencing a missing or foreign item fails the
// whole operation.
func (s *Service) loadItems(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, lines []document.DocumentItem) (map[uuid.UUID]*inventory.Item, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document has no items")
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	items, err := repos.Items().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Item, len(items))
	for idx := range items {
		byID[items[idx].ID] = &items[idx]
	}
	for _, line := range lines {
		if _, ok := byID[line.ItemID]; !ok {
			return nil, shared.NewDomainErrorWithDetails(shared.CodeNotFound,
				"Document references an unknown item",
				map[string]any{"item_id": line.ItemID.String()})
		}
	}
	return byID, nil
}

// receiveSerials creates available serial units for a serial-tracked purchase
// line. The receipt must cover the line quantity exactly, and each serial
// must not already have a live unit for the item.
func (s *Service) receiveSerials(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, item *inventory.Item, line document.DocumentItem, serialNumbers []string) error {
	if int64(len(serialNumbers)) != line.Quantity {
		return shared.NewDomainErrorWithDetails(shared.CodeValidationFailure,
			fmt.Sprintf("Serial-tracked line requires exactly %d serial numbers, got %d", line.Quantity, len(serialNumbers)),
			map[string]any{"item_id": item.ID.String()})
	}
	for _, serialNumber := range serialNumbers {
		if _, err := repos.SerialUnits().FindLive(ctx, tenantID, item.ID, serialNumber); err == nil {
			return shared.SerialUnavailable(serialNumber, "a live unit already exists for this serial")
		} else if !shared.IsCode(err, shared.CodeNotFound) {
			return err
		}
		unit, err := inventory.NewSerialUnit(tenantID, item.ID, serialNumber)
		if err != nil {
			return err
		}
		if err := repos.SerialUnits().Create(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// consumeSerials flips the reserved units and links of a serial-tracked sales
// line to used. The reserved-link count must equal the line quantity before
// consumption, and zero reserved links may remain after.
func (s *Service) consumeSerials(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, item *inventory.Item, line document.DocumentItem) error {
	reserved, err := repos.SerialLinks().CountReservedByDocumentItem(ctx, tenantID, line.ID)
	if err != nil {
		return err
	}
	if reserved != line.Quantity {
		return shared.NewDomainErrorWithDetails(shared.CodeSerialUnavailable,
			fmt.Sprintf("Line requires %d reserved serials, found %d", line.Quantity, reserved),
			map[string]any{"item_id": item.ID.String()})
	}

	links, err := repos.SerialLinks().FindByDocumentItem(ctx, tenantID, line.ID)
	if err != nil {
		return err
	}
	for idx := range links {
		if links[idx].Status != inventory.SerialLinkStatusReserved {
			continue
		}
		unit, err := repos.SerialUnits().FindByIDForTenant(ctx, tenantID, links[idx].SerialUnitID)
		if err != nil {
			return err
		}
		if err := unit.Consume(); err != nil {
			return err
		}
		if err := repos.SerialUnits().Save(ctx, unit); err != nil {
			return err
		}
		if err := links[idx].MarkUsed(); err != nil {
			return err
		}
		if err := repos.SerialLinks().Save(ctx, &links[idx]); err != nil {
			return err
		}
	}

	remaining, err := repos.SerialLinks().CountReservedByDocumentItem(ctx, tenantID, line.ID)
	if err != nil {
		return err
	}
	if remaining != 0 {
		return shared.NewDomainErrorWithDetails(shared.CodeSerialUnavailable,
			"Reserved links remained after consumption",
			map[string]any{"item_id": item.ID.String(), "remaining": remaining})
	}
	return nil
}

// releaseSerials returns a cancelled line's reserved units to available and
// expires their links
func (s *Service) releaseSerials(ctx context.Context, repos TransactionalRepositories, tenantID, documentItemID uuid.UUID) error {
	links, err := repos.SerialLinks().FindByDocumentItem(ctx, tenantID, documentItemID)
	if err != nil {
		return err
	}
	for idx := range links {
		if links[idx].Status != inventory.SerialLinkStatusReserved {
			continue
		}
		unit, err := repos.SerialUnits().FindByIDForTenant(ctx, tenantID, links[idx].SerialUnitID)
		if err != nil {
			return err
		}
		if err := unit.Release(); err != nil {
			return err
		}
		if err := repos.SerialUnits().Save(ctx, unit); err != nil {
			return err
		}
		if err := links[idx].MarkExpired(); err != nil {
			return err
		}
		if err := repos.SerialLinks().Save(ctx, &links[idx]); err != nil {
			return err
		}
	}
	return nil
}

// afterPost runs the post-commit side effects: cache invalidation and the
// fire-and-forget notification sink. Failures here are logged and never
// change the posting outcome.
func (s *Service) afterPost(ctx context.Context, tenantID uuid.UUID, lines []document.DocumentItem, events []shared.DomainEvent) {
	if s.cache != nil {
		for _, line := range lines {
			if err := s.cache.Invalidate(ctx, tenantID, line.ItemID); err != nil {
				logger.FromContext(ctx).Warn("stock projection cache invalidate failed",
					zap.String("item_id", line.ItemID.String()), zap.Error(err))
			}
		}
	}
	if s.publisher != nil {
		for _, event := range events {
			if err := s.publisher.Publish(ctx, event); err != nil {
				logger.FromContext(ctx).Warn("event publish failed",
					zap.String("event_type", event.EventType()), zap.Error(err))
			}
		}
	}
}

func (s *Service) record(ctx context.Context, kind document.Kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordPost(ctx, kind.String(), outcome)
	}
}

func indexReceipts(receipts []SerialReceipt) map[uuid.UUID][]string {
	byItem := make(map[uuid.UUID][]string, len(receipts))
	for _, receipt := range receipts {
		byItem[receipt.ItemID] = append(byItem[receipt.ItemID], receipt.SerialNumbers...)
	}
	return byItem
}
