package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/stocklane/backend/internal/application/identity"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
	"github.com/stocklane/backend/internal/infrastructure/logger"
)

// ProjectionCache is an optional, non-authoritative cache for projected stock
// values. A miss or error always falls through to the ledger reduction; the
// cache can never be the source of truth.
type ProjectionCache interface {
	Get(ctx context.Context, tenantID, itemID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, tenantID, itemID uuid.UUID, quantity int64) error
	Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error
}

// StockService handles item management, manual adjustments and stock reads
type StockService struct {
	resolver  identityapp.ContextResolver
	items     inventory.ItemRepository
	ledger    inventory.LedgerRepository
	cache     ProjectionCache
	publisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(resolver identityapp.ContextResolver, items inventory.ItemRepository, ledger inventory.LedgerRepository) *StockService {
	return &StockService{
		resolver: resolver,
		items:    items,
		ledger:   ledger,
	}
}

// SetProjectionCache attaches the optional projection cache
func (s *StockService) SetProjectionCache(cache ProjectionCache) {
	s.cache = cache
}

// SetEventPublisher attaches the fire-and-forget notification sink
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// CreateItem creates a new item for the resolved tenant
func (s *StockService) CreateItem(ctx context.Context, tenantID, personID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
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

	item, err := inventory.NewItem(tenantID, req.SKU, req.Name, req.SerialTracked)
	if err != nil {
		return nil, err
	}
	if req.CatalogEntry != nil {
		if err := item.LinkCatalogEntry(*req.CatalogEntry); err != nil {
			return nil, err
		}
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	resp := toItemResponse(item)
	return &resp, nil
}

// AdjustStock appends a signed adjustment entry to the ledger. Delta must be
// non-zero and the reason is mandatory.
func (s *StockService) AdjustStock(ctx context.Context, tenantID, personID uuid.UUID, req AdjustStockRequest) error {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return err
	}
	if err := rc.Require(tenantID); err != nil {
		return err
	}
	if !rc.Role.CanWrite() {
		return shared.ErrForbidden
	}

	if _, err := s.items.FindByIDForTenant(ctx, tenantID, req.ItemID); err != nil {
		return err
	}

	entry, err := inventory.NewAdjustmentEntry(tenantID, req.ItemID, req.Delta, req.Reason, personID)
	if err != nil {
		return err
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID, req.ItemID)
	s.notify(ctx, inventory.NewStockAdjustedEvent(entry))
	return nil
}

// CurrentStock computes quantity on hand as a read-time reduction over the
// ledger. The projection cache is consulted first but never trusted on error.
func (s *StockService) CurrentStock(ctx context.Context, tenantID, personID, itemID uuid.UUID) (*CurrentStockResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}

	if _, err := s.items.FindByIDForTenant(ctx, tenantID, itemID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if qty, ok, err := s.cache.Get(ctx, tenantID, itemID); err == nil && ok {
			return &CurrentStockResponse{ItemID: itemID, Quantity: qty}, nil
		}
	}

	qty, err := s.ledger.SumForItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, itemID, qty); err != nil {
			logger.FromContext(ctx).Warn("stock projection cache set failed", zap.Error(err))
		}
	}
	return &CurrentStockResponse{ItemID: itemID, Quantity: qty}, nil
}

func (s *StockService) invalidate(ctx context.Context, tenantID, itemID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, itemID); err != nil {
		logger.FromContext(ctx).Warn("stock projection cache invalidate failed", zap.Error(err))
	}
}

func (s *StockService) notify(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("event publish failed", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

func toItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		SKU:           item.SKU,
		Name:          item.Name,
		SerialTracked: item.SerialTracked,
		CatalogEntry:  item.CatalogEntryID,
	}
}
