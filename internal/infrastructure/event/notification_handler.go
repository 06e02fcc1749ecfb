package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// NotificationHandler is the default subscriber on the notification sink. It
// records posting and reservation outcomes to the log; external delivery
// (webhooks, email) would hang off the same subscription.
type NotificationHandler struct {
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

// Handle processes a domain event
func (h *NotificationHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		document.EventTypeDocumentPosted,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeSerialsReserved,
	}
}

// Ensure NotificationHandler implements EventHandler
var _ shared.EventHandler = (*NotificationHandler)(nil)
