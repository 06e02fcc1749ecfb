package document

import (
	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// Kind distinguishes purchase from sales documents in events
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSales    Kind = "sales"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Event types for documents
const (
	EventTypeDocumentPosted = "document.posted"
)

// DocumentPostedEvent is emitted after a document reaches its terminal posted
// state. It feeds the fire-and-forget notification sink; delivery failures
// never affect the posting outcome.
type DocumentPostedEvent struct {
	shared.BaseDomainEvent
	Kind      Kind      `json:"kind"`
	ActorID   uuid.UUID `json:"actor_id"`
	LineCount int       `json:"line_count"`
}

// NewDocumentPostedEvent creates a new DocumentPostedEvent
func NewDocumentPostedEvent(documentID, tenantID uuid.UUID, kind Kind, actorID uuid.UUID, lineCount int) *DocumentPostedEvent {
	aggType := "PurchaseDocument"
	if kind == KindSales {
		aggType = "SalesDocument"
	}
	return &DocumentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPosted, aggType, documentID, tenantID),
		Kind:            kind,
		ActorID:         actorID,
		LineCount:       lineCount,
	}
}
