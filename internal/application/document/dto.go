package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/document"
)

// LineRequest is one document line in a create request
type LineRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
}

// CreateDocumentRequest is the input for creating a draft document
type CreateDocumentRequest struct {
	Number   string        `json:"number" binding:"required,max=50"`
	BranchID *uuid.UUID    `json:"branch_id"`
	Lines    []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AddLineRequest is the input for adding a line to a draft document
type AddLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
}

// LineResponse is the outward representation of a document line
type LineResponse struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int64     `json:"quantity"`
}

// PurchaseResponse is the outward representation of a purchase document
type PurchaseResponse struct {
	ID         uuid.UUID      `json:"id"`
	Number     string         `json:"number"`
	Status     string         `json:"status"`
	BranchID   *uuid.UUID     `json:"branch_id,omitempty"`
	Lines      []LineResponse `json:"lines"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	PostedAt   *time.Time     `json:"posted_at,omitempty"`
}

// SalesResponse is the outward representation of a sales document
type SalesResponse struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	Status       string         `json:"status"`
	BranchID     *uuid.UUID     `json:"branch_id,omitempty"`
	Lines        []LineResponse `json:"lines"`
	FinalizedAt  *time.Time     `json:"finalized_at,omitempty"`
	PostedAt     *time.Time     `json:"posted_at,omitempty"`
	CancelledAt  *time.Time     `json:"cancelled_at,omitempty"`
	CancelReason string         `json:"cancel_reason,omitempty"`
}

func toLineResponses(lines []document.DocumentItem) []LineResponse {
	out := make([]LineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineResponse{ID: line.ID, ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return out
}

func toPurchaseResponse(doc *document.PurchaseDocument) *PurchaseResponse {
	return &PurchaseResponse{
		ID:         doc.ID,
		Number:     doc.Number,
		Status:     doc.Status.String(),
		BranchID:   doc.BranchID,
		Lines:      toLineResponses(doc.Items),
		ApprovedAt: doc.ApprovedAt,
		PostedAt:   doc.PostedAt,
	}
}

func toSalesResponse(doc *document.SalesDocument) *SalesResponse {
	return &SalesResponse{
		ID:           doc.ID,
		Number:       doc.Number,
		Status:       doc.Status.String(),
		BranchID:     doc.BranchID,
		Lines:        toLineResponses(doc.Items),
		FinalizedAt:  doc.FinalizedAt,
		PostedAt:     doc.PostedAt,
		CancelledAt:  doc.CancelledAt,
		CancelReason: doc.CancelReason,
	}
}
