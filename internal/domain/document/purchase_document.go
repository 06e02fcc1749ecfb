package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// PurchaseStatus represents the status of a purchase document
type PurchaseStatus string

const (
	PurchaseStatusDraft    PurchaseStatus = "draft"
	PurchaseStatusApproved PurchaseStatus = "approved"
	PurchaseStatusPosted   PurchaseStatus = "posted"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusDraft, PurchaseStatusApproved, PurchaseStatusPosted:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A draft can never post directly; posted is terminal.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	switch s {
	case PurchaseStatusDraft:
		return target == PurchaseStatusApproved
	case PurchaseStatusApproved:
		return target == PurchaseStatusPosted
	case PurchaseStatusPosted:
		return false
	}
	return false
}

// SerialReceipt carries serial numbers received for a serial-tracked purchase line
type SerialReceipt struct {
	ItemID        uuid.UUID `json:"item_id"`
	SerialNumbers []string  `json:"serial_numbers"`
}

// PurchaseDocument is a purchase order aggregate. Posting it appends one "in"
// ledger entry per line; serial-tracked lines additionally create available
// serial units.
type PurchaseDocument struct {
	shared.TenantAggregateRoot
	Number     string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_tenant_number,priority:2"`
	BranchID   *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedBy  uuid.UUID      `gorm:"type:uuid;not null"`
	Status     PurchaseStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	Items      []DocumentItem `gorm:"foreignKey:DocumentID;references:ID"`
	ApprovedAt *time.Time
	PostedAt   *time.Time
	PostedBy   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PurchaseDocument) TableName() string {
	return "purchase_documents"
}

// NewPurchaseDocument creates a new draft purchase document
func NewPurchaseDocument(tenantID uuid.UUID, number string) (*PurchaseDocument, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document number cannot exceed 50 characters")
	}

	return &PurchaseDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Status:              PurchaseStatusDraft,
		Items:               make([]DocumentItem, 0),
	}, nil
}

// AddItem adds a line to a draft document
func (d *PurchaseDocument) AddItem(itemID uuid.UUID, quantity int64) (*DocumentItem, error) {
	if d.Status != PurchaseStatusDraft {
		return nil, shared.WorkflowViolation("Cannot add items to a non-draft document", d.Status.String())
	}
	for _, item := range d.Items {
		if item.ItemID == itemID {
			return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item already on document, update quantity instead")
		}
	}

	item, err := NewDocumentItem(d.TenantID, d.ID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	d.Items = append(d.Items, *item)
	d.IncrementVersion()
	return item, nil
}

// RemoveItem removes a line from a draft document
func (d *PurchaseDocument) RemoveItem(itemID uuid.UUID) error {
	if d.Status != PurchaseStatusDraft {
		return shared.WorkflowViolation("Cannot remove items from a non-draft document", d.Status.String())
	}
	for idx, item := range d.Items {
		if item.ID == itemID {
			d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
			d.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Approve transitions draft -> approved. Requires at least one line.
func (d *PurchaseDocument) Approve() error {
	if !d.Status.CanTransitionTo(PurchaseStatusApproved) {
		return shared.WorkflowViolation(
			fmt.Sprintf("Cannot approve document in %s status", d.Status), d.Status.String())
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidationFailure, "Cannot approve document without items")
	}

	now := time.Now()
	d.Status = PurchaseStatusApproved
	d.ApprovedAt = &now
	d.IncrementVersion()
	return nil
}

// MarkPosted flips the aggregate to posted. The repository re-asserts the
// approved status in the same write; this method only validates the local
// transition.
func (d *PurchaseDocument) MarkPosted(actorID uuid.UUID) error {
	switch d.Status {
	case PurchaseStatusDraft:
		return shared.WorkflowViolation("Cannot post a draft document", d.Status.String())
	case PurchaseStatusPosted:
		return shared.WorkflowViolation("Document is already posted", d.Status.String())
	case PurchaseStatusApproved:
		// proceed
	default:
		return shared.WorkflowViolation("Document is not in a postable status", d.Status.String())
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidationFailure, "Cannot post document without items")
	}

	now := time.Now()
	d.Status = PurchaseStatusPosted
	d.PostedAt = &now
	d.PostedBy = &actorID
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentPostedEvent(d.ID, d.TenantID, KindPurchase, actorID, len(d.Items)))
	return nil
}

// IsPosted returns true if the document reached its terminal state
func (d *PurchaseDocument) IsPosted() bool {
	return d.Status == PurchaseStatusPosted
}

// ItemCount returns the number of lines on the document
func (d *PurchaseDocument) ItemCount() int {
	return len(d.Items)
}
