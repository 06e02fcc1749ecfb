package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// SalesStatus represents the status of a sales document
type SalesStatus string

const (
	SalesStatusDraft     SalesStatus = "draft"
	SalesStatusFinalized SalesStatus = "finalized"
	SalesStatusPosted    SalesStatus = "posted"
	SalesStatusCancelled SalesStatus = "cancelled"
)

// IsValid checks if the status is a valid SalesStatus
func (s SalesStatus) IsValid() bool {
	switch s {
	case SalesStatusDraft, SalesStatusFinalized, SalesStatusPosted, SalesStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SalesStatus
func (s SalesStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Cancellation is reachable until posting; posted and cancelled are terminal.
func (s SalesStatus) CanTransitionTo(target SalesStatus) bool {
	switch s {
	case SalesStatusDraft:
		return target == SalesStatusFinalized || target == SalesStatusCancelled
	case SalesStatusFinalized:
		return target == SalesStatusPosted || target == SalesStatusCancelled
	case SalesStatusPosted, SalesStatusCancelled:
		return false
	}
	return false
}

// SalesDocument is a sales order aggregate. Posting it consumes reserved
// serial units and appends one "out" ledger entry per non-serial line.
type SalesDocument struct {
	shared.TenantAggregateRoot
	Number       string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_tenant_number,priority:2"`
	BranchID     *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	Status       SalesStatus    `gorm:"type:varchar(20);not null;default:'draft'"`
	Items        []DocumentItem `gorm:"foreignKey:DocumentID;references:ID"`
	FinalizedAt  *time.Time
	PostedAt     *time.Time
	PostedBy     *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SalesDocument) TableName() string {
	return "sales_documents"
}

// NewSalesDocument creates a new draft sales document
func NewSalesDocument(tenantID uuid.UUID, number string) (*SalesDocument, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document number cannot exceed 50 characters")
	}

	return &SalesDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Status:              SalesStatusDraft,
		Items:               make([]DocumentItem, 0),
	}, nil
}

// AddItem adds a line to a draft document
func (d *SalesDocument) AddItem(itemID uuid.UUID, quantity int64) (*DocumentItem, error) {
	if d.Status != SalesStatusDraft {
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

// Finalize transitions draft -> finalized. The approval gate is consulted by
// the application layer before this is called; this method validates the
// transition and requires at least one line.
func (d *SalesDocument) Finalize() error {
	if !d.Status.CanTransitionTo(SalesStatusFinalized) {
		return shared.WorkflowViolation(
			fmt.Sprintf("Cannot finalize document in %s status", d.Status), d.Status.String())
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidationFailure, "Cannot finalize document without items")
	}

	now := time.Now()
	d.Status = SalesStatusFinalized
	d.FinalizedAt = &now
	d.IncrementVersion()
	return nil
}

// Cancel transitions draft/finalized -> cancelled
func (d *SalesDocument) Cancel(reason string) error {
	if !d.Status.CanTransitionTo(SalesStatusCancelled) {
		return shared.WorkflowViolation(
			fmt.Sprintf("Cannot cancel document in %s status", d.Status), d.Status.String())
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidationFailure, "Cancel reason is required")
	}

	now := time.Now()
	d.Status = SalesStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.IncrementVersion()
	return nil
}

// MarkPosted flips the aggregate to posted. Only a finalized document may
// post; the repository re-asserts the finalized status in the same write.
func (d *SalesDocument) MarkPosted(actorID uuid.UUID) error {
	if d.Status != SalesStatusFinalized {
		return shared.WorkflowViolation(
			fmt.Sprintf("Cannot post document in %s status", d.Status), d.Status.String())
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidationFailure, "Cannot post document without items")
	}

	now := time.Now()
	d.Status = SalesStatusPosted
	d.PostedAt = &now
	d.PostedBy = &actorID
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentPostedEvent(d.ID, d.TenantID, KindSales, actorID, len(d.Items)))
	return nil
}

// IsPosted returns true if the document reached its terminal posted state
func (d *SalesDocument) IsPosted() bool {
	return d.Status == SalesStatusPosted
}

// ItemCount returns the number of lines on the document
func (d *SalesDocument) ItemCount() int {
	return len(d.Items)
}

// GetItem returns a line by its id
func (d *SalesDocument) GetItem(itemID uuid.UUID) *DocumentItem {
	for idx := range d.Items {
		if d.Items[idx].ID == itemID {
			return &d.Items[idx]
		}
	}
	return nil
}
