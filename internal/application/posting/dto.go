package posting

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockWarning reports a non-blocking stock shortfall observed while posting
// under the warn_allow policy
type StockWarning struct {
	ItemID    uuid.UUID `json:"item_id"`
	Available int64     `json:"available"`
	Requested int64     `json:"requested"`
}

// PostResult is the outcome of a successful post
type PostResult struct {
	DocumentID     uuid.UUID      `json:"document_id"`
	EntriesCreated int            `json:"entries_created"`
	Status         string         `json:"status"`
	Warnings       []StockWarning `json:"warnings,omitempty"`
}

// PostPurchaseRequest is the input for posting a purchase document. Receipts
// carry the serial numbers received for serial-tracked lines; each such line
// must be covered by exactly its quantity of serials.
type PostPurchaseRequest struct {
	DocumentID uuid.UUID       `json:"document_id" binding:"required"`
	Receipts   []SerialReceipt `json:"receipts,omitempty"`
}

// SerialReceipt lists the serial numbers received for one item
type SerialReceipt struct {
	ItemID        uuid.UUID `json:"item_id" binding:"required"`
	SerialNumbers []string  `json:"serial_numbers" binding:"required,min=1"`
}

// LineTax is the tax classification resolved for one document line at
// finalize time
type LineTax struct {
	ItemID  uuid.UUID       `json:"item_id"`
	TaxCode string          `json:"tax_code"`
	TaxRate decimal.Decimal `json:"tax_rate"`
}

// FinalizeResult is the outcome of finalizing a sales document
type FinalizeResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
	Taxes      []LineTax `json:"taxes,omitempty"`
}

// StatusResult reports a document's status after a lifecycle transition
type StatusResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
}

// CancelSaleRequest is the input for cancelling a sales document
type CancelSaleRequest struct {
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
	Reason     string    `json:"reason" binding:"required"`
}
