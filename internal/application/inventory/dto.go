package inventory

import (
	"github.com/google/uuid"
)

// AdjustStockRequest is the input for a manual stock adjustment
type AdjustStockRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Delta  int64     `json:"delta" binding:"required"`
	Reason string    `json:"reason" binding:"required"`
}

// CurrentStockResponse is the projector's answer for one item
type CurrentStockResponse struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int64     `json:"quantity"`
}

// ReserveSerialsRequest is the input for reserving serial units against a
// document item
type ReserveSerialsRequest struct {
	DocumentItemID uuid.UUID `json:"document_item_id" binding:"required"`
	SerialNumbers  []string  `json:"serial_numbers" binding:"required,min=1"`
}

// SerialError reports a single serial number that failed reservation
type SerialError struct {
	SerialNumber string `json:"serial_number"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// ReserveSerialsResponse reports partial-success reservation results:
// reserved serials are committed even when others on the same request fail
type ReserveSerialsResponse struct {
	ReservedCount int           `json:"reserved_count"`
	Errors        []SerialError `json:"errors"`
}

// CreateItemRequest is the input for creating an item
type CreateItemRequest struct {
	SKU           string `json:"sku" binding:"required"`
	Name          string `json:"name" binding:"required"`
	SerialTracked bool   `json:"serial_tracked"`
	CatalogEntry  *uuid.UUID `json:"catalog_entry_id"`
}

// ItemResponse is the outward representation of an item
type ItemResponse struct {
	ID            uuid.UUID  `json:"id"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	SerialTracked bool       `json:"serial_tracked"`
	CatalogEntry  *uuid.UUID `json:"catalog_entry_id,omitempty"`
}
