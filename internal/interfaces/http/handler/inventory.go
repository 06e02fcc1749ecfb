package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stocklane/backend/internal/application/inventory"
	"github.com/stocklane/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles item, stock and serial reservation endpoints
type InventoryHandler struct {
	BaseHandler
	stockService  *inventoryapp.StockService
	serialService *inventoryapp.SerialService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService, serialService *inventoryapp.SerialService) *InventoryHandler {
	return &InventoryHandler{
		stockService:  stockService,
		serialService: serialService,
	}
}

// CreateItem handles POST /inventory/items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.stockService.CreateItem(c.Request.Context(), tenantID, personID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// AdjustStock handles POST /inventory/stock/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.stockService.AdjustStock(c.Request.Context(), tenantID, personID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CurrentStock handles GET /inventory/stock/:id
func (h *InventoryHandler) CurrentStock(c *gin.Context) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}
	itemID, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	stock, err := h.stockService.CurrentStock(c.Request.Context(), tenantID, personID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ReserveSerials handles POST /inventory/serials/reserve.
// The response reports partial success: reserved serials stay reserved even
// when other serials on the same request fail.
func (h *InventoryHandler) ReserveSerials(c *gin.Context) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return
	}

	var req inventoryapp.ReserveSerialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.serialService.ReserveSerials(c.Request.Context(), tenantID, personID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
