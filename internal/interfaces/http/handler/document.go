package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	documentapp "github.com/stocklane/backend/internal/application/document"
	"github.com/stocklane/backend/internal/domain/shared"
	"github.com/stocklane/backend/internal/interfaces/http/dto"
)

// DocumentHandler handles purchase and sales document CRUD endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.Service
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *documentapp.Service) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// CreatePurchase handles POST /documents/purchases
func (h *DocumentHandler) CreatePurchase(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}

	var req documentapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.documentService.CreatePurchase(c.Request.Context(), tenantID, personID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetPurchase handles GET /documents/purchases/:id
func (h *DocumentHandler) GetPurchase(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetPurchase(c.Request.Context(), tenantID, personID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ListPurchases handles GET /documents/purchases
func (h *DocumentHandler) ListPurchases(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}

	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	docs, err := h.documentService.ListPurchases(c.Request.Context(), tenantID, personID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// CreateSales handles POST /documents/sales
func (h *DocumentHandler) CreateSales(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}

	var req documentapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.documentService.CreateSales(c.Request.Context(), tenantID, personID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetSales handles GET /documents/sales/:id
func (h *DocumentHandler) GetSales(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetSales(c.Request.Context(), tenantID, personID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ListSales handles GET /documents/sales
func (h *DocumentHandler) ListSales(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}

	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	docs, err := h.documentService.ListSales(c.Request.Context(), tenantID, personID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// AddSalesLine handles POST /documents/sales/:id/lines
func (h *DocumentHandler) AddSalesLine(c *gin.Context) {
	personID, tenantID, ok := h.identify(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req documentapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.documentService.AddSalesLine(c.Request.Context(), tenantID, personID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

func (h *DocumentHandler) identify(c *gin.Context) (personID, tenantID uuid.UUID, ok bool) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, err = getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	return personID, tenantID, true
}

func (h *DocumentHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *DocumentHandler) listFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return shared.Filter{}, false
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	return filter, true
}
