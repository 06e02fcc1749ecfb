package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	postingapp "github.com/stocklane/backend/internal/application/posting"
	"github.com/stocklane/backend/internal/interfaces/http/dto"
)

// PostingHandler handles document lifecycle and posting endpoints
type PostingHandler struct {
	BaseHandler
	postingService *postingapp.Service
}

// NewPostingHandler creates a new PostingHandler
func NewPostingHandler(postingService *postingapp.Service) *PostingHandler {
	return &PostingHandler{postingService: postingService}
}

// ApprovePurchase handles POST /posting/purchases/:id/approve
func (h *PostingHandler) ApprovePurchase(c *gin.Context) {
	personID, tenantID, documentID, ok := h.identifyWithID(c)
	if !ok {
		return
	}

	result, err := h.postingService.ApprovePurchase(c.Request.Context(), tenantID, personID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PostPurchase handles POST /posting/purchases/:id/post
func (h *PostingHandler) PostPurchase(c *gin.Context) {
	personID, tenantID, documentID, ok := h.identifyWithID(c)
	if !ok {
		return
	}

	// Receipts are optional: documents with no serial-tracked lines post
	// with an empty body
	var body struct {
		Receipts []postingapp.SerialReceipt `json:"receipts"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.postingService.PostPurchase(c.Request.Context(), tenantID, personID, postingapp.PostPurchaseRequest{
		DocumentID: documentID,
		Receipts:   body.Receipts,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FinalizeSale handles POST /posting/sales/:id/finalize
func (h *PostingHandler) FinalizeSale(c *gin.Context) {
	personID, tenantID, documentID, ok := h.identifyWithID(c)
	if !ok {
		return
	}

	result, err := h.postingService.FinalizeSale(c.Request.Context(), tenantID, personID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PostSale handles POST /posting/sales/:id/post
func (h *PostingHandler) PostSale(c *gin.Context) {
	personID, tenantID, documentID, ok := h.identifyWithID(c)
	if !ok {
		return
	}

	result, err := h.postingService.PostSale(c.Request.Context(), tenantID, personID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelSale handles POST /posting/sales/:id/cancel
func (h *PostingHandler) CancelSale(c *gin.Context) {
	personID, tenantID, documentID, ok := h.identifyWithID(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Cancellation reason is required")
		return
	}

	result, err := h.postingService.CancelSale(c.Request.Context(), tenantID, personID, postingapp.CancelSaleRequest{
		DocumentID: documentID,
		Reason:     body.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *PostingHandler) identifyWithID(c *gin.Context) (personID, tenantID, documentID uuid.UUID, ok bool) {
	personID, err := getPersonID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	tenantID, err = getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing tenant ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	documentID, err = uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return personID, tenantID, documentID, true
}
