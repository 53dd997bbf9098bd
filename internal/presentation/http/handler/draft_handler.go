package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/application/service"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/request"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
)

// DraftHandler handles transaction draft HTTP requests
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Create handles opening a new draft
func (h *DraftHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.draftService.CreateDraft(c.Request.Context(), &service.CreateDraftInput{
		OwnerID: userID,
		Type:    req.Type,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Draft created successfully", draft)
}

// List handles listing the caller's open drafts
func (h *DraftHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	drafts, err := h.draftService.ListDrafts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Drafts retrieved successfully", drafts)
}

// Get handles getting a draft
func (h *DraftHandler) Get(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	draft, err := h.draftService.GetDraft(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft retrieved successfully", draft)
}

// Discard handles closing a draft without submitting it
func (h *DraftHandler) Discard(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	if err := h.draftService.DiscardDraft(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateHeader handles header field changes
func (h *DraftHandler) UpdateHeader(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	var req request.UpdateHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.draftService.UpdateHeader(c.Request.Context(), userID, id, &service.HeaderInput{
		AccountPayableID:      req.AccountPayableID,
		AccountReceivableID:   req.AccountReceivableID,
		PurchaserID:           req.PurchaserID,
		CompanyID:             req.CompanyID,
		OriginalTransactionID: req.OriginalTransactionID,
		Date:                  req.Date,
		Description:           req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft updated successfully", draft)
}

// AddLine handles adding a line item
func (h *DraftHandler) AddLine(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	var req request.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.draftService.AddLine(c.Request.Context(), userID, id, lineInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Line added successfully", draft)
}

// UpdateLine handles editing a line item
func (h *DraftHandler) UpdateLine(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}
	index, ok := lineParam(c)
	if !ok {
		return
	}

	var req request.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.draftService.UpdateLine(c.Request.Context(), userID, id, index, lineInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Line updated successfully", draft)
}

// RemoveLine handles removing a line item
func (h *DraftHandler) RemoveLine(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}
	index, ok := lineParam(c)
	if !ok {
		return
	}

	draft, err := h.draftService.RemoveLine(c.Request.Context(), userID, id, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Line removed successfully", draft)
}

// SetAllocations handles replacing a line's batch allocations
func (h *DraftHandler) SetAllocations(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}
	index, ok := lineParam(c)
	if !ok {
		return
	}

	var req request.SetAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]service.AllocationInput, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		inputs = append(inputs, service.AllocationInput{
			BatchID:              a.BatchID,
			BatchNumber:          a.BatchNumber,
			AvailableQuantity:    a.AvailableQuantity,
			PurchasePricePerUnit: a.PurchasePricePerUnit,
			AllocatedQuantity:    a.AllocatedQuantity,
		})
	}

	draft, err := h.draftService.SetAllocations(c.Request.Context(), userID, id, index, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Allocations updated successfully", draft)
}

// AutoAllocate handles filling a line's allocations oldest batch first
func (h *DraftHandler) AutoAllocate(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}
	index, ok := lineParam(c)
	if !ok {
		return
	}

	draft, err := h.draftService.AutoAllocate(c.Request.Context(), userID, id, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Allocations updated successfully", draft)
}

// SetPayment handles paid amount and settlement account changes
func (h *DraftHandler) SetPayment(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.draftService.SetPayment(c.Request.Context(), userID, id, &service.PaymentInput{
		PaidAmount: req.PaidAmount,
		AccountID:  req.AccountID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment updated successfully", draft)
}

// Confirm handles validating a draft and freezing it for review
func (h *DraftHandler) Confirm(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Confirm(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft confirmed, review and submit", draft)
}

// Cancel handles leaving the confirmation step
func (h *DraftHandler) Cancel(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Confirmation cancelled", draft)
}

// Submit handles sending a confirmed draft to the business API
func (h *DraftHandler) Submit(c *gin.Context) {
	userID, id, ok := draftParams(c)
	if !ok {
		return
	}

	result, err := h.draftService.Submit(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction created successfully", result)
}

func lineInput(req *request.LineRequest) *service.LineInput {
	return &service.LineInput{
		ProductID:          req.ProductID,
		ProductName:        req.ProductName,
		Unit:               req.Unit,
		Quantity:           req.Quantity,
		PerUnitRate:        req.PerUnitRate,
		DiscountPercentage: req.DiscountPercentage,
	}
}
