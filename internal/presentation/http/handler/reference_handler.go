package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/application/service"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/request"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// ReferenceHandler handles reference data and batch HTTP requests
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// List handles listing one reference resource
func (h *ReferenceHandler) List(c *gin.Context) {
	var req request.ReferenceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ReferenceFilterParams{
		Search: req.Search,
		Status: req.Status,
		City:   req.City,
	}
	if req.Page > 0 || req.Limit > 0 {
		params.Pagination = &pagination.PaginationParams{Page: req.Page, PerPage: req.Limit}
	}
	if startDate, err := time.Parse("2006-01-02", req.StartDate); err == nil {
		params.StartDate = &startDate
	}
	if endDate, err := time.Parse("2006-01-02", req.EndDate); err == nil {
		params.EndDate = &endDate
	}

	body, err := h.referenceService.List(c.Request.Context(), c.Param("resource"), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reference data retrieved successfully", body)
}

// VendorScoped handles listing the products or purchasers of a vendor
func (h *ReferenceHandler) VendorScoped(c *gin.Context) {
	body, err := h.referenceService.ListVendorScoped(c.Request.Context(), c.Param("id"), c.Param("sub"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reference data retrieved successfully", body)
}

// Bootstrap handles loading everything an entry form needs when it opens
func (h *ReferenceHandler) Bootstrap(c *gin.Context) {
	var req request.BootstrapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "A valid transaction type is required")
		return
	}

	txType, err := enum.ParseTransactionType(req.Type)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	data, err := h.referenceService.Bootstrap(c.Request.Context(), txType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reference data retrieved successfully", data)
}

// AvailableBatches handles listing the in-stock batches of a product
func (h *ReferenceHandler) AvailableBatches(c *gin.Context) {
	batches, err := h.referenceService.AvailableBatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// PurchaseBatchDetails handles listing batches of earlier purchases
func (h *ReferenceHandler) PurchaseBatchDetails(c *gin.Context) {
	var req request.BatchDetailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	batches, err := h.referenceService.PurchaseBatchDetails(c.Request.Context(), batchParams(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// SaleBatchDetails handles listing batches consumed by earlier sales
func (h *ReferenceHandler) SaleBatchDetails(c *gin.Context) {
	var req request.BatchDetailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	batches, err := h.referenceService.SaleBatchDetails(c.Request.Context(), batchParams(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

func batchParams(req *request.BatchDetailRequest) *repository.BatchDetailParams {
	return &repository.BatchDetailParams{
		TransactionID: req.TransactionID,
		ProductID:     req.ProductID,
		VendorID:      req.VendorID,
		CustomerID:    req.CustomerID,
	}
}
