package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/application/service"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/request"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// SubmissionHandler handles submission ledger HTTP requests
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// List handles listing the caller's submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var req request.SubmissionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SubmissionFilterParams{
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.Limit},
	}
	if status, ok := enum.ParseSubmissionStatus(req.Status); ok {
		params.Status = &status
	}
	if req.Type != "" {
		if txType, err := enum.ParseTransactionType(req.Type); err == nil {
			params.TransactionType = &txType
		}
	}

	result, err := h.submissionService.ListSubmissions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Submissions retrieved successfully", result)
}
