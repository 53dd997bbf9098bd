package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/application/service"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
)

// TransactionHandler handles committed transaction HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Get handles getting a transaction with its relations
func (h *TransactionHandler) Get(c *gin.Context) {
	body, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", body)
}

// Delete handles deleting a transaction
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
