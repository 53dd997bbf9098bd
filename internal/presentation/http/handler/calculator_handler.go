package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/domain/calculator"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/request"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
)

// CalculatorHandler serves stateless line calculations
type CalculatorHandler struct{}

// NewCalculatorHandler creates a new calculator handler
func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

// CalculateLine handles computing the derived figures of one line
func (h *CalculatorHandler) CalculateLine(c *gin.Context) {
	var req request.CalculateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	quantity := calculator.SanitizeDecimal(req.Quantity)
	rate := calculator.SanitizeDecimal(req.PerUnitRate)
	pct := calculator.ClampPercentage(req.DiscountPercentage)
	figures := calculator.ComputeLine(quantity, rate, pct)

	response.OK(c, "Line calculated successfully", response.LineCalculationResponse{
		Quantity:           quantity,
		PerUnitRate:        rate,
		DiscountPercentage: pct,
		DiscountPerUnit:    calculator.Format2(figures.DiscountPerUnit),
		Discount:           calculator.Format2(figures.Discount),
		TotalAmount:        calculator.Format2(figures.Total),
	})
}
