package request

// CalculateLineRequest represents a stateless line calculation
type CalculateLineRequest struct {
	Quantity           string `json:"quantity" binding:"max=32"`
	PerUnitRate        string `json:"per_unit_rate" binding:"max=32"`
	DiscountPercentage string `json:"discount_percentage" binding:"max=32"`
}
