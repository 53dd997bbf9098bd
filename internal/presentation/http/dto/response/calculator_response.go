package response

// LineCalculationResponse carries the sanitised inputs and derived figures
// of one line item
type LineCalculationResponse struct {
	Quantity           string `json:"quantity"`
	PerUnitRate        string `json:"per_unit_rate"`
	DiscountPercentage string `json:"discount_percentage"`
	DiscountPerUnit    string `json:"discount_per_unit"`
	Discount           string `json:"discount"`
	TotalAmount        string `json:"total_amount"`
}
