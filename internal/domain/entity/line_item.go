package entity

// LineItem is a single product row of a transaction draft.
//
// Quantity, PerUnitRate and DiscountPercentage keep the text exactly as the
// user typed it (after sanitising). The remaining money fields are derived
// and always formatted with two decimal places.
type LineItem struct {
	ProductID          string            `json:"product_id"`
	ProductName        string            `json:"product_name,omitempty"`
	Unit               string            `json:"unit"`
	Quantity           string            `json:"quantity"`
	PerUnitRate        string            `json:"per_unit_rate"`
	DiscountPercentage string            `json:"discount_percentage"`
	DiscountPerUnit    string            `json:"discount_per_unit"`
	Discount           string            `json:"discount"`
	TotalAmount        string            `json:"total_amount"`
	Allocations        []BatchAllocation `json:"allocations,omitempty"`
}

// BatchAllocation assigns part of a line's quantity to an existing
// inventory batch.
type BatchAllocation struct {
	BatchID              string `json:"batch_id"`
	BatchNumber          string `json:"batch_number,omitempty"`
	AvailableQuantity    string `json:"available_quantity"`
	PurchasePricePerUnit string `json:"purchase_price_per_unit"`
	AllocatedQuantity    string `json:"allocated_quantity"`
}

// Clone returns a deep copy of the line item
func (l LineItem) Clone() LineItem {
	if l.Allocations != nil {
		allocations := make([]BatchAllocation, len(l.Allocations))
		copy(allocations, l.Allocations)
		l.Allocations = allocations
	}
	return l
}
