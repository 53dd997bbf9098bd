package request

// CreateDraftRequest represents a draft creation request
type CreateDraftRequest struct {
	Type string `json:"type" binding:"required,oneof=purchase purchase_return sale sale_return"`
}

// UpdateHeaderRequest represents a partial header update. Omitted fields are
// left unchanged; an empty string clears the field.
type UpdateHeaderRequest struct {
	AccountPayableID      *string `json:"account_payable_id"`
	AccountReceivableID   *string `json:"account_receivable_id"`
	PurchaserID           *string `json:"purchaser_id"`
	CompanyID             *string `json:"company_id"`
	OriginalTransactionID *string `json:"original_transaction_id"`
	Date                  *string `json:"date"`
	Description           *string `json:"description" binding:"omitempty,max=1000"`
}

// LineRequest represents a line item add or update. Numeric fields are sent
// as the text the user typed.
type LineRequest struct {
	ProductID          *string `json:"product_id"`
	ProductName        *string `json:"product_name"`
	Unit               *string `json:"unit" binding:"omitempty,max=50"`
	Quantity           *string `json:"quantity" binding:"omitempty,max=32"`
	PerUnitRate        *string `json:"per_unit_rate" binding:"omitempty,max=32"`
	DiscountPercentage *string `json:"discount_percentage" binding:"omitempty,max=32"`
}

// AllocationRequest represents one batch allocation
type AllocationRequest struct {
	BatchID              string `json:"batch_id" binding:"required"`
	BatchNumber          string `json:"batch_number"`
	AvailableQuantity    string `json:"available_quantity" binding:"required"`
	PurchasePricePerUnit string `json:"purchase_price_per_unit"`
	AllocatedQuantity    string `json:"allocated_quantity"`
}

// SetAllocationsRequest replaces every allocation of a line
type SetAllocationsRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"dive"`
}

// PaymentRequest represents a payment update
type PaymentRequest struct {
	PaidAmount *string `json:"paid_amount" binding:"omitempty,max=32"`
	AccountID  *string `json:"account_id"`
}
