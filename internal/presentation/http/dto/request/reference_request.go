package request

// ReferenceFilterRequest represents reference list filter parameters
type ReferenceFilterRequest struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	City      string `form:"city"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// BatchDetailRequest represents batch lookup parameters for returns
type BatchDetailRequest struct {
	TransactionID string `form:"transaction_id"`
	ProductID     string `form:"product_id"`
	VendorID      string `form:"vendor_id"`
	CustomerID    string `form:"customer_id"`
}

// BootstrapRequest selects the entry form being opened
type BootstrapRequest struct {
	Type string `form:"type" binding:"required,oneof=purchase purchase_return sale sale_return"`
}

// SubmissionFilterRequest represents submission ledger filter parameters
type SubmissionFilterRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=Pending Succeeded Failed"`
	Type   string `form:"type" binding:"omitempty,oneof=purchase purchase_return sale sale_return"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
