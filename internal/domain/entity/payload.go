package entity

import "encoding/json"

// TransactionPayload is the body posted to the business API for a
// confirmed draft. Unselected foreign keys are sent as null.
type TransactionPayload struct {
	TransactionType       string        `json:"transaction_type"`
	AccountPayableID      *string       `json:"account_payable_id"`
	AccountReceivableID   *string       `json:"account_receivable_id"`
	PurchaserID           *string       `json:"purchaser_id"`
	CompanyID             *string       `json:"company_id"`
	SourceAccountID       *string       `json:"source_account_id"`
	DestinationAccountID  *string       `json:"destination_account_id"`
	OriginalTransactionID *string       `json:"original_transaction_id"`
	TotalAmount           string        `json:"total_amount"`
	PaidAmount            string        `json:"paid_amount"`
	RemainingPayment      string        `json:"remaining_payment"`
	Date                  string        `json:"date"`
	Description           string        `json:"description"`
	Products              []PayloadLine `json:"products,omitempty"`
	Returns               []PayloadLine `json:"returns,omitempty"`
}

// PayloadLine is one product row of a TransactionPayload
type PayloadLine struct {
	ProductID          *string        `json:"product_id"`
	Quantity           string         `json:"quantity"`
	Unit               string         `json:"unit"`
	PerUnitRate        string         `json:"per_unit_rate"`
	DiscountPercentage string         `json:"discount_percentage"`
	DiscountPerUnit    string         `json:"discount_per_unit"`
	Discount           string         `json:"discount"`
	TotalAmount        string         `json:"total_amount"`
	Batches            []PayloadBatch `json:"batches,omitempty"`
}

// PayloadBatch is a batch allocation as sent to the business API
type PayloadBatch struct {
	BatchID              string `json:"batch_id"`
	Quantity             string `json:"quantity"`
	PurchasePricePerUnit string `json:"purchase_price_per_unit"`
}

// TransactionResult is the part of the business API's creation response the
// console relies on
type TransactionResult struct {
	ID          string   `json:"id"`
	InvoiceNo   string   `json:"invoice_no,omitempty"`
	Invalidates []string `json:"invalidates,omitempty"`

	Raw json.RawMessage `json:"-"`
}
