package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a money account (cash, bank) as returned by the business API
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// Batch is an inventory lot created by a purchase
type Batch struct {
	ID                   string          `json:"id"`
	BatchNumber          string          `json:"batch_number,omitempty"`
	ProductID            string          `json:"product_id"`
	AvailableQuantity    decimal.Decimal `json:"available_quantity"`
	PurchasePricePerUnit decimal.Decimal `json:"purchase_price_per_unit"`
	PurchasedAt          time.Time       `json:"purchased_at"`
}
