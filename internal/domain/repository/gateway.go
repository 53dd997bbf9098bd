package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// Reference resources served by the business API
const (
	ResourceProducts           = "products"
	ResourceAccounts           = "accounts"
	ResourceAccountPayables    = "account-payables"
	ResourceAccountReceivables = "account-receivables"
	ResourcePurchasers         = "purchasers"
	ResourceCompanies          = "companies"
	ResourceBatchInventory     = "batch-inventory"
	ResourceTransactions       = "transactions"
)

// CreateTransactionPath returns the business API path that creates a
// transaction of the given type
func CreateTransactionPath(t enum.TransactionType) string {
	switch t {
	case enum.TransactionTypePurchase:
		return "/api/transactions/purchase-with-products"
	case enum.TransactionTypeSale:
		return "/api/transactions/sale-with-products"
	case enum.TransactionTypePurchaseReturn:
		return "/api/transactions/purchase-return"
	case enum.TransactionTypeSaleReturn:
		return "/api/transactions/sale-return"
	}
	return ""
}

// ReferenceFilterParams contains the list filters understood by the business API
type ReferenceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     string
	City       string
	StartDate  *time.Time
	EndDate    *time.Time
}

// BatchDetailParams selects batches of earlier purchases or sales for returns
type BatchDetailParams struct {
	TransactionID string
	ProductID     string
	VendorID      string
	CustomerID    string
}

// ReferenceGateway reads reference data from the business API. List bodies
// are passed through unchanged since their shape is owned by the API.
type ReferenceGateway interface {
	List(ctx context.Context, resource string, params *ReferenceFilterParams) (json.RawMessage, error)
	ListVendorScoped(ctx context.Context, vendorID, resource string) (json.RawMessage, error)
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
	AvailableBatches(ctx context.Context, productID string) ([]entity.Batch, error)
	PurchaseBatchDetails(ctx context.Context, params *BatchDetailParams) ([]entity.Batch, error)
	SaleBatchDetails(ctx context.Context, params *BatchDetailParams) ([]entity.Batch, error)
}

// TransactionGateway performs transaction mutations on the business API
type TransactionGateway interface {
	Create(ctx context.Context, txType enum.TransactionType, payload *entity.TransactionPayload, idempotencyKey string) (*entity.TransactionResult, error)
	Delete(ctx context.Context, id string) error
	GetWithRelations(ctx context.Context, id string) (json.RawMessage, error)
}

// CacheInvalidator marks cached reference data stale after a mutation
type CacheInvalidator interface {
	Invalidate(resources ...string)
	InvalidateAll()
}
