package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/sangkips/materials-console/internal/domain/entity"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/pkg/apperror"
)

type referenceGateway struct {
	client *Client
	cache  *Cache
}

// NewReferenceGateway creates a cached reference data gateway
func NewReferenceGateway(client *Client, cache *Cache) domainRepo.ReferenceGateway {
	return &referenceGateway{client: client, cache: cache}
}

func (g *referenceGateway) cachedGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return g.cache.Get(ctx, ScopedKey(ctx, Key(path, query)), func(ctx context.Context) (json.RawMessage, error) {
		return g.client.do(ctx, request{method: "GET", path: path, query: query})
	})
}

func (g *referenceGateway) List(ctx context.Context, resource string, params *domainRepo.ReferenceFilterParams) (json.RawMessage, error) {
	switch resource {
	case domainRepo.ResourceProducts, domainRepo.ResourceAccounts, domainRepo.ResourceAccountPayables,
		domainRepo.ResourceAccountReceivables, domainRepo.ResourcePurchasers, domainRepo.ResourceCompanies:
	default:
		return nil, apperror.NewNotFoundError("Reference resource " + strconv.Quote(resource))
	}
	return g.cachedGet(ctx, "/api/"+resource, filterQuery(params))
}

func (g *referenceGateway) ListVendorScoped(ctx context.Context, vendorID, resource string) (json.RawMessage, error) {
	if resource != domainRepo.ResourceProducts && resource != domainRepo.ResourcePurchasers {
		return nil, apperror.NewNotFoundError("Vendor resource " + strconv.Quote(resource))
	}
	return g.cachedGet(ctx, "/api/account-payables/"+url.PathEscape(vendorID)+"/"+resource, nil)
}

// accountPageSize and maxAccountPages bound the account lookup scan
const (
	accountPageSize = 100
	maxAccountPages = 50
)

// GetAccount resolves an account by walking the cached pages of the
// accounts list. It returns nil when no account has the id.
func (g *referenceGateway) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	firstID := ""
	for page := 1; page <= maxAccountPages; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("limit", strconv.Itoa(accountPageSize))

		raw, err := g.cachedGet(ctx, "/api/"+domainRepo.ResourceAccounts, query)
		if err != nil {
			return nil, err
		}

		var accounts []entity.Account
		if err := decodeList(raw, &accounts); err != nil {
			return nil, apperror.NewBadGatewayError("Unexpected accounts response from the business API")
		}
		for i := range accounts {
			if accounts[i].ID == id {
				return &accounts[i], nil
			}
		}

		// A short page is the last one; a repeated first row means the
		// business API ignores paging and already sent everything.
		if len(accounts) < accountPageSize || accounts[0].ID == firstID {
			break
		}
		if page == 1 {
			firstID = accounts[0].ID
		}
	}
	return nil, nil
}

func (g *referenceGateway) AvailableBatches(ctx context.Context, productID string) ([]entity.Batch, error) {
	raw, err := g.cachedGet(ctx, "/api/batch-inventory/product/"+url.PathEscape(productID)+"/available", nil)
	if err != nil {
		return nil, err
	}
	return decodeBatches(raw)
}

func (g *referenceGateway) PurchaseBatchDetails(ctx context.Context, params *domainRepo.BatchDetailParams) ([]entity.Batch, error) {
	raw, err := g.cachedGet(ctx, "/api/transactions/batches/purchase-details", batchQuery(params))
	if err != nil {
		return nil, err
	}
	return decodeBatches(raw)
}

func (g *referenceGateway) SaleBatchDetails(ctx context.Context, params *domainRepo.BatchDetailParams) ([]entity.Batch, error) {
	raw, err := g.cachedGet(ctx, "/api/transactions/batches/sale-details", batchQuery(params))
	if err != nil {
		return nil, err
	}
	return decodeBatches(raw)
}

func decodeBatches(raw json.RawMessage) ([]entity.Batch, error) {
	batches := make([]entity.Batch, 0)
	if err := decodeList(raw, &batches); err != nil {
		return nil, apperror.NewBadGatewayError("Unexpected batch response from the business API")
	}
	return batches, nil
}

func filterQuery(params *domainRepo.ReferenceFilterParams) url.Values {
	q := url.Values{}
	if params == nil {
		return q
	}
	params.Pagination.Encode(q)
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.City != "" {
		q.Set("city", params.City)
	}
	if params.StartDate != nil {
		q.Set("start_date", params.StartDate.Format("2006-01-02"))
	}
	if params.EndDate != nil {
		q.Set("end_date", params.EndDate.Format("2006-01-02"))
	}
	return q
}

func batchQuery(params *domainRepo.BatchDetailParams) url.Values {
	q := url.Values{}
	if params == nil {
		return q
	}
	if params.TransactionID != "" {
		q.Set("transaction_id", params.TransactionID)
	}
	if params.ProductID != "" {
		q.Set("product_id", params.ProductID)
	}
	if params.VendorID != "" {
		q.Set("vendor_id", params.VendorID)
	}
	if params.CustomerID != "" {
		q.Set("customer_id", params.CustomerID)
	}
	return q
}
