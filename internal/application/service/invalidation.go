package service

import (
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
)

// affectedResources is the broad set of reference data a successful
// transaction of type t may have changed. It is used when the business API
// does not say which resources to refresh.
func affectedResources(t enum.TransactionType) []string {
	resources := []string{
		repository.ResourceProducts,
		repository.ResourceAccounts,
		repository.ResourceBatchInventory,
		repository.ResourceTransactions,
	}
	switch t {
	case enum.TransactionTypePurchase, enum.TransactionTypePurchaseReturn:
		resources = append(resources, repository.ResourceAccountPayables)
	case enum.TransactionTypeSale, enum.TransactionTypeSaleReturn:
		resources = append(resources, repository.ResourceAccountReceivables)
	}
	return resources
}
