package service

import (
	"context"
	"sort"
	"testing"

	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
)

func TestBootstrapLoadsResourcesPerType(t *testing.T) {
	tests := []struct {
		txType enum.TransactionType
		want   []string
	}{
		{enum.TransactionTypePurchase, []string{"account-payables", "accounts", "products", "purchasers"}},
		{enum.TransactionTypePurchaseReturn, []string{"account-payables", "accounts", "products"}},
		{enum.TransactionTypeSale, []string{"account-receivables", "accounts", "products"}},
		{enum.TransactionTypeSaleReturn, []string{"account-receivables", "accounts", "products"}},
	}

	for _, tt := range tests {
		t.Run(tt.txType.String(), func(t *testing.T) {
			refs := &fakeReferences{}
			svc := NewReferenceService(refs)

			result, err := svc.Bootstrap(context.Background(), tt.txType)
			if err != nil {
				t.Fatalf("Bootstrap() error = %v", err)
			}

			got := make([]string, 0, len(result))
			for k := range result {
				got = append(got, k)
			}
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("resources = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("resources = %v, want %v", got, tt.want)
					break
				}
			}
			if len(refs.lists) != len(tt.want) {
				t.Errorf("gateway calls = %d, want %d", len(refs.lists), len(tt.want))
			}
		})
	}
}

func TestAffectedResources(t *testing.T) {
	purchase := affectedResources(enum.TransactionTypePurchase)
	sale := affectedResources(enum.TransactionTypeSaleReturn)

	if !contains(purchase, repository.ResourceAccountPayables) || contains(purchase, repository.ResourceAccountReceivables) {
		t.Errorf("purchase invalidation set = %v", purchase)
	}
	if !contains(sale, repository.ResourceAccountReceivables) || !contains(sale, repository.ResourceBatchInventory) {
		t.Errorf("sale return invalidation set = %v", sale)
	}
}

func TestDeleteTransactionClearsCache(t *testing.T) {
	cache := &fakeCache{}
	svc := NewTransactionService(&fakeTransactions{}, cache)

	if err := svc.DeleteTransaction(context.Background(), "tx-1"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if cache.all != 1 {
		t.Errorf("InvalidateAll calls = %d, want 1", cache.all)
	}
	if err := svc.DeleteTransaction(context.Background(), ""); err == nil {
		t.Error("DeleteTransaction() with empty id should fail")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
