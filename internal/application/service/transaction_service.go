package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/pkg/apperror"
)

// TransactionService reads and deletes committed transactions
type TransactionService struct {
	transactions repository.TransactionGateway
	cache        repository.CacheInvalidator
}

// NewTransactionService creates a new transaction service
func NewTransactionService(transactions repository.TransactionGateway, cache repository.CacheInvalidator) *TransactionService {
	return &TransactionService{transactions: transactions, cache: cache}
}

// GetTransaction returns a transaction with its products, returns and
// payments as reported by the business API
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, apperror.NewBadRequestError("Transaction ID is required")
	}
	return s.transactions.GetWithRelations(ctx, id)
}

// DeleteTransaction deletes a transaction. Deletion can touch stock,
// balances and any counterparty, so every cached resource is dropped.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewBadRequestError("Transaction ID is required")
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	log.Printf("Transaction %s deleted, reference cache cleared", id)
	return nil
}
