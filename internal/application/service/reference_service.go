package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// ReferenceService serves cached reference data from the business API
type ReferenceService struct {
	references repository.ReferenceGateway
}

// NewReferenceService creates a new reference service
func NewReferenceService(references repository.ReferenceGateway) *ReferenceService {
	return &ReferenceService{references: references}
}

// List returns one page of a reference resource
func (s *ReferenceService) List(ctx context.Context, resource string, params *repository.ReferenceFilterParams) (json.RawMessage, error) {
	return s.references.List(ctx, resource, params)
}

// ListVendorScoped returns the products or purchasers of one vendor
func (s *ReferenceService) ListVendorScoped(ctx context.Context, vendorID, resource string) (json.RawMessage, error) {
	return s.references.ListVendorScoped(ctx, vendorID, resource)
}

// AvailableBatches returns the batches of a product that still hold stock
func (s *ReferenceService) AvailableBatches(ctx context.Context, productID string) ([]entity.Batch, error) {
	return s.references.AvailableBatches(ctx, productID)
}

// PurchaseBatchDetails returns the batches of earlier purchases
func (s *ReferenceService) PurchaseBatchDetails(ctx context.Context, params *repository.BatchDetailParams) ([]entity.Batch, error) {
	return s.references.PurchaseBatchDetails(ctx, params)
}

// SaleBatchDetails returns the batches consumed by earlier sales
func (s *ReferenceService) SaleBatchDetails(ctx context.Context, params *repository.BatchDetailParams) ([]entity.Batch, error) {
	return s.references.SaleBatchDetails(ctx, params)
}

// BootstrapResources lists the reference data an entry form of type t
// needs when it opens
func BootstrapResources(t enum.TransactionType) []string {
	resources := []string{repository.ResourceProducts, repository.ResourceAccounts}
	switch t {
	case enum.TransactionTypePurchase:
		resources = append(resources, repository.ResourceAccountPayables, repository.ResourcePurchasers)
	case enum.TransactionTypePurchaseReturn:
		resources = append(resources, repository.ResourceAccountPayables)
	case enum.TransactionTypeSale, enum.TransactionTypeSaleReturn:
		resources = append(resources, repository.ResourceAccountReceivables)
	}
	return resources
}

// Bootstrap loads every resource of BootstrapResources(t) in parallel. The
// first failure cancels the remaining loads.
func (s *ReferenceService) Bootstrap(ctx context.Context, t enum.TransactionType) (map[string]json.RawMessage, error) {
	resources := BootstrapResources(t)
	result := make(map[string]json.RawMessage, len(resources))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, resource := range resources {
		resource := resource
		g.Go(func() error {
			body, err := s.references.List(gctx, resource, nil)
			if err != nil {
				return err
			}
			mu.Lock()
			result[resource] = body
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
