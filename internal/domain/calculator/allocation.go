package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AllocationTolerance is the largest accepted difference between a line's
// quantity and the sum of its batch allocations
var AllocationTolerance = decimal.RequireFromString("0.01")

var (
	// ErrAllocationExceedsAvailable is returned when a batch is asked for more than it holds
	ErrAllocationExceedsAvailable = errors.New("allocated quantity exceeds available quantity")
	// ErrAllocationMismatch is returned when allocations do not add up to the line quantity
	ErrAllocationMismatch = errors.New("allocated quantity does not match line quantity")
	// ErrInsufficientStock is returned when available batches cannot cover a quantity
	ErrInsufficientStock = errors.New("insufficient stock in available batches")
)

// AllocationError wraps one of the allocation sentinel errors with the
// batch and quantities involved
type AllocationError struct {
	Err     error
	BatchID string
	Details string
}

func (e *AllocationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// AllocatedTotal sums the allocated quantities
func AllocatedTotal(allocations []entity.BatchAllocation) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(Parse(a.AllocatedQuantity))
	}
	return sum
}

// ReconcileAllocations checks that no allocation exceeds its batch and that
// the allocations cover the line quantity within AllocationTolerance
func ReconcileAllocations(line entity.LineItem) error {
	for _, a := range line.Allocations {
		allocated := Parse(a.AllocatedQuantity)
		available := Parse(a.AvailableQuantity)
		if allocated.GreaterThan(available) {
			return &AllocationError{
				Err:     ErrAllocationExceedsAvailable,
				BatchID: a.BatchID,
				Details: fmt.Sprintf("batch %s has %s available, %s allocated", batchLabel(a), available.String(), allocated.String()),
			}
		}
	}

	quantity := Parse(line.Quantity)
	allocated := AllocatedTotal(line.Allocations)
	if quantity.Sub(allocated).Abs().GreaterThan(AllocationTolerance) {
		return &AllocationError{
			Err:     ErrAllocationMismatch,
			Details: fmt.Sprintf("line quantity %s, allocated %s", quantity.String(), allocated.String()),
		}
	}
	return nil
}

// AutoAllocate spreads quantity over batches oldest first
func AutoAllocate(quantity decimal.Decimal, batches []entity.Batch) ([]entity.BatchAllocation, error) {
	ordered := make([]entity.Batch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PurchasedAt.Before(ordered[j].PurchasedAt)
	})

	remaining := quantity
	allocations := make([]entity.BatchAllocation, 0, len(ordered))
	for _, b := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !b.AvailableQuantity.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, b.AvailableQuantity)
		allocations = append(allocations, entity.BatchAllocation{
			BatchID:              b.ID,
			BatchNumber:          b.BatchNumber,
			AvailableQuantity:    b.AvailableQuantity.String(),
			PurchasePricePerUnit: Format2(b.PurchasePricePerUnit),
			AllocatedQuantity:    take.String(),
		})
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		return nil, &AllocationError{
			Err:     ErrInsufficientStock,
			Details: fmt.Sprintf("%s short of %s requested", remaining.String(), quantity.String()),
		}
	}
	return allocations, nil
}

func batchLabel(a entity.BatchAllocation) string {
	if a.BatchNumber != "" {
		return a.BatchNumber
	}
	return a.BatchID
}
