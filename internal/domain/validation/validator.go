// Package validation gates a transaction draft before it may be confirmed.
// Checks run in a fixed order and stop at the first failure, which is
// reported as a single field error.
package validation

import (
	"errors"
	"fmt"

	"github.com/sangkips/materials-console/internal/domain/calculator"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/pkg/apperror"
)

// RequiresBalanceCheck reports whether Validate needs the settlement
// account's current balance for d
func RequiresBalanceCheck(d *entity.TransactionDraft) bool {
	return d.Type == enum.TransactionTypePurchase &&
		d.AccountID != "" &&
		calculator.Parse(d.PaidAmount).IsPositive()
}

// Validate runs the submission checks against d. settlement is the selected
// account as last reported by the business API and may be nil when no
// balance check is required. The business API remains the authority on
// balances; this is a pre-check only.
func Validate(d *entity.TransactionDraft, settlement *entity.Account) error {
	if len(d.Lines) == 0 {
		return apperror.NewFieldError("products", "Please add at least one product")
	}

	if err := validateLines(d.Lines); err != nil {
		return err
	}

	if err := validatePayment(d, settlement); err != nil {
		return err
	}

	if err := validateReferences(d); err != nil {
		return err
	}

	if d.Type.IsBatchBased() {
		for i, line := range d.Lines {
			if err := calculator.ReconcileAllocations(line); err != nil {
				return allocationError(i, err)
			}
		}
	}

	return nil
}

func validateLines(lines []entity.LineItem) error {
	for i, line := range lines {
		n := i + 1
		if line.ProductID == "" {
			return apperror.NewFieldError(lineField(i, "product_id"), fmt.Sprintf("Please select a product for line %d", n))
		}
		if !calculator.Parse(line.Quantity).IsPositive() {
			return apperror.NewFieldError(lineField(i, "quantity"), fmt.Sprintf("Quantity must be greater than 0 for line %d", n))
		}
		if !calculator.Parse(line.PerUnitRate).IsPositive() {
			return apperror.NewFieldError(lineField(i, "per_unit_rate"), fmt.Sprintf("Rate must be greater than 0 for line %d", n))
		}
	}
	return nil
}

func validatePayment(d *entity.TransactionDraft, settlement *entity.Account) error {
	paid := calculator.Parse(d.PaidAmount)
	if paid.IsZero() {
		return nil
	}

	if d.AccountID == "" {
		return apperror.NewFieldError("account_id", fmt.Sprintf("Please select a %s account", accountRole(d.Type)))
	}

	if !RequiresBalanceCheck(d) {
		return nil
	}
	if settlement == nil {
		return apperror.NewFieldError("account_id", "Selected account was not found")
	}
	if settlement.Balance.LessThan(paid) {
		return apperror.NewFieldError("paid_amount", fmt.Sprintf(
			"Insufficient balance in %s. Available: %s, required: %s",
			accountName(settlement),
			calculator.Format2(settlement.Balance),
			calculator.Format2(paid),
		))
	}
	return nil
}

func validateReferences(d *entity.TransactionDraft) error {
	switch d.Type {
	case enum.TransactionTypePurchase:
		if d.Header.AccountPayableID == "" {
			return apperror.NewFieldError("account_payable_id", "Please select a vendor")
		}
		if d.Header.PurchaserID == "" {
			return apperror.NewFieldError("purchaser_id", "Please select a purchaser")
		}
	case enum.TransactionTypePurchaseReturn:
		if d.Header.AccountPayableID == "" {
			return apperror.NewFieldError("account_payable_id", "Please select a vendor")
		}
	case enum.TransactionTypeSale, enum.TransactionTypeSaleReturn:
		if d.Header.AccountReceivableID == "" {
			return apperror.NewFieldError("account_receivable_id", "Please select a customer")
		}
	}
	return nil
}

func allocationError(i int, err error) error {
	var allocErr *calculator.AllocationError
	message := err.Error()
	if errors.As(err, &allocErr) {
		switch {
		case errors.Is(err, calculator.ErrAllocationExceedsAvailable):
			message = fmt.Sprintf("Line %d: allocated quantity exceeds available quantity (%s)", i+1, allocErr.Details)
		case errors.Is(err, calculator.ErrAllocationMismatch):
			message = fmt.Sprintf("Line %d: batch allocations must add up to the line quantity (%s)", i+1, allocErr.Details)
		}
	}
	return apperror.NewFieldError(lineField(i, "allocations"), message)
}

func lineField(i int, name string) string {
	return fmt.Sprintf("products[%d].%s", i, name)
}

func accountRole(t enum.TransactionType) string {
	if t.MovesMoneyOut() {
		return "source"
	}
	return "destination"
}

func accountName(a *entity.Account) string {
	if a.Name != "" {
		return a.Name
	}
	return "account " + a.ID
}
