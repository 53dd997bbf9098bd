package service

import (
	"strings"
	"time"

	"github.com/sangkips/materials-console/internal/domain/calculator"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/pkg/apperror"
)

// BuildPayload converts a validated draft into the body expected by the
// business API. Derived money fields are recomputed from the raw inputs so
// the payload never carries stale figures.
func BuildPayload(d *entity.TransactionDraft, now time.Time) (*entity.TransactionPayload, error) {
	draft := d.Clone()
	calculator.RecomputeDraft(draft)

	date, err := payloadDate(draft.Header.Date, now)
	if err != nil {
		return nil, err
	}

	paid := calculator.Parse(draft.PaidAmount)

	p := &entity.TransactionPayload{
		TransactionType:       draft.Type.String(),
		AccountPayableID:      nullable(draft.Header.AccountPayableID),
		AccountReceivableID:   nullable(draft.Header.AccountReceivableID),
		PurchaserID:           nullable(draft.Header.PurchaserID),
		CompanyID:             nullable(draft.Header.CompanyID),
		OriginalTransactionID: nullable(draft.Header.OriginalTransactionID),
		TotalAmount:           draft.TotalAmount,
		PaidAmount:            calculator.Format2(paid),
		RemainingPayment:      draft.RemainingPayment,
		Date:                  date,
		Description:           strings.TrimSpace(draft.Header.Description),
	}

	if !paid.IsZero() {
		if draft.Type.MovesMoneyOut() {
			p.SourceAccountID = nullable(draft.AccountID)
		} else {
			p.DestinationAccountID = nullable(draft.AccountID)
		}
	}

	lines := make([]entity.PayloadLine, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		lines = append(lines, payloadLine(line, draft.Type))
	}
	if draft.Type.IsReturn() {
		p.Returns = lines
	} else {
		p.Products = lines
	}

	return p, nil
}

func payloadLine(line entity.LineItem, t enum.TransactionType) entity.PayloadLine {
	pl := entity.PayloadLine{
		ProductID:          nullable(line.ProductID),
		Quantity:           calculator.Parse(line.Quantity).String(),
		Unit:               line.Unit,
		PerUnitRate:        calculator.Format2(calculator.Parse(line.PerUnitRate)),
		DiscountPercentage: calculator.Parse(line.DiscountPercentage).String(),
		DiscountPerUnit:    line.DiscountPerUnit,
		Discount:           line.Discount,
		TotalAmount:        line.TotalAmount,
	}

	if t.IsBatchBased() {
		for _, a := range line.Allocations {
			qty := calculator.Parse(a.AllocatedQuantity)
			if !qty.IsPositive() {
				continue
			}
			pl.Batches = append(pl.Batches, entity.PayloadBatch{
				BatchID:              a.BatchID,
				Quantity:             qty.String(),
				PurchasePricePerUnit: calculator.Format2(calculator.Parse(a.PurchasePricePerUnit)),
			})
		}
	}
	return pl
}

// payloadDate returns an RFC 3339 timestamp. A bare date becomes start of
// day UTC; an empty date becomes now.
func payloadDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	return "", apperror.NewFieldError("date", "Please enter a valid date")
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
