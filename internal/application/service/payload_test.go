package service

import (
	"testing"
	"time"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
)

func TestBuildPayload(t *testing.T) {
	now := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		draft entity.TransactionDraft
		check func(t *testing.T, p *entity.TransactionPayload)
	}{
		{
			name: "purchase pays from source account",
			draft: entity.TransactionDraft{
				Type:       enum.TransactionTypePurchase,
				Header:     entity.DraftHeader{AccountPayableID: "v1", Date: "2024-05-01"},
				Lines:      []entity.LineItem{{ProductID: "p1", Quantity: "2", PerUnitRate: "50", DiscountPercentage: ""}},
				PaidAmount: "40",
				AccountID:  "cash",
			},
			check: func(t *testing.T, p *entity.TransactionPayload) {
				if p.SourceAccountID == nil || *p.SourceAccountID != "cash" || p.DestinationAccountID != nil {
					t.Errorf("accounts = %v / %v", p.SourceAccountID, p.DestinationAccountID)
				}
				if p.TotalAmount != "100.00" || p.PaidAmount != "40.00" || p.RemainingPayment != "60.00" {
					t.Errorf("money = %s %s %s", p.TotalAmount, p.PaidAmount, p.RemainingPayment)
				}
				if p.Date != "2024-05-01T00:00:00Z" {
					t.Errorf("date = %s", p.Date)
				}
				if len(p.Products) != 1 || p.Returns != nil {
					t.Errorf("lines = %+v / %+v", p.Products, p.Returns)
				}
			},
		},
		{
			name: "sale receives into destination account",
			draft: entity.TransactionDraft{
				Type:       enum.TransactionTypeSale,
				Lines:      []entity.LineItem{{ProductID: "p1", Quantity: "1", PerUnitRate: "10"}},
				PaidAmount: "10",
				AccountID:  "bank",
			},
			check: func(t *testing.T, p *entity.TransactionPayload) {
				if p.DestinationAccountID == nil || *p.DestinationAccountID != "bank" || p.SourceAccountID != nil {
					t.Errorf("accounts = %v / %v", p.SourceAccountID, p.DestinationAccountID)
				}
				if p.Date != now.Format(time.RFC3339) {
					t.Errorf("empty date should default to now, got %s", p.Date)
				}
			},
		},
		{
			name: "returns use the returns list and null references",
			draft: entity.TransactionDraft{
				Type:  enum.TransactionTypeSaleReturn,
				Lines: []entity.LineItem{{ProductID: "p1", Quantity: "1", PerUnitRate: "10"}},
			},
			check: func(t *testing.T, p *entity.TransactionPayload) {
				if len(p.Returns) != 1 || p.Products != nil {
					t.Errorf("lines = %+v / %+v", p.Products, p.Returns)
				}
				if p.PaidAmount != "0.00" || p.SourceAccountID != nil || p.AccountReceivableID != nil {
					t.Errorf("payload = %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPayload(&tt.draft, now)
			if err != nil {
				t.Fatalf("BuildPayload() error = %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestBuildPayloadRejectsBadDate(t *testing.T) {
	d := &entity.TransactionDraft{Header: entity.DraftHeader{Date: "yesterday"}}
	if _, err := BuildPayload(d, time.Now()); fieldOf(err) != "date" {
		t.Errorf("BuildPayload() error = %v, want date field error", err)
	}
}
