package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/enum"
)

// DraftHeader holds the reference fields of a transaction draft. Empty
// strings mean "not selected".
type DraftHeader struct {
	AccountPayableID      string `json:"account_payable_id"`
	AccountReceivableID   string `json:"account_receivable_id"`
	PurchaserID           string `json:"purchaser_id"`
	CompanyID             string `json:"company_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	Date                  string `json:"date"`
	Description           string `json:"description"`
}

// TransactionDraft is the in-progress state of one transaction-entry form.
// It lives only in memory and is discarded on close or after a successful
// submission.
type TransactionDraft struct {
	ID               uuid.UUID            `json:"id"`
	OwnerID          uuid.UUID            `json:"owner_id"`
	Type             enum.TransactionType `json:"type"`
	State            enum.DraftState      `json:"state"`
	Header           DraftHeader          `json:"header"`
	Lines            []LineItem           `json:"products"`
	TotalAmount      string               `json:"total_amount"`
	PaidAmount       string               `json:"paid_amount"`
	RemainingPayment string               `json:"remaining_payment"`
	AccountID        string               `json:"account_id"`
	Pending          *PendingConfirmation `json:"pending,omitempty"`
	LastError        string               `json:"last_error,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// IsEditable reports whether field edits are accepted
func (d *TransactionDraft) IsEditable() bool {
	return d.State == enum.DraftStateEditing
}

// Clone returns a deep copy of the draft, including any pending confirmation
func (d *TransactionDraft) Clone() *TransactionDraft {
	c := *d
	if d.Lines != nil {
		c.Lines = make([]LineItem, len(d.Lines))
		for i, line := range d.Lines {
			c.Lines[i] = line.Clone()
		}
	}
	if d.Pending != nil {
		p := *d.Pending
		if d.Pending.Snapshot != nil {
			p.Snapshot = d.Pending.Snapshot.Clone()
		}
		c.Pending = &p
	}
	return &c
}

// ConfirmationDisplay carries values shown next to the snapshot in the
// confirmation dialog
type ConfirmationDisplay struct {
	AccountName    string `json:"account_name,omitempty"`
	AccountBalance string `json:"account_balance,omitempty"`
	LineCount      int    `json:"line_count"`
}

// PendingConfirmation is the read-only snapshot taken when a draft passes
// validation. The idempotency key is fixed for the lifetime of the snapshot
// so retries after a failed submission reuse it.
type PendingConfirmation struct {
	IdempotencyKey string              `json:"idempotency_key"`
	Snapshot       *TransactionDraft   `json:"snapshot"`
	Payload        *TransactionPayload `json:"payload"`
	Display        ConfirmationDisplay `json:"display"`
	ConfirmedAt    time.Time           `json:"confirmed_at"`
	Attempts       int                 `json:"attempts"`
}
