package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/calculator"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/internal/domain/validation"
	"github.com/sangkips/materials-console/pkg/apperror"
	"github.com/sangkips/materials-console/pkg/validator"
)

const zeroAmount = "0.00"

// DraftService owns the lifecycle of transaction drafts: editing,
// confirmation and submission to the business API
type DraftService struct {
	drafts       repository.DraftRepository
	references   repository.ReferenceGateway
	transactions repository.TransactionGateway
	submissions  repository.SubmissionRepository
	cache        repository.CacheInvalidator
	now          func() time.Time
}

// NewDraftService creates a new draft service
func NewDraftService(
	drafts repository.DraftRepository,
	references repository.ReferenceGateway,
	transactions repository.TransactionGateway,
	submissions repository.SubmissionRepository,
	cache repository.CacheInvalidator,
) *DraftService {
	return &DraftService{
		drafts:       drafts,
		references:   references,
		transactions: transactions,
		submissions:  submissions,
		cache:        cache,
		now:          time.Now,
	}
}

// CreateDraftInput represents the create draft input
type CreateDraftInput struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"uuid_required"`
	Type    string    `json:"type" validate:"required,oneof=purchase purchase_return sale sale_return"`
}

// HeaderInput is a partial update of the draft header. Nil fields are left
// unchanged; an empty string clears the field.
type HeaderInput struct {
	AccountPayableID      *string `json:"account_payable_id"`
	AccountReceivableID   *string `json:"account_receivable_id"`
	PurchaserID           *string `json:"purchaser_id"`
	CompanyID             *string `json:"company_id"`
	OriginalTransactionID *string `json:"original_transaction_id"`
	Date                  *string `json:"date" validate:"omitempty,console_date"`
	Description           *string `json:"description" validate:"omitempty,max=1000"`
}

// LineInput is a partial update of a line item. Text fields are sanitised
// before they are stored.
type LineInput struct {
	ProductID          *string `json:"product_id"`
	ProductName        *string `json:"product_name"`
	Unit               *string `json:"unit"`
	Quantity           *string `json:"quantity"`
	PerUnitRate        *string `json:"per_unit_rate"`
	DiscountPercentage *string `json:"discount_percentage"`
}

// AllocationInput assigns part of a line to one batch
type AllocationInput struct {
	BatchID              string `json:"batch_id" validate:"required"`
	BatchNumber          string `json:"batch_number"`
	AvailableQuantity    string `json:"available_quantity" validate:"required,decimal"`
	PurchasePricePerUnit string `json:"purchase_price_per_unit" validate:"omitempty,decimal"`
	AllocatedQuantity    string `json:"allocated_quantity"`
}

// PaymentInput sets the paid amount and the settlement account
type PaymentInput struct {
	PaidAmount *string `json:"paid_amount"`
	AccountID  *string `json:"account_id"`
}

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Draft       *entity.TransactionDraft  `json:"draft"`
	Transaction *entity.TransactionResult `json:"transaction"`
	Replayed    bool                      `json:"replayed"`
}

// CreateDraft starts an empty draft in the Editing state
func (s *DraftService) CreateDraft(ctx context.Context, input *CreateDraftInput) (*entity.TransactionDraft, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}

	txType, err := enum.ParseTransactionType(input.Type)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	now := s.now()
	draft := &entity.TransactionDraft{
		ID:        uuid.New(),
		OwnerID:   input.OwnerID,
		Type:      txType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	resetDraft(draft)

	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// GetDraft retrieves a draft owned by ownerID
func (s *DraftService) GetDraft(ctx context.Context, ownerID, id uuid.UUID) (*entity.TransactionDraft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, mapDraftError(err)
	}
	if draft.OwnerID != ownerID {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return draft, nil
}

// ListDrafts returns the open drafts of ownerID
func (s *DraftService) ListDrafts(ctx context.Context, ownerID uuid.UUID) ([]entity.TransactionDraft, error) {
	return s.drafts.ListByOwner(ctx, ownerID)
}

// DiscardDraft closes a draft. A draft with a submission in flight cannot
// be discarded.
func (s *DraftService) DiscardDraft(ctx context.Context, ownerID, id uuid.UUID) error {
	draft, err := s.GetDraft(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if draft.State == enum.DraftStateSubmitted {
		return apperror.NewConflictError("Submission in progress")
	}
	return mapDraftError(s.drafts.Delete(ctx, id))
}

// UpdateHeader changes the reference fields of a draft
func (s *DraftService) UpdateHeader(ctx context.Context, ownerID, id uuid.UUID, input *HeaderInput) (*entity.TransactionDraft, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}

	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		h := &d.Header
		setString(&h.AccountPayableID, input.AccountPayableID)
		setString(&h.AccountReceivableID, input.AccountReceivableID)
		setString(&h.PurchaserID, input.PurchaserID)
		setString(&h.CompanyID, input.CompanyID)
		setString(&h.OriginalTransactionID, input.OriginalTransactionID)
		setString(&h.Date, input.Date)
		setString(&h.Description, input.Description)
		return nil
	})
}

// AddLine appends a line item
func (s *DraftService) AddLine(ctx context.Context, ownerID, id uuid.UUID, input *LineInput) (*entity.TransactionDraft, error) {
	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		var line entity.LineItem
		applyLine(&line, input)
		d.Lines = append(d.Lines, line)
		return nil
	})
}

// UpdateLine edits line index of a draft. Changing the product drops the
// line's batch allocations since they belong to the previous product.
func (s *DraftService) UpdateLine(ctx context.Context, ownerID, id uuid.UUID, index int, input *LineInput) (*entity.TransactionDraft, error) {
	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if err := checkLine(d, index); err != nil {
			return err
		}
		applyLine(&d.Lines[index], input)
		return nil
	})
}

// RemoveLine deletes line index of a draft
func (s *DraftService) RemoveLine(ctx context.Context, ownerID, id uuid.UUID, index int) (*entity.TransactionDraft, error) {
	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if err := checkLine(d, index); err != nil {
			return err
		}
		d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
		return nil
	})
}

// SetAllocations replaces the batch allocations of line index
func (s *DraftService) SetAllocations(ctx context.Context, ownerID, id uuid.UUID, index int, inputs []AllocationInput) (*entity.TransactionDraft, error) {
	allocations := make([]entity.BatchAllocation, 0, len(inputs))
	for i := range inputs {
		if err := validator.ValidateStruct(&inputs[i]); err != nil {
			return nil, err
		}
		in := inputs[i]
		allocations = append(allocations, entity.BatchAllocation{
			BatchID:              in.BatchID,
			BatchNumber:          in.BatchNumber,
			AvailableQuantity:    in.AvailableQuantity,
			PurchasePricePerUnit: in.PurchasePricePerUnit,
			AllocatedQuantity:    calculator.SanitizeDecimal(in.AllocatedQuantity),
		})
	}

	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if !d.Type.IsBatchBased() {
			return apperror.NewBadRequestError("Purchases do not use batch allocations")
		}
		if err := checkLine(d, index); err != nil {
			return err
		}
		d.Lines[index].Allocations = allocations
		return nil
	})
}

// AutoAllocate fills the allocations of line index from the batches the
// business API reports, oldest batch first
func (s *DraftService) AutoAllocate(ctx context.Context, ownerID, id uuid.UUID, index int) (*entity.TransactionDraft, error) {
	draft, err := s.GetDraft(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !draft.IsEditable() {
		return nil, notEditable(draft)
	}
	if !draft.Type.IsBatchBased() {
		return nil, apperror.NewBadRequestError("Purchases do not use batch allocations")
	}
	if err := checkLine(draft, index); err != nil {
		return nil, err
	}

	line := draft.Lines[index]
	if line.ProductID == "" {
		return nil, apperror.NewFieldError(lineField(index, "product_id"), "Please select a product first")
	}
	quantity := calculator.Parse(line.Quantity)
	if !quantity.IsPositive() {
		return nil, apperror.NewFieldError(lineField(index, "quantity"), "Please enter a quantity first")
	}

	batches, err := s.batchesFor(ctx, draft, line.ProductID)
	if err != nil {
		return nil, err
	}

	allocations, err := calculator.AutoAllocate(quantity, batches)
	if err != nil {
		return nil, apperror.NewFieldError(lineField(index, "allocations"), err.Error())
	}

	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if err := checkLine(d, index); err != nil {
			return err
		}
		if d.Lines[index].ProductID != line.ProductID {
			return apperror.NewConflictError("The line changed while batches were loading, please retry")
		}
		d.Lines[index].Allocations = allocations
		return nil
	})
}

func (s *DraftService) batchesFor(ctx context.Context, d *entity.TransactionDraft, productID string) ([]entity.Batch, error) {
	switch d.Type {
	case enum.TransactionTypePurchaseReturn:
		return s.references.PurchaseBatchDetails(ctx, &repository.BatchDetailParams{
			TransactionID: d.Header.OriginalTransactionID,
			ProductID:     productID,
			VendorID:      d.Header.AccountPayableID,
		})
	case enum.TransactionTypeSaleReturn:
		return s.references.SaleBatchDetails(ctx, &repository.BatchDetailParams{
			TransactionID: d.Header.OriginalTransactionID,
			ProductID:     productID,
			CustomerID:    d.Header.AccountReceivableID,
		})
	default:
		return s.references.AvailableBatches(ctx, productID)
	}
}

// SetPayment sets the paid amount and settlement account. A zero paid
// amount clears the account.
func (s *DraftService) SetPayment(ctx context.Context, ownerID, id uuid.UUID, input *PaymentInput) (*entity.TransactionDraft, error) {
	return s.edit(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if input.PaidAmount != nil {
			d.PaidAmount = calculator.SanitizeSigned(*input.PaidAmount)
		}
		if input.AccountID != nil {
			d.AccountID = *input.AccountID
		}
		if calculator.Parse(d.PaidAmount).IsZero() {
			d.AccountID = ""
		}
		return nil
	})
}

// Confirm validates the draft and freezes it for review. The snapshot, the
// outbound payload and the idempotency key stay fixed until the draft is
// cancelled or submitted successfully.
func (s *DraftService) Confirm(ctx context.Context, ownerID, id uuid.UUID) (*entity.TransactionDraft, error) {
	draft, err := s.GetDraft(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !draft.IsEditable() {
		return nil, notEditable(draft)
	}
	calculator.RecomputeDraft(draft)

	var settlement *entity.Account
	if draft.AccountID != "" && calculator.Parse(draft.PaidAmount).IsPositive() {
		settlement, err = s.references.GetAccount(ctx, draft.AccountID)
		if err != nil && validation.RequiresBalanceCheck(draft) {
			return nil, err
		}
	}

	return s.update(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if !d.IsEditable() {
			return notEditable(d)
		}
		if d.AccountID != draft.AccountID {
			return apperror.NewConflictError("The draft changed while it was being confirmed, please retry")
		}
		calculator.RecomputeDraft(d)

		if err := validation.Validate(d, settlement); err != nil {
			return err
		}

		payload, err := BuildPayload(d, s.now())
		if err != nil {
			return err
		}

		snapshot := d.Clone()
		snapshot.Pending = nil
		snapshot.LastError = ""

		display := entity.ConfirmationDisplay{LineCount: len(d.Lines)}
		if settlement != nil {
			display.AccountName = settlement.Name
			display.AccountBalance = calculator.Format2(settlement.Balance)
		}

		d.Pending = &entity.PendingConfirmation{
			IdempotencyKey: uuid.NewString(),
			Snapshot:       snapshot,
			Payload:        payload,
			Display:        display,
			ConfirmedAt:    s.now(),
		}
		d.State = enum.DraftStateConfirming
		d.LastError = ""
		return nil
	})
}

// Cancel returns a confirming draft to editing with every edit intact
func (s *DraftService) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*entity.TransactionDraft, error) {
	return s.update(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		switch d.State {
		case enum.DraftStateSubmitted:
			return apperror.NewConflictError("Submission in progress")
		case enum.DraftStateConfirming:
			d.State = enum.DraftStateEditing
			d.Pending = nil
		}
		return nil
	})
}

// Submit sends the confirmed snapshot to the business API. Only one
// submission per draft may be in flight. On success the draft is reset for
// the next entry; on failure it returns to confirming with the same
// snapshot and idempotency key, so retrying cannot create a duplicate.
func (s *DraftService) Submit(ctx context.Context, ownerID, id uuid.UUID) (*SubmitResult, error) {
	var pending *entity.PendingConfirmation
	var txType enum.TransactionType

	_, err := s.update(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		switch d.State {
		case enum.DraftStateEditing:
			return apperror.NewConflictError("Draft must be confirmed before it is submitted")
		case enum.DraftStateSubmitted:
			return apperror.NewConflictError("Submission already in progress")
		}
		if d.Pending == nil {
			return apperror.NewConflictError("Draft has no confirmed snapshot")
		}
		d.State = enum.DraftStateSubmitted
		d.Pending.Attempts++
		pending = d.Pending
		txType = d.Type
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Bookkeeping after the call must not be lost if the caller goes away
	bg := context.WithoutCancel(ctx)

	record := s.ledgerRecord(bg, ownerID, id, txType, pending)

	var result *entity.TransactionResult
	replayed := false
	if record != nil && record.Status == enum.SubmissionStatusSucceeded {
		result = &entity.TransactionResult{ID: record.TransactionID, Raw: json.RawMessage(record.ResponseBody)}
		replayed = true
		log.Printf("Submission %s already succeeded, replaying transaction %s", pending.IdempotencyKey, record.TransactionID)
	} else {
		result, err = s.transactions.Create(ctx, txType, pending.Payload, pending.IdempotencyKey)
		if err != nil {
			s.recordFailure(bg, record, err)
			return nil, s.restoreConfirming(bg, id, err)
		}
		s.recordSuccess(bg, record, result)
	}

	if len(result.Invalidates) > 0 {
		s.cache.Invalidate(result.Invalidates...)
	} else {
		s.cache.Invalidate(affectedResources(txType)...)
	}

	draft, err := s.drafts.Update(bg, id, func(d *entity.TransactionDraft) error {
		resetDraft(d)
		return nil
	})
	if err != nil {
		return nil, mapDraftError(err)
	}

	return &SubmitResult{Draft: draft, Transaction: result, Replayed: replayed}, nil
}

// ledgerRecord loads or creates the ledger entry for a pending submission.
// The ledger is best effort: when it is unavailable the submission still
// goes out, protected by the business API's idempotency key handling.
func (s *DraftService) ledgerRecord(ctx context.Context, ownerID, draftID uuid.UUID, txType enum.TransactionType, pending *entity.PendingConfirmation) *entity.SubmissionRecord {
	if s.submissions == nil {
		return nil
	}

	record, err := s.submissions.GetByKey(ctx, pending.IdempotencyKey)
	if err != nil {
		log.Printf("Submission ledger lookup failed for %s: %v", pending.IdempotencyKey, err)
		return nil
	}
	if record != nil {
		if record.Status != enum.SubmissionStatusSucceeded {
			record.Status = enum.SubmissionStatusPending
			record.Attempts++
			if err := s.submissions.Update(ctx, record); err != nil {
				log.Printf("Submission ledger update failed for %s: %v", pending.IdempotencyKey, err)
			}
		}
		return record
	}

	body, _ := json.Marshal(pending.Payload)
	record = &entity.SubmissionRecord{
		IdempotencyKey:  pending.IdempotencyKey,
		OwnerID:         ownerID,
		DraftID:         draftID,
		TransactionType: txType,
		Endpoint:        "POST " + repository.CreateTransactionPath(txType),
		RequestBody:     string(body),
		Status:          enum.SubmissionStatusPending,
		Attempts:        1,
	}
	if err := s.submissions.Create(ctx, record); err != nil {
		log.Printf("Submission ledger insert failed for %s: %v", pending.IdempotencyKey, err)
		return nil
	}
	return record
}

func (s *DraftService) recordSuccess(ctx context.Context, record *entity.SubmissionRecord, result *entity.TransactionResult) {
	if record == nil {
		return
	}
	record.Status = enum.SubmissionStatusSucceeded
	record.ResponseCode = 200
	record.ResponseBody = string(result.Raw)
	record.TransactionID = result.ID
	record.LastError = ""
	if err := s.submissions.Update(ctx, record); err != nil {
		log.Printf("Submission ledger update failed for %s: %v", record.IdempotencyKey, err)
	}
}

func (s *DraftService) recordFailure(ctx context.Context, record *entity.SubmissionRecord, cause error) {
	if record == nil {
		return
	}
	appErr := apperror.GetAppError(cause)
	record.Status = enum.SubmissionStatusFailed
	record.ResponseCode = appErr.Code
	record.LastError = appErr.Message
	if err := s.submissions.Update(ctx, record); err != nil {
		log.Printf("Submission ledger update failed for %s: %v", record.IdempotencyKey, err)
	}
}

// restoreConfirming puts a failed submission back in front of the user and
// returns the error to report
func (s *DraftService) restoreConfirming(ctx context.Context, id uuid.UUID, cause error) error {
	message := apperror.GetAppError(cause).Message
	_, err := s.drafts.Update(ctx, id, func(d *entity.TransactionDraft) error {
		d.State = enum.DraftStateConfirming
		d.LastError = message
		return nil
	})
	if err != nil {
		log.Printf("Failed to restore draft %s after submission error: %v", id, err)
	}
	return cause
}

// edit applies fn to an editable draft and recomputes its derived fields
func (s *DraftService) edit(ctx context.Context, ownerID, id uuid.UUID, fn func(d *entity.TransactionDraft) error) (*entity.TransactionDraft, error) {
	return s.update(ctx, ownerID, id, func(d *entity.TransactionDraft) error {
		if !d.IsEditable() {
			return notEditable(d)
		}
		if err := fn(d); err != nil {
			return err
		}
		calculator.RecomputeDraft(d)
		return nil
	})
}

func (s *DraftService) update(ctx context.Context, ownerID, id uuid.UUID, fn func(d *entity.TransactionDraft) error) (*entity.TransactionDraft, error) {
	draft, err := s.drafts.Update(ctx, id, func(d *entity.TransactionDraft) error {
		if d.OwnerID != ownerID {
			return repository.ErrDraftNotFound
		}
		return fn(d)
	})
	if err != nil {
		return nil, mapDraftError(err)
	}
	return draft, nil
}

// resetDraft empties d for the next entry of the same type
func resetDraft(d *entity.TransactionDraft) {
	d.State = enum.DraftStateEditing
	d.Header = entity.DraftHeader{}
	d.Lines = []entity.LineItem{}
	d.TotalAmount = zeroAmount
	d.PaidAmount = zeroAmount
	d.RemainingPayment = zeroAmount
	d.AccountID = ""
	d.Pending = nil
	d.LastError = ""
}

func applyLine(line *entity.LineItem, input *LineInput) {
	if input == nil {
		return
	}
	if input.ProductID != nil && *input.ProductID != line.ProductID {
		line.ProductID = *input.ProductID
		line.Allocations = nil
	}
	setString(&line.ProductName, input.ProductName)
	setString(&line.Unit, input.Unit)
	if input.Quantity != nil {
		line.Quantity = calculator.SanitizeDecimal(*input.Quantity)
	}
	if input.PerUnitRate != nil {
		line.PerUnitRate = calculator.SanitizeDecimal(*input.PerUnitRate)
	}
	if input.DiscountPercentage != nil {
		line.DiscountPercentage = calculator.ClampPercentage(*input.DiscountPercentage)
	}
}

func checkLine(d *entity.TransactionDraft, index int) error {
	if index < 0 || index >= len(d.Lines) {
		return apperror.NewNotFoundError("Line")
	}
	return nil
}

func notEditable(d *entity.TransactionDraft) error {
	if d.State == enum.DraftStateSubmitted {
		return apperror.NewConflictError("Submission in progress")
	}
	return apperror.NewConflictError("Draft is awaiting confirmation, cancel to edit it")
}

func mapDraftError(err error) error {
	if errors.Is(err, repository.ErrDraftNotFound) {
		return apperror.NewNotFoundError("Draft")
	}
	return err
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func lineField(i int, name string) string {
	return "products[" + strconv.Itoa(i) + "]." + name
}
