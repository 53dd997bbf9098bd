package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/internal/domain/repository"
	infraRepo "github.com/sangkips/materials-console/internal/infrastructure/repository"
	"github.com/sangkips/materials-console/pkg/apperror"
	"github.com/shopspring/decimal"
)

type fakeReferences struct {
	accounts map[string]*entity.Account
	batches  []entity.Batch
	lists    []string
	mu       sync.Mutex
}

func (f *fakeReferences) List(ctx context.Context, resource string, params *repository.ReferenceFilterParams) (json.RawMessage, error) {
	f.mu.Lock()
	f.lists = append(f.lists, resource)
	f.mu.Unlock()
	return json.RawMessage(`[]`), nil
}

func (f *fakeReferences) ListVendorScoped(ctx context.Context, vendorID, resource string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeReferences) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeReferences) AvailableBatches(ctx context.Context, productID string) ([]entity.Batch, error) {
	return f.batches, nil
}

func (f *fakeReferences) PurchaseBatchDetails(ctx context.Context, params *repository.BatchDetailParams) ([]entity.Batch, error) {
	return f.batches, nil
}

func (f *fakeReferences) SaleBatchDetails(ctx context.Context, params *repository.BatchDetailParams) ([]entity.Batch, error) {
	return f.batches, nil
}

type createCall struct {
	txType  enum.TransactionType
	payload *entity.TransactionPayload
	key     string
}

type fakeTransactions struct {
	mu     sync.Mutex
	calls  []createCall
	err    error
	result *entity.TransactionResult
	block  chan struct{}
}

func (f *fakeTransactions) Create(ctx context.Context, txType enum.TransactionType, payload *entity.TransactionPayload, key string) (*entity.TransactionResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, createCall{txType: txType, payload: payload, key: key})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &entity.TransactionResult{ID: "tx-1", Raw: json.RawMessage(`{"id":"tx-1"}`)}, nil
}

func (f *fakeTransactions) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeTransactions) GetWithRelations(ctx context.Context, id string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeTransactions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubmissions struct {
	mu      sync.Mutex
	records map[string]*entity.SubmissionRecord
}

func newFakeSubmissions() *fakeSubmissions {
	return &fakeSubmissions{records: make(map[string]*entity.SubmissionRecord)}
}

func (f *fakeSubmissions) GetByKey(ctx context.Context, key string) (*entity.SubmissionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (f *fakeSubmissions) Create(ctx context.Context, r *entity.SubmissionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *r
	f.records[r.IdempotencyKey] = &c
	return nil
}

func (f *fakeSubmissions) Update(ctx context.Context, r *entity.SubmissionRecord) error {
	return f.Create(ctx, r)
}

func (f *fakeSubmissions) List(ctx context.Context, params *repository.SubmissionFilterParams) ([]entity.SubmissionRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.SubmissionRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
	all         int
}

func (f *fakeCache) Invalidate(resources ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, resources...)
}

func (f *fakeCache) InvalidateAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
}

type testEnv struct {
	svc          *DraftService
	refs         *fakeReferences
	transactions *fakeTransactions
	submissions  *fakeSubmissions
	cache        *fakeCache
	owner        uuid.UUID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		refs:         &fakeReferences{accounts: map[string]*entity.Account{}},
		transactions: &fakeTransactions{},
		submissions:  newFakeSubmissions(),
		cache:        &fakeCache{},
		owner:        uuid.New(),
	}
	env.svc = NewDraftService(
		infraRepo.NewDraftStore(infraRepo.DraftStoreConfig{}),
		env.refs,
		env.transactions,
		env.submissions,
		env.cache,
	)
	env.svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return env
}

func strPtr(s string) *string { return &s }

func (e *testEnv) draft(t *testing.T, txType string) *entity.TransactionDraft {
	t.Helper()
	d, err := e.svc.CreateDraft(context.Background(), &CreateDraftInput{OwnerID: e.owner, Type: txType})
	if err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}
	return d
}

func (e *testEnv) addLine(t *testing.T, id uuid.UUID, qty, rate, pct string) *entity.TransactionDraft {
	t.Helper()
	d, err := e.svc.AddLine(context.Background(), e.owner, id, &LineInput{
		ProductID:          strPtr("prod-1"),
		Quantity:           strPtr(qty),
		PerUnitRate:        strPtr(rate),
		DiscountPercentage: strPtr(pct),
	})
	if err != nil {
		t.Fatalf("AddLine() error = %v", err)
	}
	return d
}

// readyPurchase returns a purchase draft that passes validation
func (e *testEnv) readyPurchase(t *testing.T) *entity.TransactionDraft {
	t.Helper()
	ctx := context.Background()
	d := e.draft(t, "purchase")
	e.addLine(t, d.ID, "10", "100.00", "10")
	d, err := e.svc.UpdateHeader(ctx, e.owner, d.ID, &HeaderInput{
		AccountPayableID: strPtr("vendor-1"),
		PurchaserID:      strPtr("purchaser-1"),
		Date:             strPtr("2024-02-28"),
	})
	if err != nil {
		t.Fatalf("UpdateHeader() error = %v", err)
	}
	return d
}

func fieldOf(err error) string {
	appErr := apperror.GetAppError(err)
	if len(appErr.Errors) == 0 {
		return ""
	}
	return appErr.Errors[0].Field
}

func TestPurchaseLineScenario(t *testing.T) {
	env := newTestEnv()
	d := env.draft(t, "purchase")

	d = env.addLine(t, d.ID, "10", "100.00", "10")
	line := d.Lines[0]
	if line.DiscountPerUnit != "10.00" || line.Discount != "100.00" || line.TotalAmount != "900.00" {
		t.Fatalf("line = %+v", line)
	}

	d = env.addLine(t, d.ID, "10", "100.00", "10")
	if d.TotalAmount != "1800.00" {
		t.Errorf("total_amount = %s, want 1800.00", d.TotalAmount)
	}
	if d.RemainingPayment != "1800.00" {
		t.Errorf("remaining_payment = %s, want 1800.00", d.RemainingPayment)
	}
}

func TestOverpaymentScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)
	env.refs.accounts["cash"] = &entity.Account{ID: "cash", Name: "Cash", Balance: decimal.RequireFromString("5000")}

	d, err := env.svc.SetPayment(ctx, env.owner, d.ID, &PaymentInput{PaidAmount: strPtr("1000.00"), AccountID: strPtr("cash")})
	if err != nil {
		t.Fatalf("SetPayment() error = %v", err)
	}
	if d.RemainingPayment != "-100.00" {
		t.Errorf("remaining_payment = %s, want -100.00", d.RemainingPayment)
	}

	if _, err := env.svc.Confirm(ctx, env.owner, d.ID); err != nil {
		t.Errorf("Confirm() with overpayment error = %v", err)
	}
}

func TestValidationBlockSendsNothing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.draft(t, "sale")

	_, err := env.svc.Confirm(ctx, env.owner, d.ID)
	if fieldOf(err) != "products" {
		t.Fatalf("Confirm() error = %v, want products field error", err)
	}

	_, err = env.svc.Submit(ctx, env.owner, d.ID)
	if apperror.GetAppError(err).Code != 409 {
		t.Errorf("Submit() of unconfirmed draft error = %v, want 409", err)
	}

	if n := env.transactions.callCount(); n != 0 {
		t.Errorf("business API received %d calls, want 0", n)
	}

	got, _ := env.svc.GetDraft(ctx, env.owner, d.ID)
	if got.State != enum.DraftStateEditing {
		t.Errorf("state = %s, want editing", got.State)
	}
}

func TestBalanceCheckScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)
	env.refs.accounts["cash"] = &entity.Account{ID: "cash", Name: "Cash", Balance: decimal.RequireFromString("500.00")}

	if _, err := env.svc.SetPayment(ctx, env.owner, d.ID, &PaymentInput{PaidAmount: strPtr("600.00"), AccountID: strPtr("cash")}); err != nil {
		t.Fatalf("SetPayment() error = %v", err)
	}

	_, err := env.svc.Confirm(ctx, env.owner, d.ID)
	if fieldOf(err) != "paid_amount" {
		t.Fatalf("Confirm() error = %v, want paid_amount field error", err)
	}
	if env.transactions.callCount() != 0 {
		t.Error("business API should not be called")
	}
}

func TestSetPaymentZeroClearsAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)

	d, _ = env.svc.SetPayment(ctx, env.owner, d.ID, &PaymentInput{PaidAmount: strPtr("50"), AccountID: strPtr("cash")})
	if d.AccountID != "cash" {
		t.Fatalf("account_id = %q", d.AccountID)
	}

	d, _ = env.svc.SetPayment(ctx, env.owner, d.ID, &PaymentInput{PaidAmount: strPtr("0")})
	if d.AccountID != "" {
		t.Errorf("account_id = %q, want cleared", d.AccountID)
	}
}

func TestConfirmFreezesDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)

	d, err := env.svc.Confirm(ctx, env.owner, d.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if d.State != enum.DraftStateConfirming || d.Pending == nil || d.Pending.IdempotencyKey == "" {
		t.Fatalf("draft after confirm = %+v", d)
	}
	if d.Pending.Payload.Date != "2024-02-28T00:00:00Z" {
		t.Errorf("payload date = %s", d.Pending.Payload.Date)
	}

	_, err = env.svc.AddLine(ctx, env.owner, d.ID, &LineInput{})
	if apperror.GetAppError(err).Code != 409 {
		t.Errorf("AddLine() while confirming error = %v, want 409", err)
	}
	_, err = env.svc.Confirm(ctx, env.owner, d.ID)
	if apperror.GetAppError(err).Code != 409 {
		t.Errorf("second Confirm() error = %v, want 409", err)
	}
}

func TestCancelKeepsEdits(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)

	if _, err := env.svc.Confirm(ctx, env.owner, d.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	d, err := env.svc.Cancel(ctx, env.owner, d.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if d.State != enum.DraftStateEditing || d.Pending != nil {
		t.Errorf("draft after cancel = %+v", d)
	}
	if len(d.Lines) != 1 || d.TotalAmount != "900.00" || d.Header.AccountPayableID != "vendor-1" {
		t.Errorf("edits lost on cancel: %+v", d)
	}
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)
	d, _ = env.svc.Confirm(ctx, env.owner, d.ID)
	key := d.Pending.IdempotencyKey

	result, err := env.svc.Submit(ctx, env.owner, d.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if result.Transaction.ID != "tx-1" {
		t.Errorf("transaction id = %s", result.Transaction.ID)
	}
	got := result.Draft
	if got.State != enum.DraftStateEditing || len(got.Lines) != 0 || got.TotalAmount != "0.00" || got.Type != enum.TransactionTypePurchase {
		t.Errorf("draft not reset: %+v", got)
	}

	call := env.transactions.calls[0]
	if call.key != key || call.txType != enum.TransactionTypePurchase {
		t.Errorf("create call = %+v", call)
	}
	if call.payload.Products[0].TotalAmount != "900.00" || call.payload.PaidAmount != "0.00" {
		t.Errorf("payload = %+v", call.payload)
	}
	if call.payload.AccountReceivableID != nil || call.payload.SourceAccountID != nil {
		t.Error("unset foreign keys should be null")
	}

	rec, _ := env.submissions.GetByKey(ctx, key)
	if rec == nil || rec.Status != enum.SubmissionStatusSucceeded || rec.TransactionID != "tx-1" {
		t.Errorf("ledger record = %+v", rec)
	}

	if len(env.cache.invalidated) == 0 {
		t.Error("reference cache was not invalidated")
	}
}

func TestSubmitUsesServerInvalidationList(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.transactions.result = &entity.TransactionResult{ID: "tx-2", Invalidates: []string{"products"}}
	d := env.readyPurchase(t)
	_, _ = env.svc.Confirm(ctx, env.owner, d.ID)

	if _, err := env.svc.Submit(ctx, env.owner, d.ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(env.cache.invalidated) != 1 || env.cache.invalidated[0] != "products" {
		t.Errorf("invalidated = %v, want [products]", env.cache.invalidated)
	}
}

func TestSubmitFailureKeepsSnapshotAndKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.transactions.err = apperror.NewBadGatewayError("database down")
	d := env.readyPurchase(t)
	d, _ = env.svc.Confirm(ctx, env.owner, d.ID)
	key := d.Pending.IdempotencyKey

	_, err := env.svc.Submit(ctx, env.owner, d.ID)
	if apperror.GetAppError(err).Code != 502 {
		t.Fatalf("Submit() error = %v, want 502", err)
	}

	got, _ := env.svc.GetDraft(ctx, env.owner, d.ID)
	if got.State != enum.DraftStateConfirming || got.Pending.IdempotencyKey != key {
		t.Fatalf("draft after failure = %+v", got)
	}
	if got.LastError != "database down" {
		t.Errorf("last_error = %q", got.LastError)
	}

	env.transactions.err = nil
	if _, err := env.svc.Submit(ctx, env.owner, d.ID); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if len(env.transactions.calls) != 2 || env.transactions.calls[1].key != key {
		t.Errorf("retry did not reuse the idempotency key: %+v", env.transactions.calls)
	}

	rec, _ := env.submissions.GetByKey(ctx, key)
	if rec.Attempts != 2 || rec.Status != enum.SubmissionStatusSucceeded {
		t.Errorf("ledger record = %+v", rec)
	}
}

func TestSubmitReplaysSucceededLedgerRecord(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.readyPurchase(t)
	d, _ = env.svc.Confirm(ctx, env.owner, d.ID)

	_ = env.submissions.Create(ctx, &entity.SubmissionRecord{
		IdempotencyKey: d.Pending.IdempotencyKey,
		Status:         enum.SubmissionStatusSucceeded,
		TransactionID:  "tx-earlier",
	})

	result, err := env.svc.Submit(ctx, env.owner, d.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Replayed || result.Transaction.ID != "tx-earlier" {
		t.Errorf("result = %+v", result)
	}
	if env.transactions.callCount() != 0 {
		t.Error("replayed submission must not call the business API")
	}
}

func TestConcurrentSubmitRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.transactions.block = make(chan struct{})
	d := env.readyPurchase(t)
	_, _ = env.svc.Confirm(ctx, env.owner, d.ID)

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.Submit(ctx, env.owner, d.ID)
		done <- err
	}()

	// Wait until the first submission holds the draft
	for i := 0; i < 100; i++ {
		got, _ := env.svc.GetDraft(ctx, env.owner, d.ID)
		if got.State == enum.DraftStateSubmitted {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := env.svc.Submit(ctx, env.owner, d.ID)
	if apperror.GetAppError(err).Code != 409 {
		t.Errorf("concurrent Submit() error = %v, want 409", err)
	}
	if err := env.svc.DiscardDraft(ctx, env.owner, d.ID); apperror.GetAppError(err).Code != 409 {
		t.Errorf("DiscardDraft() during submit error = %v, want 409", err)
	}

	close(env.transactions.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if env.transactions.callCount() != 1 {
		t.Errorf("business API calls = %d, want 1", env.transactions.callCount())
	}
}

func TestDraftOwnership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.draft(t, "sale")

	_, err := env.svc.GetDraft(ctx, uuid.New(), d.ID)
	if apperror.GetAppError(err).Code != 404 {
		t.Errorf("GetDraft() by stranger error = %v, want 404", err)
	}
	_, err = env.svc.AddLine(ctx, uuid.New(), d.ID, &LineInput{})
	if apperror.GetAppError(err).Code != 404 {
		t.Errorf("AddLine() by stranger error = %v, want 404", err)
	}
}

func TestUpdateLineSanitisesInput(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.draft(t, "purchase")
	d = env.addLine(t, d.ID, "1", "1", "0")

	d, err := env.svc.UpdateLine(ctx, env.owner, d.ID, 0, &LineInput{
		Quantity:           strPtr("007"),
		PerUnitRate:        strPtr("12.5a"),
		DiscountPercentage: strPtr("150"),
	})
	if err != nil {
		t.Fatalf("UpdateLine() error = %v", err)
	}
	line := d.Lines[0]
	if line.Quantity != "7" || line.PerUnitRate != "12.5" || line.DiscountPercentage != "100" {
		t.Errorf("line = %+v", line)
	}
	if line.TotalAmount != "0.00" {
		t.Errorf("total_amount = %s, want 0.00 at 100%% discount", line.TotalAmount)
	}

	_, err = env.svc.UpdateLine(ctx, env.owner, d.ID, 3, &LineInput{})
	if apperror.GetAppError(err).Code != 404 {
		t.Errorf("UpdateLine() out of range error = %v, want 404", err)
	}

	d, _ = env.svc.RemoveLine(ctx, env.owner, d.ID, 0)
	if len(d.Lines) != 0 || d.TotalAmount != "0.00" {
		t.Errorf("after RemoveLine() draft = %+v", d)
	}
}

func TestSaleAllocationFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()
	env.refs.batches = []entity.Batch{
		{ID: "b-new", AvailableQuantity: decimal.NewFromInt(10), PurchasePricePerUnit: decimal.NewFromInt(80), PurchasedAt: now},
		{ID: "b-old", AvailableQuantity: decimal.NewFromInt(4), PurchasePricePerUnit: decimal.NewFromInt(75), PurchasedAt: now.Add(-48 * time.Hour)},
	}

	d := env.draft(t, "sale")
	env.addLine(t, d.ID, "6", "100", "0")
	_, _ = env.svc.UpdateHeader(ctx, env.owner, d.ID, &HeaderInput{AccountReceivableID: strPtr("cust-1")})

	_, err := env.svc.Confirm(ctx, env.owner, d.ID)
	if fieldOf(err) != "products[0].allocations" {
		t.Fatalf("Confirm() without allocations error = %v", err)
	}

	d, err = env.svc.AutoAllocate(ctx, env.owner, d.ID, 0)
	if err != nil {
		t.Fatalf("AutoAllocate() error = %v", err)
	}
	allocs := d.Lines[0].Allocations
	if len(allocs) != 2 || allocs[0].BatchID != "b-old" || allocs[0].AllocatedQuantity != "4" || allocs[1].AllocatedQuantity != "2" {
		t.Fatalf("allocations = %+v", allocs)
	}

	d, err = env.svc.Confirm(ctx, env.owner, d.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	batches := d.Pending.Payload.Products[0].Batches
	if len(batches) != 2 || batches[1].PurchasePricePerUnit != "80.00" {
		t.Errorf("payload batches = %+v", batches)
	}
}

func TestSetAllocationsRejectedForPurchase(t *testing.T) {
	env := newTestEnv()
	d := env.draft(t, "purchase")
	env.addLine(t, d.ID, "1", "1", "0")

	_, err := env.svc.SetAllocations(context.Background(), env.owner, d.ID, 0, []AllocationInput{
		{BatchID: "b", AvailableQuantity: "5", AllocatedQuantity: "1"},
	})
	if apperror.GetAppError(err).Code != 400 {
		t.Errorf("SetAllocations() on purchase error = %v, want 400", err)
	}
}

func TestCreateDraftRejectsUnknownType(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.CreateDraft(context.Background(), &CreateDraftInput{OwnerID: env.owner, Type: "gift"})
	if fieldOf(err) != "type" {
		t.Errorf("CreateDraft() error = %v, want type field error", err)
	}
}

func TestDiscardDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	d := env.draft(t, "sale")

	if err := env.svc.DiscardDraft(ctx, env.owner, d.ID); err != nil {
		t.Fatalf("DiscardDraft() error = %v", err)
	}
	_, err := env.svc.GetDraft(ctx, env.owner, d.ID)
	if apperror.GetAppError(err).Code != 404 {
		t.Errorf("GetDraft() after discard error = %v", err)
	}
}
