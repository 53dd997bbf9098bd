package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
)

func newDraft(owner uuid.UUID) *entity.TransactionDraft {
	now := time.Now()
	return &entity.TransactionDraft{
		ID:        uuid.New(),
		OwnerID:   owner,
		Lines:     []entity.LineItem{{ProductID: "p-1", Quantity: "1"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDraftStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(DraftStoreConfig{})
	d := newDraft(uuid.New())

	if err := store.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	d.Lines[0].Quantity = "99"

	got, err := store.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Lines[0].Quantity = "42"

	again, _ := store.Get(ctx, d.ID)
	if again.Lines[0].Quantity != "1" {
		t.Errorf("stored draft was mutated through a copy: quantity = %s", again.Lines[0].Quantity)
	}
}

func TestDraftStoreUpdateDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(DraftStoreConfig{})
	d := newDraft(uuid.New())
	_ = store.Create(ctx, d)

	boom := errors.New("boom")
	_, err := store.Update(ctx, d.ID, func(w *entity.TransactionDraft) error {
		w.Lines = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	got, _ := store.Get(ctx, d.ID)
	if len(got.Lines) != 1 {
		t.Errorf("failed update leaked into the store")
	}
}

func TestDraftStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(DraftStoreConfig{})
	d := newDraft(uuid.New())
	d.Lines = nil
	_ = store.Create(ctx, d)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, d.ID, func(w *entity.TransactionDraft) error {
				w.Lines = append(w.Lines, entity.LineItem{})
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, d.ID)
	if len(got.Lines) != 50 {
		t.Errorf("lines = %d, want 50", len(got.Lines))
	}
}

func TestDraftStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(DraftStoreConfig{})
	owner := uuid.New()

	a, b := newDraft(owner), newDraft(uuid.New())
	_ = store.Create(ctx, a)
	_ = store.Create(ctx, b)

	drafts, _ := store.ListByOwner(ctx, owner)
	if len(drafts) != 1 || drafts[0].ID != a.ID {
		t.Fatalf("ListByOwner() = %v", drafts)
	}

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, a.ID); !errors.Is(err, domainRepo.ErrDraftNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

func TestDraftStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(DraftStoreConfig{IdleTTL: time.Hour})
	now := time.Now()
	store.now = func() time.Time { return now }

	idle := newDraft(uuid.New())
	idle.UpdatedAt = now.Add(-2 * time.Hour)
	inFlight := newDraft(uuid.New())
	inFlight.UpdatedAt = now.Add(-2 * time.Hour)
	inFlight.State = enum.DraftStateSubmitted
	fresh := newDraft(uuid.New())

	for _, d := range []*entity.TransactionDraft{idle, inFlight, fresh} {
		_ = store.Create(ctx, d)
	}

	if n := store.sweep(); n != 1 {
		t.Errorf("sweep() removed %d drafts, want 1", n)
	}
	if _, err := store.Get(ctx, idle.ID); err == nil {
		t.Error("idle draft should have been swept")
	}
	if _, err := store.Get(ctx, inFlight.ID); err != nil {
		t.Error("draft with a submission in flight must be kept")
	}
}
