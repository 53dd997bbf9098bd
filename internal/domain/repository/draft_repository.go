package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/entity"
)

// ErrDraftNotFound is returned when a draft does not exist or has expired
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository keeps transaction drafts in memory. Implementations hand
// out copies; the only way to change a stored draft is Update.
type DraftRepository interface {
	Create(ctx context.Context, draft *entity.TransactionDraft) error
	Get(ctx context.Context, id uuid.UUID) (*entity.TransactionDraft, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.TransactionDraft, error)
	// Update applies fn to a copy of the stored draft and saves the copy
	// when fn returns nil. Calls for the same draft are serialised.
	Update(ctx context.Context, id uuid.UUID, fn func(d *entity.TransactionDraft) error) (*entity.TransactionDraft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
