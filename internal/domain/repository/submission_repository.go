package repository

import (
	"context"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// SubmissionRepository defines the interface for the submission ledger
type SubmissionRepository interface {
	GetByKey(ctx context.Context, idempotencyKey string) (*entity.SubmissionRecord, error)
	Create(ctx context.Context, record *entity.SubmissionRecord) error
	Update(ctx context.Context, record *entity.SubmissionRecord) error
	// List returns the records of the owner carried by ctx
	List(ctx context.Context, params *SubmissionFilterParams) ([]entity.SubmissionRecord, int64, error)
}

// SubmissionFilterParams contains filtering parameters for submission queries
type SubmissionFilterParams struct {
	Pagination      *pagination.PaginationParams
	Status          *enum.SubmissionStatus
	TransactionType *enum.TransactionType
}
