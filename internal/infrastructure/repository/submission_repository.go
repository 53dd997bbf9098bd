package repository

import (
	"context"
	"errors"

	"github.com/sangkips/materials-console/internal/domain/entity"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/pkg/pagination"
	"gorm.io/gorm"
)

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission ledger repository
func NewSubmissionRepository(db *gorm.DB) domainRepo.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByKey(ctx context.Context, idempotencyKey string) (*entity.SubmissionRecord, error) {
	var record entity.SubmissionRecord
	err := r.db.WithContext(ctx).First(&record, "idempotency_key = ?", idempotencyKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *submissionRepository) Create(ctx context.Context, record *entity.SubmissionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *submissionRepository) Update(ctx context.Context, record *entity.SubmissionRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *submissionRepository) List(ctx context.Context, params *domainRepo.SubmissionFilterParams) ([]entity.SubmissionRecord, int64, error) {
	var records []entity.SubmissionRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SubmissionRecord{}).Scopes(OwnerScope(ctx))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.TransactionType != nil {
		query = query.Where("transaction_type = ?", *params.TransactionType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&records).Error

	return records, total, err
}
