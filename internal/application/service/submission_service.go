package service

import (
	"context"

	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// SubmissionService exposes the submission ledger
type SubmissionService struct {
	submissions repository.SubmissionRepository
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissions repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissions: submissions}
}

// ListSubmissions returns the caller's ledger entries, newest first
func (s *SubmissionService) ListSubmissions(ctx context.Context, params *repository.SubmissionFilterParams) (*pagination.PaginatedResult[entity.SubmissionRecord], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	records, total, err := s.submissions.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(records, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}
