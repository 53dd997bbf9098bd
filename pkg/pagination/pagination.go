package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// Pagination represents pagination metadata returned to clients
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// PaginationParams represents input parameters for pagination. The business
// API calls the page size "limit"; the console accepts both names.
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"limit" json:"limit"`
}

// DefaultPagination returns default pagination values
func DefaultPagination() *PaginationParams {
	return &PaginationParams{
		Page:    1,
		PerPage: 15,
	}
}

// Validate ensures pagination parameters are within valid ranges
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 15
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

// Offset calculates the offset for SQL queries
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Encode writes page and limit into q. Zero values are left out so the
// business API applies its own defaults.
func (p *PaginationParams) Encode(q url.Values) {
	if p == nil {
		return
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("limit", strconv.Itoa(p.PerPage))
	}
}

// ParseParams reads page and limit (or per_page) from a query string
func ParseParams(q url.Values) *PaginationParams {
	p := &PaginationParams{}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if limit := q.Get("limit"); limit != "" {
		p.PerPage, _ = strconv.Atoi(limit)
	} else {
		p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	}
	return p
}

// NewPagination creates a new Pagination response
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// PaginatedResult represents a paginated result with items and pagination info
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult[T any](items []T, pagination *Pagination) *PaginatedResult[T] {
	return &PaginatedResult[T]{
		Items:      items,
		Pagination: pagination,
	}
}
