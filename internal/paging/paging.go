// Package paging implements the generic filter, sort, skip, limit and count
// pattern shared by every list operation.
package paging

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/phrazzld/agora-api/internal/store"
)

// Defaults applied when a caller omits page or limit.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit is the largest value of a 32-bit Int argument.
	MaxLimit = math.MaxInt32
)

// ErrInvalidRequest is returned for page < 1 or limit <= 0.
var ErrInvalidRequest = errors.New("invalid page request")

// Request describes one page of a list operation.
type Request struct {
	Page   int
	Limit  int
	Sort   string
	Filter store.Filter
}

// NewRequest applies the defaults for omitted page and limit. Explicit values
// are kept as given so Execute can reject them.
func NewRequest(page, limit *int, sort string, filter store.Filter) Request {
	req := Request{Page: DefaultPage, Limit: DefaultLimit, Sort: sort, Filter: filter}
	if page != nil {
		req.Page = *page
	}
	if limit != nil {
		req.Limit = *limit
	}
	return req
}

// Validate checks page and limit bounds.
func (r Request) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidRequest, r.Page)
	}
	if r.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRequest, r.Limit)
	}
	if r.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be at most %d, got %d", ErrInvalidRequest, MaxLimit, r.Limit)
	}
	return nil
}

// Pagination is the wire envelope describing a page.
type Pagination struct {
	TotalRecords    int  `json:"totalRecords"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPagination computes the envelope for total records split into pages of
// limit. limit must be positive.
func NewPagination(total, page, limit int) Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Pagination{
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
		// page*limit < total, without the multiplication.
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Result is one page of T.
type Result[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Source is the subset of a store Execute needs.
type Source[T any] interface {
	Count(ctx context.Context, filter store.Filter) (int, error)
	Find(ctx context.Context, q store.Query) ([]T, error)
}

// Populator resolves references on a fetched page in place.
type Populator[T any] func(ctx context.Context, items []T) error

// Execute validates req, counts the filtered collection, fetches the page in
// the order chosen by table and runs each populator over the page.
// A page past the end yields empty data with a consistent envelope.
func Execute[T any](
	ctx context.Context,
	src Source[T],
	table SortTable,
	req Request,
	populators ...Populator[T],
) (*Result[T], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	total, err := src.Count(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	result := &Result[T]{
		Data:       []T{},
		Pagination: NewPagination(total, req.Page, req.Limit),
	}

	// Pages past the end need no fetch; this also keeps skip from overflowing.
	if req.Page > result.Pagination.TotalPages {
		return result, nil
	}

	items, err := src.Find(ctx, store.Query{
		Filter: req.Filter,
		Sort:   table.Resolve(req.Sort),
		Skip:   (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	for _, populate := range populators {
		if err := populate(ctx, items); err != nil {
			return nil, err
		}
	}

	if items != nil {
		result.Data = items
	}
	return result, nil
}
