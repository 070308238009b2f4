package domain

import (
	"strconv"
	"strings"
)

// BookmarkPageSize is the number of bookmarks shown per list page.
const BookmarkPageSize = 30

// PaginationParams carries the resolved page/limit values from the service
// layer to the repo layer. Page is 1-indexed.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// ResolvePage turns a raw ?page= value into PaginationParams for a result set
// of total items split into pages of limit items.
//
// A missing or non-integer value selects the first page. A value outside
// 1..lastPage selects the last page. An empty result set still has one
// (empty) page, so page 1 is always valid.
func ResolvePage(raw string, limit int, total int64) PaginationParams {
	if limit < 1 {
		limit = BookmarkPageSize
	}
	last := NumPages(total, limit)

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		n = 1
	case n < 1 || n > last:
		n = last
	}
	return PaginationParams{Page: n, Limit: limit}
}

// NumPages returns how many pages of limit items total items fill.
// It is never less than 1.
func NumPages(total int64, limit int) int {
	if total <= 0 || limit < 1 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one slice of a larger ordered result set.
type Page[T any] struct {
	Items    []T
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// NewPage assembles a Page from the items fetched for p out of total.
func NewPage[T any](items []T, p PaginationParams, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Number:   p.Page,
		Size:     p.Limit,
		Total:    total,
		NumPages: NumPages(total, p.Limit),
	}
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p Page[T]) PreviousNumber() int {
	return p.Number - 1
}
func (p Page[T]) NextNumber() int {
	return p.Number + 1
}
