// Package service contains the business logic for the bookmarks app.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// QueryService answers read-side questions about a user's bookmarks.
// Every query is scoped to the requesting user.
type QueryService struct {
	bookmarks repo.BookmarkRepo
	tags      repo.TagRepo
}

// NewQueryService constructs a QueryService backed by the provided repos.
func NewQueryService(bookmarks repo.BookmarkRepo, tags repo.TagRepo) *QueryService {
	return &QueryService{bookmarks: bookmarks, tags: tags}
}

// QueryBookmarks returns the requested page of the user's bookmarks matching
// query, newest first, with domain.BookmarkPageSize items per page.
// rawPage is the unparsed ?page= value; see domain.ResolvePage for how bad
// values are handled.
func (s *QueryService) QueryBookmarks(ctx context.Context, user domain.User, query, rawPage string) (domain.Page[domain.Bookmark], error) {
	f := domain.BookmarkFilter{OwnerID: user.ID, Query: query}

	total, err := s.bookmarks.Count(ctx, f)
	if err != nil {
		return domain.Page[domain.Bookmark]{}, fmt.Errorf("service.QueryService.QueryBookmarks: %w", err)
	}

	p := domain.ResolvePage(rawPage, domain.BookmarkPageSize, total)
	if total == 0 {
		return domain.NewPage[domain.Bookmark](nil, p, 0), nil
	}

	items, err := s.bookmarks.Search(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Bookmark]{}, fmt.Errorf("service.QueryService.QueryBookmarks: %w", err)
	}
	return domain.NewPage(items, p, total), nil
}

// QueryTags returns the tags used by the user's bookmarks matching query.
// Always returns a non-nil slice so callers can safely range over it.
func (s *QueryService) QueryTags(ctx context.Context, user domain.User, query string) ([]domain.Tag, error) {
	tags, err := s.tags.ListForFilter(ctx, domain.BookmarkFilter{OwnerID: user.ID, Query: query})
	if err != nil {
		return nil, fmt.Errorf("service.QueryService.QueryTags: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}
