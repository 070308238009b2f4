package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// ---- mock BookmarkRepo -----------------------------------------------------

type mockBookmarkRepo struct {
	create      func(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	getByID     func(ctx context.Context, id int64) (domain.Bookmark, error)
	update      func(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)
	delete      func(ctx context.Context, id int64) error
	count       func(ctx context.Context, f domain.BookmarkFilter) (int64, error)
	search      func(ctx context.Context, f domain.BookmarkFilter, p domain.PaginationParams) ([]domain.Bookmark, error)
	listByOwner func(ctx context.Context, ownerID uuid.UUID) ([]domain.Bookmark, error)
	setTags     func(ctx context.Context, bookmarkID int64, tagIDs []uuid.UUID) error
}

func (m *mockBookmarkRepo) Create(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	return m.create(ctx, b)
}
func (m *mockBookmarkRepo) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookmarkRepo) Update(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	return m.update(ctx, b)
}
func (m *mockBookmarkRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockBookmarkRepo) Count(ctx context.Context, f domain.BookmarkFilter) (int64, error) {
	return m.count(ctx, f)
}
func (m *mockBookmarkRepo) Search(ctx context.Context, f domain.BookmarkFilter, p domain.PaginationParams) ([]domain.Bookmark, error) {
	return m.search(ctx, f, p)
}
func (m *mockBookmarkRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Bookmark, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockBookmarkRepo) SetTags(ctx context.Context, bookmarkID int64, tagIDs []uuid.UUID) error {
	return m.setTags(ctx, bookmarkID, tagIDs)
}

// ---- mock TagRepo ----------------------------------------------------------

type mockTagRepo struct {
	getOrCreate   func(ctx context.Context, ownerID uuid.UUID, name string) (domain.Tag, error)
	listForFilter func(ctx context.Context, f domain.BookmarkFilter) ([]domain.Tag, error)
}

func (m *mockTagRepo) GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (domain.Tag, error) {
	return m.getOrCreate(ctx, ownerID, name)
}
func (m *mockTagRepo) ListForFilter(ctx context.Context, f domain.BookmarkFilter) ([]domain.Tag, error) {
	return m.listForFilter(ctx, f)
}

// ---- mock Transactor -------------------------------------------------------

// mockTransactor hands fn the mock repos directly and records how the unit of
// work ended.
type mockTransactor struct {
	bookmarks  repo.BookmarkRepo
	tags       repo.TagRepo
	committed  int
	rolledBack int
}

func (m *mockTransactor) WithinTx(_ context.Context, fn func(repo.BookmarkRepo, repo.TagRepo) error) error {
	if err := fn(m.bookmarks, m.tags); err != nil {
		m.rolledBack++
		return err
	}
	m.committed++
	return nil
}

// ---- mock UserRepo ---------------------------------------------------------

type mockUserRepo struct {
	getOrCreate func(ctx context.Context, username string) (domain.User, error)
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, username string) (domain.User, error) {
	return m.getOrCreate(ctx, username)
}

// ---- mock MetadataLoader ---------------------------------------------------

type mockLoader struct {
	load func(ctx context.Context, url string) (domain.WebsiteMetadata, error)
}

func (m *mockLoader) Load(ctx context.Context, url string) (domain.WebsiteMetadata, error) {
	return m.load(ctx, url)
}

// compile-time checks
var (
	_ repo.BookmarkRepo = (*mockBookmarkRepo)(nil)
	_ repo.TagRepo      = (*mockTagRepo)(nil)
	_ repo.UserRepo     = (*mockUserRepo)(nil)
	_ repo.Transactor   = (*mockTransactor)(nil)
)

// tagsByName returns a getOrCreate func that hands out one stable tag per
// (owner, lower-cased name), like the Postgres implementation.
func tagsByName() func(ctx context.Context, ownerID uuid.UUID, name string) (domain.Tag, error) {
	known := map[string]domain.Tag{}
	return func(_ context.Context, ownerID uuid.UUID, name string) (domain.Tag, error) {
		key := ownerID.String() + "/" + name
		if t, ok := known[key]; ok {
			return t, nil
		}
		t := domain.Tag{ID: uuid.New(), OwnerID: ownerID, Name: name}
		known[key] = t
		return t, nil
	}
}

func userFixture(name string) domain.User {
	return domain.User{ID: uuid.New(), Username: name}
}
