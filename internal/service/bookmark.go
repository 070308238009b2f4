package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// MetadataLoader looks up a page's own title and description.
type MetadataLoader interface {
	Load(ctx context.Context, url string) (domain.WebsiteMetadata, error)
}

// BookmarkService implements the write side: creating, updating and removing
// bookmarks, including the tag links derived from a tag string.
type BookmarkService struct {
	tx        repo.Transactor
	bookmarks repo.BookmarkRepo
	loader    MetadataLoader
	log       *slog.Logger
}

// NewBookmarkService constructs a BookmarkService. Saves run through tx so a
// bookmark and its tag links are stored together or not at all. Metadata
// load failures are reported to log and otherwise ignored.
func NewBookmarkService(tx repo.Transactor, bookmarks repo.BookmarkRepo, loader MetadataLoader, log *slog.Logger) *BookmarkService {
	return &BookmarkService{tx: tx, bookmarks: bookmarks, loader: loader, log: log}
}

// Create persists a new bookmark owned by user and links its tags, creating
// any of the user's tags that do not exist yet.
func (s *BookmarkService) Create(ctx context.Context, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error) {
	b := domain.Bookmark{
		OwnerID:     user.ID,
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
	}
	s.loadMetadata(ctx, &b)

	var created domain.Bookmark
	err := s.tx.WithinTx(ctx, func(bookmarks repo.BookmarkRepo, tags repo.TagRepo) error {
		var err error
		if created, err = bookmarks.Create(ctx, b); err != nil {
			return err
		}
		return setTags(ctx, bookmarks, tags, created.ID, in.TagNames, user)
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Create: %w", err)
	}
	created.TagNames = in.TagNames
	return created, nil
}

// Update overwrites existing with the validated input and replaces its tags.
// Metadata is reloaded only when the URL changed. Tags are looked up and
// created under the acting user, not the bookmark's owner.
func (s *BookmarkService) Update(ctx context.Context, existing domain.Bookmark, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error) {
	b := existing
	b.URL = in.URL
	b.Title = in.Title
	b.Description = in.Description
	if b.URL != existing.URL {
		b.WebsiteTitle, b.WebsiteDescription = "", ""
		s.loadMetadata(ctx, &b)
	}

	var updated domain.Bookmark
	err := s.tx.WithinTx(ctx, func(bookmarks repo.BookmarkRepo, tags repo.TagRepo) error {
		var err error
		if updated, err = bookmarks.Update(ctx, b); err != nil {
			return err
		}
		return setTags(ctx, bookmarks, tags, updated.ID, in.TagNames, user)
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.Update: %w", err)
	}
	updated.TagNames = in.TagNames
	return updated, nil
}

// GetByID returns a bookmark by ID regardless of owner.
// Returns domain.ErrNotFound if it does not exist.
func (s *BookmarkService) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	b, err := s.bookmarks.GetByID(ctx, id)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("service.BookmarkService.GetByID: %w", err)
	}
	return b, nil
}

// Delete removes a bookmark permanently.
// Returns domain.ErrNotFound if it does not exist.
func (s *BookmarkService) Delete(ctx context.Context, id int64) error {
	if err := s.bookmarks.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.BookmarkService.Delete: %w", err)
	}
	return nil
}

func setTags(ctx context.Context, bookmarks repo.BookmarkRepo, tags repo.TagRepo, bookmarkID int64, names []string, user domain.User) error {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		tag, err := tags.GetOrCreate(ctx, user.ID, name)
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}
	return bookmarks.SetTags(ctx, bookmarkID, ids)
}

// loadMetadata fills in the website fields of b. Failures only get logged.
func (s *BookmarkService) loadMetadata(ctx context.Context, b *domain.Bookmark) {
	meta, err := s.loader.Load(ctx, b.URL)
	if err != nil {
		s.log.DebugContext(ctx, "website metadata not loaded", "url", b.URL, "error", err)
		return
	}
	b.WebsiteTitle = meta.Title
	b.WebsiteDescription = meta.Description
}
