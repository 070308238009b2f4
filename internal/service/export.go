package service

import (
	"context"
	"fmt"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/repo"
)

// ExportService assembles a full flat export of a user's bookmarks.
type ExportService struct {
	bookmarks repo.BookmarkRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(bookmarks repo.BookmarkRepo) *ExportService {
	return &ExportService{bookmarks: bookmarks}
}

// Export returns one ExportRow per bookmark owned by user, newest first.
func (s *ExportService) Export(ctx context.Context, user domain.User) ([]domain.ExportRow, error) {
	bookmarks, err := s.bookmarks.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(bookmarks))
	for _, b := range bookmarks {
		rows = append(rows, domain.NewExportRow(b))
	}
	return rows, nil
}
