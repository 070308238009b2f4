// Package handler implements the HTTP handlers for the bookmarks app.
// Handlers are methods on Server. Each takes a typed request object and
// returns a Response directive (render a view, redirect, or write a body);
// the route wrappers in routes.go bind requests and write directives out.
// Methods are split into domain-specific files (bookmarks.go, export.go, etc.)
// but all share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/pkordes/bookmarks/internal/domain"
)

// QueryServicer defines the read-side operations the list view depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type QueryServicer interface {
	QueryBookmarks(ctx context.Context, user domain.User, query, rawPage string) (domain.Page[domain.Bookmark], error)
	QueryTags(ctx context.Context, user domain.User, query string) ([]domain.Tag, error)
}

// BookmarkServicer defines the write-side operations the form views depend on.
type BookmarkServicer interface {
	Create(ctx context.Context, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error)
	Update(ctx context.Context, existing domain.Bookmark, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error)
	GetByID(ctx context.Context, id int64) (domain.Bookmark, error)
	Delete(ctx context.Context, id int64) error
}

// ExportServicer defines the operations the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, user domain.User) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go via NewRouter.
type Server struct {
	queries   QueryServicer
	bookmarks BookmarkServicer
	export    ExportServicer
	views     *Views
	log       *slog.Logger

	formMemory int64
}

// NewServer constructs the Server with all its dependencies.
func NewServer(queries QueryServicer, bookmarks BookmarkServicer, export ExportServicer, views *Views, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		queries:    queries,
		bookmarks:  bookmarks,
		export:     export,
		views:      views,
		log:        log,
		formMemory: defaultFormMemory,
	}
}
