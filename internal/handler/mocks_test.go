package handler_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/handler"
	"github.com/pkordes/bookmarks/internal/middleware"
	"github.com/pkordes/bookmarks/templates"
)

// ---- mock QueryServicer ----------------------------------------------------

type mockQueryServicer struct {
	queryBookmarks func(ctx context.Context, user domain.User, query, rawPage string) (domain.Page[domain.Bookmark], error)
	queryTags      func(ctx context.Context, user domain.User, query string) ([]domain.Tag, error)
}

func (m *mockQueryServicer) QueryBookmarks(ctx context.Context, user domain.User, query, rawPage string) (domain.Page[domain.Bookmark], error) {
	return m.queryBookmarks(ctx, user, query, rawPage)
}
func (m *mockQueryServicer) QueryTags(ctx context.Context, user domain.User, query string) ([]domain.Tag, error) {
	return m.queryTags(ctx, user, query)
}

// compile-time check: mockQueryServicer must satisfy handler.QueryServicer.
var _ handler.QueryServicer = (*mockQueryServicer)(nil)

// ---- mock BookmarkServicer -------------------------------------------------

type mockBookmarkServicer struct {
	create  func(ctx context.Context, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error)
	update  func(ctx context.Context, existing domain.Bookmark, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error)
	getByID func(ctx context.Context, id int64) (domain.Bookmark, error)
	delete  func(ctx context.Context, id int64) error
}

func (m *mockBookmarkServicer) Create(ctx context.Context, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error) {
	return m.create(ctx, in, user)
}
func (m *mockBookmarkServicer) Update(ctx context.Context, existing domain.Bookmark, in domain.BookmarkInput, user domain.User) (domain.Bookmark, error) {
	return m.update(ctx, existing, in, user)
}
func (m *mockBookmarkServicer) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookmarkServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockBookmarkServicer must satisfy handler.BookmarkServicer.
var _ handler.BookmarkServicer = (*mockBookmarkServicer)(nil)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func(ctx context.Context, user domain.User) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, user domain.User) ([]domain.ExportRow, error) {
	return m.export(ctx, user)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	alice = domain.User{ID: uuid.MustParse("7d6f4a57-7c53-4a8e-9d8e-4cbb9e1f0a01"), Username: "alice"}
	bob   = domain.User{ID: uuid.MustParse("0b1e8f5e-33a4-4f0c-8a77-2f5b1c9d7e02"), Username: "bob"}
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newServer wires a Server with the given mocks and the real templates.
// Pass nil for services the test does not exercise.
func newServer(t *testing.T, q handler.QueryServicer, b handler.BookmarkServicer, e handler.ExportServicer) *handler.Server {
	t.Helper()
	views, err := handler.ParseViews(templates.FS)
	require.NoError(t, err)
	return handler.NewServer(q, b, e, views, discardLog())
}

// signedIn stands in for middleware.NewRequireUser: every request is made by u.
func signedIn(u domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), u)))
		})
	}
}

// newHTTPHandler wires srv into the router as main.go does, signed in as alice.
func newHTTPHandler(srv *handler.Server) http.Handler {
	return handler.NewRouter(srv, handler.Middlewares{RequireUser: signedIn(alice)})
}

// bookmarkFixtures returns n bookmarks owned by owner, newest first.
func bookmarkFixtures(owner domain.User, n int) []domain.Bookmark {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domain.Bookmark, n)
	for i := range out {
		id := int64(n - i)
		out[i] = domain.Bookmark{
			ID:        id,
			OwnerID:   owner.ID,
			URL:       fmt.Sprintf("https://example.com/%d", id),
			Title:     fmt.Sprintf("Example %d", id),
			CreatedAt: base.Add(time.Duration(id) * time.Minute),
			UpdatedAt: base.Add(time.Duration(id) * time.Minute),
		}
	}
	return out
}

// pagingQueries pages through all the same way QueryService does.
func pagingQueries(all []domain.Bookmark, tags []domain.Tag) *mockQueryServicer {
	return &mockQueryServicer{
		queryBookmarks: func(_ context.Context, _ domain.User, _ string, rawPage string) (domain.Page[domain.Bookmark], error) {
			p := domain.ResolvePage(rawPage, domain.BookmarkPageSize, int64(len(all)))
			start := min(p.Offset(), len(all))
			end := min(start+p.Limit, len(all))
			return domain.NewPage(all[start:end], p, int64(len(all))), nil
		},
		queryTags: func(context.Context, domain.User, string) ([]domain.Tag, error) {
			if tags == nil {
				return []domain.Tag{}, nil
			}
			return tags, nil
		},
	}
}

func strPtr(s string) *string { return &s }
