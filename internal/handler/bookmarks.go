package handler

import (
	"context"
	"errors"
	"html/template"
	"net/url"
	"strconv"

	"github.com/pkordes/bookmarks/internal/domain"
)

// Redirect targets.
const (
	listPath  = "/bookmarks"
	newPath   = "/bookmarks/new"
	closePath = "/bookmarks/close"
)

// IndexParams are the bound ?q= and ?page= values of GET /bookmarks.
type IndexParams struct {
	Q    *string
	Page *string
}

// IndexRequest is the input of Index. Query is the full inbound query
// string; Index never modifies it.
type IndexRequest struct {
	User   domain.User
	Params IndexParams
	Query  url.Values
}

// IndexData is what the list view renders.
type IndexData struct {
	Page  domain.Page[domain.Bookmark]
	Tags  []domain.Tag
	Query string
	Empty bool
	// LinkParams is the inbound query minus "tag" and "page", for building
	// pagination links.
	LinkParams url.Values
}

// Index handles GET /bookmarks.
func (s *Server) Index(ctx context.Context, req IndexRequest) (Response, error) {
	query := deref(req.Params.Q)

	page, err := s.queries.QueryBookmarks(ctx, req.User, query, deref(req.Params.Page))
	if err != nil {
		return nil, err
	}
	tags, err := s.queries.QueryTags(ctx, req.User, query)
	if err != nil {
		return nil, err
	}

	return RenderResponse{Template: ViewIndex, Data: IndexData{
		Page:       page,
		Tags:       tags,
		Query:      query,
		Empty:      page.Total == 0,
		LinkParams: withoutKeys(req.Query, "tag", "page"),
	}}, nil
}

// FormData is what the new and edit views render.
type FormData struct {
	Form   domain.BookmarkForm
	Errors domain.FormErrors
	// AutoClose is the display state of the auto-close flag: whether the
	// auto_close key was present in the URL the form was requested with.
	AutoClose  bool
	BookmarkID int64
}

// NewParams are the bound URL query values of /bookmarks/new.
type NewParams struct {
	URL *string
	// AutoClose is true when the auto_close key is present at all.
	AutoClose bool
}

// NewRequest is the input of New. Body is nil for GET.
type NewRequest struct {
	User   domain.User
	Params NewParams
	Body   *domain.BookmarkForm
}

// New handles GET and POST /bookmarks/new.
//
// On success the redirect target follows the submitted auto_close field, while
// a re-rendered form keeps the display state taken from the URL. The two can
// disagree when a client edits the field before submitting.
func (s *Server) New(ctx context.Context, req NewRequest) (Response, error) {
	if req.Body == nil {
		return RenderResponse{Template: ViewNew, Data: FormData{
			Form:      domain.BookmarkForm{URL: deref(req.Params.URL)},
			AutoClose: req.Params.AutoClose,
		}}, nil
	}

	form := *req.Body
	autoClose := form.SubmittedAutoClose()

	in, err := form.Validate()
	if err != nil {
		var fe domain.FormErrors
		if errors.As(err, &fe) {
			return RenderResponse{Template: ViewNew, Data: FormData{
				Form:      form,
				Errors:    fe,
				AutoClose: req.Params.AutoClose,
			}}, nil
		}
		return nil, err
	}

	if _, err := s.bookmarks.Create(ctx, in, req.User); err != nil {
		return nil, err
	}

	if autoClose {
		return RedirectResponse{Location: closePath}, nil
	}
	return RedirectResponse{Location: listPath}, nil
}

// EditRequest is the input of Edit. Body is nil for GET.
type EditRequest struct {
	User domain.User
	ID   int64
	Body *domain.BookmarkForm
}

// Edit handles GET and POST /bookmarks/{id}/edit.
//
// TODO: the lookup is by id alone, so any signed-in user can edit any
// bookmark. Scope it to req.User once the intended behaviour is confirmed.
func (s *Server) Edit(ctx context.Context, req EditRequest) (Response, error) {
	b, err := s.bookmarks.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Body == nil {
		return RenderResponse{Template: ViewEdit, Data: FormData{
			Form:       domain.FormFromBookmark(b),
			BookmarkID: b.ID,
		}}, nil
	}

	form := *req.Body
	in, err := form.Validate()
	if err != nil {
		var fe domain.FormErrors
		if errors.As(err, &fe) {
			// The tag field shows the stored tags, not what was submitted.
			form.TagString = b.TagString()
			return RenderResponse{Template: ViewEdit, Data: FormData{
				Form:       form,
				Errors:     fe,
				BookmarkID: b.ID,
			}}, nil
		}
		return nil, err
	}

	if _, err := s.bookmarks.Update(ctx, b, in, req.User); err != nil {
		return nil, err
	}
	return RedirectResponse{Location: listPath}, nil
}

// RemoveRequest is the input of Remove.
type RemoveRequest struct {
	User domain.User
	ID   int64
}

// Remove handles GET and POST /bookmarks/{id}/remove. There is no
// confirmation step.
//
// TODO: like Edit, this does not check that req.User owns the bookmark.
func (s *Server) Remove(ctx context.Context, req RemoveRequest) (Response, error) {
	b, err := s.bookmarks.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.bookmarks.Delete(ctx, b.ID); err != nil {
		return nil, err
	}
	return RedirectResponse{Location: listPath}, nil
}

// BookmarkletRequest is the input of Bookmarklet. BaseURL is the scheme and
// host the request arrived on, e.g. "https://links.example.com".
type BookmarkletRequest struct {
	BaseURL string
}

// BookmarkletData is what the bookmarklet view renders.
type BookmarkletData struct {
	NewURL string
	Script template.URL
}

// Bookmarklet handles GET /bookmarks/bookmarklet.
func (s *Server) Bookmarklet(_ context.Context, req BookmarkletRequest) (Response, error) {
	newURL := req.BaseURL + newPath
	return RenderResponse{Template: ViewBookmarklet, Data: BookmarkletData{
		NewURL: newURL,
		Script: bookmarkletScript(newURL),
	}}, nil
}

// bookmarkletScript opens the new-bookmark form for the current page in a
// popup that closes itself after saving.
func bookmarkletScript(newURL string) template.URL {
	return template.URL("javascript:window.open(" +
		strconv.Quote(newURL+"?url=") +
		"+encodeURIComponent(window.location)+'&auto_close','bookmarks','width=640,height=560');void(0);")
}

// CloseRequest is the input of Close. It carries nothing.
type CloseRequest struct{}

// Close handles GET /bookmarks/close.
func (s *Server) Close(_ context.Context, _ CloseRequest) (Response, error) {
	return RenderResponse{Template: ViewClose}, nil
}

// withoutKeys returns a copy of v without the given keys.
func withoutKeys(v url.Values, keys ...string) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	for _, k := range keys {
		out.Del(k)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
