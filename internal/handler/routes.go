package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/bookmarks/internal/domain"
	"github.com/pkordes/bookmarks/internal/middleware"
	"github.com/pkordes/bookmarks/spec"
)

// Middlewares are the per-route middlewares NewRouter applies. Global ones
// (request IDs, logging, panic recovery) are added by the caller.
type Middlewares struct {
	// RequireUser guards every /bookmarks route.
	RequireUser func(http.Handler) http.Handler
	// CORS wraps the export and the API description.
	CORS func(http.Handler) http.Handler
	// MaxBodySize limits form submissions.
	MaxBodySize func(http.Handler) http.Handler
	// MaxFormMemory is how much of a multipart form is held in memory; the
	// rest spills to temporary files. Zero means defaultFormMemory.
	MaxFormMemory int64
}

const defaultFormMemory = 1 << 20

// NewRouter registers every route on a new chi router.
// Nil middlewares are skipped.
func NewRouter(s *Server, mw Middlewares) chi.Router {
	mw.RequireUser = orPassthrough(mw.RequireUser)
	mw.CORS = orPassthrough(mw.CORS)
	mw.MaxBodySize = orPassthrough(mw.MaxBodySize)
	if mw.MaxFormMemory > 0 {
		s.formMemory = mw.MaxFormMemory
	}

	r := chi.NewRouter()
	r.NotFound(s.adapt(func(*http.Request) (Response, error) { return notFoundResponse(), nil }))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, listPath, http.StatusFound)
	})
	r.Get("/healthz", s.adapt(func(req *http.Request) (Response, error) {
		return s.Health(req.Context())
	}))

	r.With(mw.CORS).Get("/openapi.yaml", serveOpenAPI)
	r.With(mw.CORS).Options("/openapi.yaml", noContent)

	r.Route("/bookmarks", func(r chi.Router) {
		// Preflight requests carry no credentials, so answer them outside the guard.
		r.With(mw.CORS).Options("/export", noContent)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireUser, mw.MaxBodySize)

			r.Get("/", s.adapt(s.handleIndex))
			r.Get("/new", s.adapt(s.handleNew))
			r.Post("/new", s.adapt(s.handleNew))
			r.Get("/{id}/edit", s.adapt(s.handleEdit))
			r.Post("/{id}/edit", s.adapt(s.handleEdit))
			r.Get("/{id}/remove", s.adapt(s.handleRemove))
			r.Post("/{id}/remove", s.adapt(s.handleRemove))
			r.Get("/bookmarklet", s.adapt(s.handleBookmarklet))
			r.Get("/close", s.adapt(func(req *http.Request) (Response, error) {
				return s.Close(req.Context(), CloseRequest{})
			}))
			r.With(mw.CORS).Get("/export", s.adapt(s.handleExport))
		})
	})

	return r
}

func orPassthrough(m func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}

// adapt turns a binding function into an http.HandlerFunc that writes the
// returned Response, or the error page for a returned error.
func (s *Server) adapt(h func(*http.Request) (Response, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h(r)
		if err != nil {
			resp = s.errorResponse(r, err)
		}
		tw := &trackingWriter{ResponseWriter: w}
		if err := resp.VisitResponse(tw, r, s.views); err != nil {
			s.log.ErrorContext(r.Context(), "write response", "path", r.URL.Path, "error", err)
			if !tw.wroteHeader {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}
}

// trackingWriter records whether the status line has gone out, after which
// an error can only be logged.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (s *Server) handleIndex(r *http.Request) (Response, error) {
	user, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	var params IndexParams
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &params.Q); err != nil {
		return queryError(err), nil
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &params.Page); err != nil {
		return queryError(err), nil
	}
	return s.Index(r.Context(), IndexRequest{User: user, Params: params, Query: q})
}

func (s *Server) handleNew(r *http.Request) (Response, error) {
	user, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	var params NewParams
	if err := runtime.BindQueryParameter("form", true, false, "url", q, &params.URL); err != nil {
		return queryError(err), nil
	}
	_, params.AutoClose = q["auto_close"]

	req := NewRequest{User: user, Params: params}
	if r.Method == http.MethodPost {
		if req.Body, err = bindBookmarkForm(r, s.formMemory); err != nil {
			return formError(err), nil
		}
	}
	return s.New(r.Context(), req)
}

func (s *Server) handleEdit(r *http.Request) (Response, error) {
	user, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	id, err := bindID(r)
	if err != nil {
		return notFoundResponse(), nil
	}

	req := EditRequest{User: user, ID: id}
	if r.Method == http.MethodPost {
		if req.Body, err = bindBookmarkForm(r, s.formMemory); err != nil {
			return formError(err), nil
		}
	}
	return s.Edit(r.Context(), req)
}

func (s *Server) handleRemove(r *http.Request) (Response, error) {
	user, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	id, err := bindID(r)
	if err != nil {
		return notFoundResponse(), nil
	}
	return s.Remove(r.Context(), RemoveRequest{User: user, ID: id})
}

func (s *Server) handleBookmarklet(r *http.Request) (Response, error) {
	return s.Bookmarklet(r.Context(), BookmarkletRequest{BaseURL: baseURL(r)})
}

func (s *Server) handleExport(r *http.Request) (Response, error) {
	user, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	var params ExportParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		return badRequest(err), nil
	}
	return s.Export(r.Context(), ExportRequest{User: user, Params: params})
}

// requestUser returns the user RequireUser stored on the request.
func requestUser(r *http.Request) (domain.User, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return domain.User{}, fmt.Errorf("handler: no user on request: %w", domain.ErrUnauthenticated)
	}
	return u, nil
}

// bindID binds the {id} path parameter. Anything that is not an integer
// cannot name a bookmark, so callers answer 404.
func bindID(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return id, err
}

// bindBookmarkForm parses an urlencoded or multipart body into a BookmarkForm,
// keeping at most maxMemory bytes of a multipart body in memory.
func bindBookmarkForm(r *http.Request, maxMemory int64) (*domain.BookmarkForm, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	var form domain.BookmarkForm
	if err := runtime.BindForm(&form, r.PostForm, nil, nil); err != nil {
		return nil, err
	}
	return &form, nil
}

// formError answers a form body that could not be read: 413 when it was too
// large, 400 otherwise.
func formError(err error) Response {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return badRequestPage(http.StatusRequestEntityTooLarge, "Request too large",
			fmt.Sprintf("The submitted form is larger than %d bytes.", tooLarge.Limit))
	}
	return badRequestPage(http.StatusBadRequest, "Bad request", "The submitted form could not be read.")
}

func queryError(err error) Response {
	return badRequestPage(http.StatusBadRequest, "Bad request", err.Error())
}

// badRequest is the JSON rejection used by the export.
func badRequest(err error) Response {
	return JSONResponse{Status: http.StatusBadRequest, Body: requestBody(err.Error())}
}

// baseURL is the scheme and host the request arrived on. Behind a TLS
// terminating proxy the scheme comes from X-Forwarded-Proto.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

// serveOpenAPI serves the embedded API description.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

