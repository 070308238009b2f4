package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkordes/bookmarks/internal/middleware"
)

// Response is what a handler asks the route wrapper to send.
type Response interface {
	VisitResponse(w http.ResponseWriter, r *http.Request, views *Views) error
}

// RenderResponse renders the named view with Data.
// A zero Status means 200.
type RenderResponse struct {
	Template string
	Status   int
	Data     any
}

// VisitResponse renders into a buffer first so a template failure can still
// turn into a clean 500.
func (resp RenderResponse) VisitResponse(w http.ResponseWriter, r *http.Request, views *Views) error {
	page := viewModel{Data: resp.Data}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		page.User = &u
	}

	var buf bytes.Buffer
	if err := views.Render(&buf, resp.Template, page); err != nil {
		return err
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RedirectResponse sends a 302 to Location.
type RedirectResponse struct {
	Location string
}

func (resp RedirectResponse) VisitResponse(w http.ResponseWriter, r *http.Request, _ *Views) error {
	http.Redirect(w, r, resp.Location, http.StatusFound)
	return nil
}

// JSONResponse writes Body as JSON with Status.
type JSONResponse struct {
	Status int
	Body   any
}

func (resp JSONResponse) VisitResponse(w http.ResponseWriter, _ *http.Request, _ *Views) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	return json.NewEncoder(w).Encode(resp.Body)
}

// FileResponse writes Body as a download named Filename.
type FileResponse struct {
	ContentType string
	Filename    string
	Body        []byte
}

func (resp FileResponse) VisitResponse(w http.ResponseWriter, _ *http.Request, _ *Views) error {
	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(resp.Body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(resp.Body)
	return err
}
