package handler

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/bookmarks/internal/domain"
)

// View names. Each page view is parsed together with base.html and the
// shared form.html; standalone views (the Netscape export) are parsed alone.
const (
	ViewIndex       = "index"
	ViewNew         = "new"
	ViewEdit        = "edit"
	ViewBookmarklet = "bookmarklet"
	ViewClose       = "close"
	ViewNotFound    = "not_found"
	ViewBadRequest  = "bad_request"
	ViewError       = "error"
	ViewNetscape    = "netscape"
)

var pageViews = []string{ViewIndex, ViewNew, ViewEdit, ViewBookmarklet, ViewClose, ViewNotFound, ViewBadRequest, ViewError}

var standaloneViews = []string{ViewNetscape}

// viewModel is what every page template receives.
type viewModel struct {
	User *domain.User
	Data any
}

// Views holds the parsed templates.
type Views struct {
	pages map[string]*template.Template
}

// ParseViews parses every view from fsys (normally templates.FS).
func ParseViews(fsys fs.FS) (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range pageViews {
		t, err := template.New(name).Funcs(viewFuncs).ParseFS(fsys, "base.html", "form.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler.ParseViews: %s: %w", name, err)
		}
		v.pages[name] = t.Lookup("base")
	}
	for _, name := range standaloneViews {
		t, err := template.New(name + ".html").Funcs(viewFuncs).ParseFS(fsys, name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler.ParseViews: %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes the named view into w.
func (v *Views) Render(w io.Writer, name string, data any) error {
	t, ok := v.pages[name]
	if !ok || t == nil {
		return fmt.Errorf("handler.Views.Render: unknown view %q", name)
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("handler.Views.Render: %s: %w", name, err)
	}
	return nil
}

var viewFuncs = template.FuncMap{
	"pageURL":  pageURL,
	"tagQuery": tagQuery,
	"date":     func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"join":     strings.Join,
}

// pageURL links to page n while keeping the other list parameters.
func pageURL(params url.Values, n int) string {
	v := url.Values{}
	for k, vals := range params {
		v[k] = append([]string(nil), vals...)
	}
	v.Set("page", strconv.Itoa(n))
	return "?" + v.Encode()
}

// tagQuery adds a "#name" term to query unless it is already there.
func tagQuery(query, name string) string {
	term := "#" + name
	for _, t := range strings.Fields(query) {
		if strings.EqualFold(t, term) {
			return query
		}
	}
	return strings.TrimSpace(query + " " + term)
}
