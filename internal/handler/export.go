package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/pkordes/bookmarks/internal/domain"
)

// Export formats accepted by ?format=.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"id", "url", "title", "description", "tags", "created_at", "updated_at"}

// ExportParams are the bound query values of GET /bookmarks/export.
type ExportParams struct {
	Format *string
}

// ExportRequest is the input of Export.
type ExportRequest struct {
	User   domain.User
	Params ExportParams
}

// ExportBookmark is one bookmark in the JSON export.
type ExportBookmark struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Export handles GET /bookmarks/export.
// It returns every bookmark the user owns as a download. Use ?format=csv or
// ?format=html (Netscape bookmark file) for other formats; default is JSON.
func (s *Server) Export(ctx context.Context, req ExportRequest) (Response, error) {
	format := strings.ToLower(deref(req.Params.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV && format != FormatHTML {
		return JSONResponse{
			Status: http.StatusBadRequest,
			Body:   requestBody("format must be one of json, csv, html"),
		}, nil
	}

	rows, err := s.export.Export(ctx, req.User)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		body, err = buildCSV(rows)
		contentType = "text/csv; charset=utf-8"
	case FormatHTML:
		var buf bytes.Buffer
		err = s.views.Render(&buf, ViewNetscape, rows)
		body = buf.Bytes()
		contentType = "text/html; charset=utf-8"
	default:
		body, err = buildJSON(rows)
		contentType = "application/json"
	}
	if err != nil {
		return nil, err
	}

	return FileResponse{
		ContentType: contentType,
		Filename:    exportFilename(req.User, format),
		Body:        body,
	}, nil
}

// exportFilename is "<slugged username>-bookmarks.<format>".
func exportFilename(u domain.User, format string) string {
	name := "bookmarks." + format
	if s := slug.Make(u.Username); s != "" {
		name = s + "-" + name
	}
	return name
}

func buildJSON(rows []domain.ExportRow) ([]byte, error) {
	out := make([]ExportBookmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportBookmark{
			ID:          r.ID,
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Tags:        r.Tags,
			CreatedAt:   r.CreatedAt.UTC(),
			UpdatedAt:   r.UpdatedAt.UTC(),
		})
	}
	return json.Marshal(out)
}

// buildCSV encodes rows as CSV.
// Tags within a row are space-separated, the same as the tag string field.
func buildCSV(rows []domain.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(exportRowToCSVRecord(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.URL,
		r.Title,
		r.Description,
		domain.BuildTagString(r.Tags, " "),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
