package domain

import "time"

// ExportRow is a single bookmark in a full-data export.
// Title and Description are the display values, so scraped metadata is used
// when the user left the fields blank.
//
// Tags is ordered case-insensitively. Callers that need a joined string
// (e.g. CSV) should join with a delimiter of their choosing.
type ExportRow struct {
	ID          int64
	URL         string
	Title       string
	Description string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewExportRow flattens a bookmark for export.
func NewExportRow(b Bookmark) ExportRow {
	tags := b.TagNames
	if tags == nil {
		tags = []string{}
	}
	return ExportRow{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.DisplayTitle(),
		Description: b.DisplayDescription(),
		Tags:        tags,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
