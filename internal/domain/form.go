package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Field limits enforced by BookmarkForm.Validate. They mirror the column
// sizes in migrations/00001_init.sql.
const (
	MaxURLLength     = 2048
	MaxTitleLength   = 512
	MaxTagNameLength = 64
)

const invalidText = "Enter valid text; this value contains invalid characters."

var allowedSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "ftps": true}

// BookmarkForm holds the raw fields submitted by the bookmark create/edit form.
// It lives for one request: bind it, validate it, throw it away.
// The json tags name the form fields for the form binder.
type BookmarkForm struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TagString   string `json:"tag_string"`
	AutoClose   string `json:"auto_close"`
}

// BookmarkInput is a validated BookmarkForm.
type BookmarkInput struct {
	URL         string
	Title       string
	Description string
	TagNames    []string
}

// Validate checks the form and returns the cleaned input, or FormErrors
// keyed by field name. It has no side effects.
func (f BookmarkForm) Validate() (BookmarkInput, error) {
	errs := FormErrors{}

	in := BookmarkInput{
		URL:         strings.TrimSpace(f.URL),
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		TagNames:    ParseTagString(f.TagString),
	}

	if msg := validateURL(in.URL); msg != "" {
		errs["url"] = msg
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		errs["title"] = fmt.Sprintf("Ensure this value has at most %d characters.", MaxTitleLength)
	}
	// Postgres rejects invalid UTF-8, so it is a form error rather than a
	// failed save.
	for field, value := range map[string]string{
		"url":         f.URL,
		"title":       f.Title,
		"description": f.Description,
		"tag_string":  f.TagString,
	} {
		if !utf8.ValidString(value) {
			errs[field] = invalidText
		}
	}
	for _, name := range in.TagNames {
		if errs["tag_string"] != "" {
			break
		}
		if utf8.RuneCountInString(name) > MaxTagNameLength {
			errs["tag_string"] = fmt.Sprintf("Tag %q is longer than %d characters.", name, MaxTagNameLength)
			break
		}
	}

	if len(errs) > 0 {
		return BookmarkInput{}, errs
	}
	return in, nil
}

// SubmittedAutoClose reports whether the submitted auto_close field asks for
// the close page after saving. Any non-empty value counts except the usual
// spellings of false.
func (f BookmarkForm) SubmittedAutoClose() bool {
	v := strings.ToLower(strings.TrimSpace(f.AutoClose))
	switch v {
	case "", "false", "0", "off", "no":
		return false
	}
	return true
}

func validateURL(raw string) string {
	if raw == "" {
		return "This field is required."
	}
	if utf8.RuneCountInString(raw) > MaxURLLength {
		return fmt.Sprintf("Ensure this value has at most %d characters.", MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || !allowedSchemes[strings.ToLower(u.Scheme)] || u.Host == "" {
		return "Enter a valid URL."
	}
	return ""
}

// FormFromBookmark pre-populates a form from a stored bookmark, rendering its
// tags back into a space-delimited tag string.
func FormFromBookmark(b Bookmark) BookmarkForm {
	return BookmarkForm{
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		TagString:   b.TagString(),
	}
}
