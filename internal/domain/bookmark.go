// Package domain contains the core data types for the bookmarks application.
// It is imported by every other internal package (repo, service, handler) and
// depends on nothing inside this module.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved URL owned by exactly one user.
// WebsiteTitle and WebsiteDescription hold metadata scraped from the page
// itself; Title and Description are whatever the user typed.
type Bookmark struct {
	ID                 int64
	OwnerID            uuid.UUID
	URL                string
	Title              string
	Description        string
	WebsiteTitle       string
	WebsiteDescription string
	TagNames           []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayTitle is the user's title, falling back to the scraped title and
// finally to the URL.
func (b Bookmark) DisplayTitle() string {
	if t := strings.TrimSpace(b.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(b.WebsiteTitle); t != "" {
		return t
	}
	return b.URL
}

// DisplayDescription is the user's description, falling back to the scraped one.
func (b Bookmark) DisplayDescription() string {
	if d := strings.TrimSpace(b.Description); d != "" {
		return d
	}
	return strings.TrimSpace(b.WebsiteDescription)
}

// TagString renders the bookmark's tags as a single space-delimited string.
func (b Bookmark) TagString() string {
	return BuildTagString(b.TagNames, " ")
}

// BookmarkFilter selects a user's bookmarks by free-text query.
// Query terms are whitespace separated; a term starting with '#' matches a
// tag name exactly, any other term is a case-insensitive substring match
// against the URL, titles, descriptions and tag names. All terms must match.
type BookmarkFilter struct {
	OwnerID uuid.UUID
	Query   string
}

// Terms splits the query into plain search words and '#'-prefixed tag names.
// A bare "#" is ignored.
func (f BookmarkFilter) Terms() (words, tags []string) {
	for _, term := range strings.Fields(f.Query) {
		if strings.HasPrefix(term, "#") {
			if name := strings.TrimPrefix(term, "#"); name != "" {
				tags = append(tags, name)
			}
			continue
		}
		words = append(words, term)
	}
	return words, tags
}

// WebsiteMetadata is what the metadata loader could learn about a URL.
type WebsiteMetadata struct {
	Title       string
	Description string
}
