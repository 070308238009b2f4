package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a user-defined label applied to bookmarks.
// Tags are scoped to an owner. Identity within an owner is the lower-cased
// name; Name preserves the casing supplied when the tag was first created.
type Tag struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TagNames returns the names of tags in their current order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
