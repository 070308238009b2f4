package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Users are created on first sight of a
// username presented by the authentication proxy.
type User struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}
