package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/bookmarks/internal/domain"
)

// UserRepo defines the persistence operations for Users.
type UserRepo interface {
	// GetOrCreate returns the user with username, inserting it on first sight.
	GetOrCreate(ctx context.Context, username string) (domain.User, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) GetOrCreate(ctx context.Context, username string) (domain.User, error) {
	const q = `
		INSERT INTO users (username)
		VALUES (@username)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at`

	var (
		u  domain.User
		id pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}).Scan(&id, &u.Username, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetOrCreate: %w", err)
	}
	u.ID = uuid.UUID(id.Bytes)
	return u, nil
}
