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

// TagRepo defines the persistence operations for Tags.
type TagRepo interface {
	// GetOrCreate returns the owner's tag whose name matches case-insensitively,
	// inserting it if there is none. The name of the first creator is preserved.
	GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (domain.Tag, error)

	// ListForFilter returns the distinct tags attached to the bookmarks that
	// match f, ordered by name case-insensitively.
	ListForFilter(ctx context.Context, f domain.BookmarkFilter) ([]domain.Tag, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// GetOrCreate inserts a tag or returns the existing row on conflict.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert — without it, RETURNING returns
// nothing on DO NOTHING conflicts.
func (r *pgTagRepo) GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (owner_id, name)
		VALUES (@owner_id, @name)
		ON CONFLICT (owner_id, lower(name)) DO UPDATE SET name = tags.name
		RETURNING id, owner_id, name, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "name": name})
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetOrCreate: %w", err)
	}
	return result, nil
}

// ListForFilter returns the tags used by the bookmarks matching f.
func (r *pgTagRepo) ListForFilter(ctx context.Context, f domain.BookmarkFilter) ([]domain.Tag, error) {
	where, args := filterClause(f)
	q := `
		SELECT tag.id, tag.owner_id, tag.name, tag.created_at
		FROM tags tag
		WHERE tag.id IN (
			SELECT link.tag_id
			FROM bookmark_tags link
			JOIN bookmarks b ON b.id = link.bookmark_id
			WHERE ` + where + `
		)
		ORDER BY lower(tag.name), tag.name`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListForFilter: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListForFilter: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListForFilter: rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t       domain.Tag
		id      pgtype.UUID
		ownerID pgtype.UUID
	)
	err := s.Scan(&id, &ownerID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(ownerID.Bytes)
	return t, nil
}
