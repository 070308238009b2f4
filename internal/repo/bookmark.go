// Package repo contains all database access logic for the bookmarks app.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/bookmarks/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BookmarkRepo defines the persistence operations for Bookmarks.
type BookmarkRepo interface {
	// Create inserts a new bookmark and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated). Tags are set
	// separately via SetTags.
	Create(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)

	// GetByID retrieves a bookmark by primary key, whoever owns it.
	// Returns domain.ErrNotFound if no bookmark with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Bookmark, error)

	// Update overwrites the mutable fields of a bookmark and returns the
	// updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error)

	// Delete removes a bookmark by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// Count returns how many bookmarks match the filter.
	Count(ctx context.Context, f domain.BookmarkFilter) (int64, error)

	// Search returns one page of bookmarks matching the filter, newest first.
	Search(ctx context.Context, f domain.BookmarkFilter, p domain.PaginationParams) ([]domain.Bookmark, error)

	// ListByOwner returns every bookmark the owner has, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Bookmark, error)

	// SetTags replaces the bookmark's tag links with exactly tagIDs.
	SetTags(ctx context.Context, bookmarkID int64, tagIDs []uuid.UUID) error
}

// pgBookmarkRepo is the Postgres implementation of BookmarkRepo.
type pgBookmarkRepo struct {
	db db
}

// NewBookmarkRepo constructs a BookmarkRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookmarkRepo(db db) BookmarkRepo {
	return &pgBookmarkRepo{db: db}
}

// bookmarkColumns selects a bookmark row plus its tag names, ordered the same
// way domain.ParseTagString orders them.
const bookmarkColumns = `
	b.id, b.owner_id, b.url, b.title, b.description,
	b.website_title, b.website_description, b.created_at, b.updated_at,
	COALESCE((
		SELECT array_agg(t.name ORDER BY lower(t.name))
		FROM bookmark_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id = b.id
	), '{}') AS tag_names`

// Create inserts a bookmark row and returns the full persisted record.
func (r *pgBookmarkRepo) Create(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	const q = `
		WITH b AS (
			INSERT INTO bookmarks (owner_id, url, title, description, website_title, website_description)
			VALUES (@owner_id, @url, @title, @description, @website_title, @website_description)
			RETURNING *
		)
		SELECT b.id, b.owner_id, b.url, b.title, b.description,
		       b.website_title, b.website_description, b.created_at, b.updated_at,
		       '{}'::text[]
		FROM b`

	row := r.db.QueryRow(ctx, q, bookmarkArgs(b))
	result, err := scanBookmark(row)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a bookmark by primary key.
func (r *pgBookmarkRepo) GetByID(ctx context.Context, id int64) (domain.Bookmark, error) {
	q := `SELECT ` + bookmarkColumns + ` FROM bookmarks b WHERE b.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBookmark(row)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.GetByID: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable fields of a bookmark. Tags are left untouched.
func (r *pgBookmarkRepo) Update(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	const update = `
		UPDATE bookmarks
		SET url                 = @url,
		    title               = @title,
		    description         = @description,
		    website_title       = @website_title,
		    website_description = @website_description,
		    updated_at          = now()
		WHERE id = @id`

	args := bookmarkArgs(b)
	args["id"] = b.ID

	tag, err := r.db.Exec(ctx, update, args)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Update: %w", domain.ErrNotFound)
	}

	result, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("repo.BookmarkRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a bookmark by primary key. Tag links go with it (ON DELETE CASCADE).
func (r *pgBookmarkRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM bookmarks WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BookmarkRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookmarkRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Count returns the number of bookmarks matching f.
func (r *pgBookmarkRepo) Count(ctx context.Context, f domain.BookmarkFilter) (int64, error) {
	where, args := filterClause(f)
	q := `SELECT count(*) FROM bookmarks b WHERE ` + where

	var n int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.BookmarkRepo.Count: %w", err)
	}
	return n, nil
}

// Search returns one page of bookmarks matching f, newest first.
func (r *pgBookmarkRepo) Search(ctx context.Context, f domain.BookmarkFilter, p domain.PaginationParams) ([]domain.Bookmark, error) {
	where, args := filterClause(f)
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	q := `SELECT ` + bookmarkColumns + `
		FROM bookmarks b
		WHERE ` + where + `
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.Search: %w", err)
	}
	return collectBookmarks(rows, "repo.BookmarkRepo.Search")
}

// ListByOwner returns every bookmark of ownerID, newest first.
func (r *pgBookmarkRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Bookmark, error) {
	q := `SELECT ` + bookmarkColumns + `
		FROM bookmarks b
		WHERE b.owner_id = @owner_id
		ORDER BY b.created_at DESC, b.id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookmarkRepo.ListByOwner: %w", err)
	}
	return collectBookmarks(rows, "repo.BookmarkRepo.ListByOwner")
}

// SetTags drops links not in tagIDs and adds the missing ones.
// Passing an empty slice removes every tag from the bookmark.
func (r *pgBookmarkRepo) SetTags(ctx context.Context, bookmarkID int64, tagIDs []uuid.UUID) error {
	ids := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = id.String()
	}
	args := pgx.NamedArgs{"bookmark_id": bookmarkID, "tag_ids": ids}

	const unlink = `
		DELETE FROM bookmark_tags
		WHERE bookmark_id = @bookmark_id
		  AND NOT (tag_id = ANY (@tag_ids::uuid[]))`
	if _, err := r.db.Exec(ctx, unlink, args); err != nil {
		return fmt.Errorf("repo.BookmarkRepo.SetTags: unlink: %w", err)
	}

	const link = `
		INSERT INTO bookmark_tags (bookmark_id, tag_id)
		SELECT @bookmark_id::bigint, unnest(@tag_ids::uuid[])
		ON CONFLICT (bookmark_id, tag_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, link, args); err != nil {
		return fmt.Errorf("repo.BookmarkRepo.SetTags: link: %w", err)
	}
	return nil
}

// bookmarkArgs maps the writable columns of b to named arguments.
func bookmarkArgs(b domain.Bookmark) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_id":            b.OwnerID,
		"url":                 b.URL,
		"title":               b.Title,
		"description":         b.Description,
		"website_title":       b.WebsiteTitle,
		"website_description": b.WebsiteDescription,
	}
}

// filterClause builds the WHERE clause (over alias b) and arguments for f.
// Every term gets its own named argument so user input never reaches the SQL text.
func filterClause(f domain.BookmarkFilter) (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{"owner_id": f.OwnerID}
	conds := []string{"b.owner_id = @owner_id"}

	words, tags := f.Terms()
	for i, w := range words {
		key := fmt.Sprintf("word%d", i)
		args[key] = "%" + escapeLike(w) + "%"
		conds = append(conds, fmt.Sprintf(`(
			b.url ILIKE @%[1]s
			OR b.title ILIKE @%[1]s
			OR b.description ILIKE @%[1]s
			OR b.website_title ILIKE @%[1]s
			OR b.website_description ILIKE @%[1]s
			OR EXISTS (
				SELECT 1 FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
				WHERE bt.bookmark_id = b.id AND t.name ILIKE @%[1]s
			))`, key))
	}
	for i, name := range tags {
		key := fmt.Sprintf("tag%d", i)
		args[key] = name
		conds = append(conds, fmt.Sprintf(`EXISTS (
				SELECT 1 FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
				WHERE bt.bookmark_id = b.id AND lower(t.name) = lower(@%s)
			)`, key))
	}

	return strings.Join(conds, " AND "), args
}

// escapeLike escapes the LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanBookmark maps a single row selected with bookmarkColumns into a domain.Bookmark.
func scanBookmark(s scanner) (domain.Bookmark, error) {
	var (
		b       domain.Bookmark
		ownerID pgtype.UUID
	)

	err := s.Scan(&b.ID, &ownerID, &b.URL, &b.Title, &b.Description,
		&b.WebsiteTitle, &b.WebsiteDescription, &b.CreatedAt, &b.UpdatedAt, &b.TagNames)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bookmark{}, domain.ErrNotFound
		}
		return domain.Bookmark{}, err
	}

	b.OwnerID = uuid.UUID(ownerID.Bytes)
	if b.TagNames == nil {
		b.TagNames = []string{}
	}
	return b, nil
}

// collectBookmarks drains rows into a non-nil slice and closes them.
func collectBookmarks(rows pgx.Rows, op string) ([]domain.Bookmark, error) {
	defer rows.Close()

	bookmarks := []domain.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return bookmarks, nil
}
