package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/boutique/internal/domain"
)

// TagRepo defines the persistence operations for Tags.
type TagRepo interface {
	// List returns tags ordered by label. An empty category matches every
	// category and an empty prefix matches every label.
	List(ctx context.Context, category, prefix string) ([]domain.Tag, error)

	// GetByID retrieves a single tag.
	// Returns domain.ErrNotFound if no tag with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// Create inserts a tag. Returns domain.ErrConflict when the label is taken.
	Create(ctx context.Context, label, category string) (domain.Tag, error)

	// Update renames or recategorises a tag.
	// Returns domain.ErrNotFound or domain.ErrConflict.
	Update(ctx context.Context, t domain.Tag) (domain.Tag, error)

	// Delete removes a tag that no product references.
	// Returns domain.ErrInUse when it is still linked, domain.ErrNotFound when missing.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// List returns tags filtered by category and label prefix, ordered by label.
func (r *pgTagRepo) List(ctx context.Context, category, prefix string) ([]domain.Tag, error) {
	const q = `
		SELECT id, label, category, created_at
		FROM tags
		WHERE (@category = '' OR category = @category)
		  AND starts_with(label, @prefix)
		ORDER BY label`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"category": category, "prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.List: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: rows: %w", err)
	}
	return tags, nil
}

// GetByID retrieves a tag by primary key.
func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	const q = `
		SELECT id, label, category, created_at
		FROM tags
		WHERE id = @id`

	tag, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return tag, nil
}

// Create inserts a new tag row.
func (r *pgTagRepo) Create(ctx context.Context, label, category string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (label, category)
		VALUES (@label, @category)
		RETURNING id, label, category, created_at`

	tag, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"label": label, "category": category}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", mapPgError(err))
	}
	return tag, nil
}

// Update overwrites the label and category of a tag.
func (r *pgTagRepo) Update(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	const q = `
		UPDATE tags
		SET label    = @label,
		    category = @category
		WHERE id = @id
		RETURNING id, label, category, created_at`

	args := pgx.NamedArgs{"id": t.ID, "label": t.Label, "category": t.Category}
	tag, err := scanTag(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", mapPgError(err))
	}
	return tag, nil
}

// Delete removes a tag after checking that no product links to it. The
// foreign key still guards the race between the check and the delete.
func (r *pgTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const count = `SELECT count(*) FROM product_tags WHERE tag_id = @id`
	const del = `DELETE FROM tags WHERE id = @id`

	var n int64
	if err := r.db.QueryRow(ctx, count, pgx.NamedArgs{"id": id}).Scan(&n); err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: count: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w: used by %d products", domain.ErrInUse, n)
	}

	tag, err := r.db.Exec(ctx, del, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Label, &t.Category, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
