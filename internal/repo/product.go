// Package repo contains all database access logic for the Boutique API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so multi-statement writes still nest correctly.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProductRepo defines the persistence operations for Products and their tag links.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type ProductRepo interface {
	// List returns every product with its tags, oldest first.
	List(ctx context.Context) ([]domain.Product, error)

	// ListByIDs returns the products among ids that exist, with their tags.
	// Duplicate and unknown IDs are ignored.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)

	// GetByID retrieves a single product with its tags.
	// Returns domain.ErrNotFound if no product with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)

	// Create inserts a product and links it to refs, connecting to existing
	// tags by label and creating the missing ones. The whole write is atomic.
	Create(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error)

	// Update overwrites the mutable fields of a product and replaces its tag
	// links with refs. The image fields are left untouched.
	// Returns domain.ErrNotFound if no product with that ID exists.
	Update(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error)

	// Delete removes a product (and its tag links) and returns the deleted
	// record so the caller can clean up its image.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

// pgProductRepo is the Postgres implementation of ProductRepo.
type pgProductRepo struct {
	db db
}

// NewProductRepo constructs a ProductRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewProductRepo(db db) ProductRepo {
	return &pgProductRepo{db: db}
}

const productColumns = `id, name, description, price::text, image, image_blurhash, created_at, updated_at`

// List returns all products ordered by created_at ascending.
func (r *pgProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at, id`

	products, err := r.query(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.ProductRepo.List: %w", err)
	}
	return products, nil
}

// ListByIDs returns the existing products among ids.
func (r *pgProductRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	const q = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY(@ids::uuid[])
		ORDER BY created_at, id`

	products, err := r.query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.ProductRepo.ListByIDs: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product by primary key.
func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	const q = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = @id`

	p, err := scanProduct(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.GetByID: %w", err)
	}
	if err := attachTags(ctx, r.db, []*domain.Product{&p}); err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.GetByID: %w", err)
	}
	return p, nil
}

// Create inserts the product row and its tag links in one transaction.
func (r *pgProductRepo) Create(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error) {
	const q = `
		INSERT INTO products (name, description, price, image, image_blurhash)
		VALUES (@name, @description, @price::numeric, @image, @image_blurhash)
		RETURNING ` + productColumns

	var created domain.Product
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price.String(),
			"image":          p.Image,
			"image_blurhash": p.ImageBlurHash,
		}
		var err error
		created, err = scanProduct(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		created.Tags, err = linkTags(ctx, tx, created.ID, refs)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Create: %w", mapPgError(err))
	}
	return created, nil
}

// Update rewrites the product row and replaces its tag links in one transaction.
func (r *pgProductRepo) Update(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error) {
	const q = `
		UPDATE products
		SET name        = @name,
		    description = @description,
		    price       = @price::numeric,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + productColumns

	var updated domain.Product
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price.String(),
		}
		var err error
		updated, err = scanProduct(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_tags WHERE product_id = @id`, pgx.NamedArgs{"id": p.ID}); err != nil {
			return err
		}
		updated.Tags, err = linkTags(ctx, tx, updated.ID, refs)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Update: %w", mapPgError(err))
	}
	return updated, nil
}

// Delete removes a product by primary key. Tag links go with it through
// ON DELETE CASCADE; tags themselves are kept.
func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	const q = `
		DELETE FROM products
		WHERE id = @id
		RETURNING ` + productColumns

	deleted, err := scanProduct(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Delete: %w", err)
	}
	return deleted, nil
}

// query runs a product SELECT and attaches tags to every row.
func (r *pgProductRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	ptrs := make([]*domain.Product, len(products))
	for i := range products {
		ptrs[i] = &products[i]
	}
	if err := attachTags(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	return products, nil
}

// attachTags loads the tags of every product in one query, ordered by
// category then label.
func attachTags(ctx context.Context, q db, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		p.Tags = []domain.Tag{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	const sel = `
		SELECT pt.product_id, t.id, t.label, t.category, t.created_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id = ANY(@ids::uuid[])
		ORDER BY t.category, t.label`

	rows, err := q.Query(ctx, sel, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID pgtype.UUID
			tagID     pgtype.UUID
			t         domain.Tag
		)
		if err := rows.Scan(&productID, &tagID, &t.Label, &t.Category, &t.CreatedAt); err != nil {
			return fmt.Errorf("tags: scan: %w", err)
		}
		t.ID = uuid.UUID(tagID.Bytes)
		if p, ok := byID[uuid.UUID(productID.Bytes)]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tags: rows: %w", err)
	}
	return nil
}

// linkTags connects productID to a tag per ref, creating tags that do not
// exist yet. An existing tag keeps its category. Refs repeating a label are
// linked once.
func linkTags(ctx context.Context, tx pgx.Tx, productID uuid.UUID, refs []domain.TagRef) ([]domain.Tag, error) {
	// The DO UPDATE SET trick forces RETURNING to fire on conflict too.
	const upsert = `
		INSERT INTO tags (label, category)
		VALUES (@label, @category)
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id, label, category, created_at`
	const link = `
		INSERT INTO product_tags (product_id, tag_id)
		VALUES (@product_id, @tag_id)
		ON CONFLICT (product_id, tag_id) DO NOTHING`

	tags := []domain.Tag{}
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.Label]; dup {
			continue
		}
		seen[ref.Label] = struct{}{}

		t, err := scanTag(tx.QueryRow(ctx, upsert, pgx.NamedArgs{"label": ref.Label, "category": ref.Category}))
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", ref.Label, err)
		}
		if _, err := tx.Exec(ctx, link, pgx.NamedArgs{"product_id": productID, "tag_id": t.ID}); err != nil {
			return nil, fmt.Errorf("link tag %q: %w", ref.Label, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct maps a single database row into a domain.Product without tags.
// price is selected as text so that no precision is lost on the way to decimal.
func scanProduct(s scanner) (domain.Product, error) {
	var (
		p     domain.Product
		id    pgtype.UUID
		price string
	)

	err := s.Scan(&id, &p.Name, &p.Description, &price, &p.Image, &p.ImageBlurHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Tags = []domain.Tag{}
	return p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
