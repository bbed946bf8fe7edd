package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/koodos-golang/internal/models"
)

const categoryColumns = "id, name, slug, vertical, description, parent_id, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var (
		cat      models.Category
		parentID sql.NullInt64
	)
	err := row.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Vertical, &cat.Description, &parentID, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cat.ParentID = int64Ptr(parentID)
	return &cat, nil
}

// ListCategories returns every category ordered by name, flat.
func (s *Store) ListCategories(ctx context.Context, vertical string) ([]models.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories"
	var args []any
	if vertical != "" {
		query += " WHERE vertical = ?"
		args = append(args, vertical)
	}
	query += " ORDER BY name ASC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *cat)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	cat, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err)
	}
	return cat, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug)
	cat, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err)
	}
	return cat, nil
}

// CreateCategory inserts cat and sets its ID. A taken slug yields slugs.ErrDuplicateSlug.
func (s *Store) CreateCategory(ctx context.Context, cat *models.Category) error {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO categories (name, slug, vertical, description, parent_id) VALUES (?, ?, ?, ?, ?)`,
		cat.Name, cat.Slug, cat.Vertical, cat.Description, nullInt64(cat.ParentID))
	if err != nil {
		return mapSlugConflict(err)
	}
	cat.ID, err = res.LastInsertId()
	return err
}

// UpdateCategory writes every mutable column of cat.
func (s *Store) UpdateCategory(ctx context.Context, cat *models.Category) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, vertical = ?, description = ?, parent_id = ? WHERE id = ?`,
		cat.Name, cat.Slug, cat.Vertical, cat.Description, nullInt64(cat.ParentID), cat.ID)
	if err != nil {
		return mapSlugConflict(err)
	}
	return requireRow(res)
}

// DeleteCategory removes a category. Children and articles are detached by
// the ON DELETE SET NULL foreign keys.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// requireRow maps "zero rows matched" to ErrNotFound. It relies on the
// clientFoundRows flag set by database.OpenDBWithDSN.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
