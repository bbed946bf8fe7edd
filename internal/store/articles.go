package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/koodos-golang/internal/models"
)

const articleColumns = `a.id, a.category_id, a.kind, a.vertical, a.title, a.slug, a.excerpt, a.body,
	a.cover_image_url, a.rating, a.status, a.author_id, a.published_at, a.created_at, a.updated_at,
	COALESCE(c.slug, '')`

const articleFrom = " FROM articles a LEFT JOIN categories c ON c.id = a.category_id"

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a           models.Article
		categoryID  sql.NullInt64
		coverImage  sql.NullString
		rating      sql.NullFloat64
		publishedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &categoryID, &a.Kind, &a.Vertical, &a.Title, &a.Slug, &a.Excerpt, &a.Body,
		&coverImage, &rating, &a.Status, &a.AuthorID, &publishedAt, &a.CreatedAt, &a.UpdatedAt,
		&a.CategorySlug)
	if err != nil {
		return nil, err
	}
	a.CategoryID = int64Ptr(categoryID)
	a.CoverImageURL = stringPtr(coverImage)
	if rating.Valid {
		r := rating.Float64
		a.Rating = &r
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	return &a, nil
}

func articleWhere(f models.ArticleFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "a.status = ?")
		args = append(args, f.Status)
	}
	if f.Vertical != "" {
		conds = append(conds, "a.vertical = ?")
		args = append(args, f.Vertical)
	}
	if f.Kind != "" {
		conds = append(conds, "a.kind = ?")
		args = append(args, f.Kind)
	}
	if f.CategorySlug != "" {
		conds = append(conds, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListArticles returns one page of articles matching f, newest first, and the
// total number of matches.
func (s *Store) ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.Article, int, error) {
	where, args := articleWhere(f)

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+articleFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + articleColumns + articleFrom + where +
		" ORDER BY COALESCE(a.published_at, a.created_at) DESC, a.id DESC LIMIT ? OFFSET ?"
	rows, err := s.DB.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	out := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (s *Store) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+articleColumns+articleFrom+" WHERE a.id = ?", id)
	a, err := scanArticle(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetPublishedArticleBySlug only sees articles with status published.
func (s *Store) GetPublishedArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT "+articleColumns+articleFrom+" WHERE a.slug = ? AND a.status = ?", slug, models.ArticleStatusPublished)
	a, err := scanArticle(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) CreateArticle(ctx context.Context, a *models.Article) error {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO articles
			(category_id, kind, vertical, title, slug, excerpt, body, cover_image_url, rating, status, author_id, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(a.CategoryID), a.Kind, a.Vertical, a.Title, a.Slug, a.Excerpt, a.Body,
		a.CoverImageURL, a.Rating, a.Status, a.AuthorID, a.PublishedAt)
	if err != nil {
		return mapSlugConflict(err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateArticle(ctx context.Context, a *models.Article) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE articles SET
			category_id = ?, vertical = ?, title = ?, slug = ?, excerpt = ?, body = ?,
			cover_image_url = ?, rating = ?, status = ?, published_at = ?
		WHERE id = ?`,
		nullInt64(a.CategoryID), a.Vertical, a.Title, a.Slug, a.Excerpt, a.Body,
		a.CoverImageURL, a.Rating, a.Status, a.PublishedAt, a.ID)
	if err != nil {
		return mapSlugConflict(err)
	}
	return requireRow(res)
}

func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return requireRow(res)
}
