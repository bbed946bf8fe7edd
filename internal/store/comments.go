package store

import (
	"context"
	"fmt"

	"github.com/01moynul/koodos-golang/internal/models"
)

// ListApprovedComments returns the visible comments of an article, oldest first.
func (s *Store) ListApprovedComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, article_id, author_name, body, status, created_at
		FROM comments
		WHERE article_id = ? AND status = ?
		ORDER BY created_at ASC, id ASC`, articleID, models.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.ArticleID, &cm.AuthorName, &cm.Body, &cm.Status, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// ListComments is the moderation queue. An empty status lists everything.
func (s *Store) ListComments(ctx context.Context, status string, limit int) ([]models.Comment, error) {
	query := `
		SELECT cm.id, cm.article_id, cm.author_name, cm.body, cm.status, cm.created_at, a.title
		FROM comments cm
		JOIN articles a ON a.id = cm.article_id`
	var args []any
	if status != "" {
		query += " WHERE cm.status = ?"
		args = append(args, status)
	}
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY cm.created_at DESC, cm.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.ArticleID, &cm.AuthorName, &cm.Body, &cm.Status, &cm.CreatedAt, &cm.ArticleTitle); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (s *Store) CreateComment(ctx context.Context, cm *models.Comment) error {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO comments (article_id, author_name, body, status) VALUES (?, ?, ?, ?)`,
		cm.ArticleID, cm.AuthorName, cm.Body, cm.Status)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	cm.ID, err = res.LastInsertId()
	return err
}

func (s *Store) SetCommentStatus(ctx context.Context, id int64, status string) error {
	res, err := s.DB.ExecContext(ctx, "UPDATE comments SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireRow(res)
}
