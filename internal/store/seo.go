package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
)

const pageColumns = `id, url, title, current_meta, content_preview, content_hash, h1_count, status_code,
	last_crawled, created_at, updated_at`

func scanPage(row rowScanner) (*models.SeoPage, error) {
	var (
		p           models.SeoPage
		currentMeta sql.NullString
		lastCrawled sql.NullTime
	)
	err := row.Scan(&p.ID, &p.URL, &p.Title, &currentMeta, &p.ContentPreview, &p.ContentHash, &p.H1Count,
		&p.StatusCode, &lastCrawled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CurrentMeta = stringPtr(currentMeta)
	if lastCrawled.Valid {
		t := lastCrawled.Time
		p.LastCrawled = &t
	}
	return &p, nil
}

// UpsertPage implements crawler.PageStore. The crawled meta description only
// seeds current_meta for new pages; afterwards current_meta belongs to the
// review workflow.
func (s *Store) UpsertPage(ctx context.Context, page *models.SeoPage) (bool, error) {
	changed := false
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			id   int64
			hash string
		)
		err := tx.QueryRowContext(ctx,
			"SELECT id, content_hash FROM seo_pages WHERE url = ? FOR UPDATE", page.URL).Scan(&id, &hash)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx, `
				INSERT INTO seo_pages (url, title, current_meta, content_preview, content_hash, h1_count, status_code, last_crawled)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				page.URL, page.Title, page.CurrentMeta, page.ContentPreview, page.ContentHash,
				page.H1Count, page.StatusCode, page.LastCrawled)
			if err != nil {
				return fmt.Errorf("insert page: %w", err)
			}
			page.ID, err = res.LastInsertId()
			changed = true
			return err
		case err != nil:
			return fmt.Errorf("lock page: %w", err)
		}

		page.ID = id
		changed = hash != page.ContentHash
		_, err = tx.ExecContext(ctx, `
			UPDATE seo_pages
			SET title = ?, content_preview = ?, content_hash = ?, h1_count = ?, status_code = ?, last_crawled = ?
			WHERE id = ?`,
			page.Title, page.ContentPreview, page.ContentHash, page.H1Count, page.StatusCode, page.LastCrawled, id)
		if err != nil {
			return fmt.Errorf("update page: %w", err)
		}
		return nil
	})
	return changed, err
}

// ReplaceIssues swaps the page's issue list for issues.
func (s *Store) ReplaceIssues(ctx context.Context, pageID int64, issues []models.SeoIssue) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM seo_issues WHERE page_id = ?", pageID); err != nil {
			return fmt.Errorf("clear issues: %w", err)
		}
		for _, is := range issues {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO seo_issues (page_id, kind, severity, message) VALUES (?, ?, ?, ?)",
				pageID, is.Kind, is.Severity, is.Message)
			if err != nil {
				return fmt.Errorf("insert issue: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ListPages(ctx context.Context, limit, offset int) ([]models.SeoPage, int, error) {
	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM seo_pages").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pages: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM seo_pages ORDER BY url ASC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	out := []models.SeoPage{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan page: %w", err)
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// GetPage returns the page with its suggestions and issues attached.
func (s *Store) GetPage(ctx context.Context, id int64) (*models.SeoPage, error) {
	p, err := scanPage(s.DB.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM seo_pages WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seo.ErrPageNotFound
		}
		return nil, err
	}

	if p.Suggestions, err = s.querySuggestions(ctx, " WHERE ms.page_id = ?", id); err != nil {
		return nil, err
	}
	if p.Issues, err = s.queryIssues(ctx, " WHERE i.page_id = ?", id); err != nil {
		return nil, err
	}
	return p, nil
}

// ListIssues lists detected issues, optionally of one kind.
func (s *Store) ListIssues(ctx context.Context, kind string) ([]models.SeoIssue, error) {
	if kind == "" {
		return s.queryIssues(ctx, "")
	}
	return s.queryIssues(ctx, " WHERE i.kind = ?", kind)
}

func (s *Store) queryIssues(ctx context.Context, where string, args ...any) ([]models.SeoIssue, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT i.id, i.page_id, i.kind, i.severity, i.message, i.created_at, p.url
		FROM seo_issues i
		JOIN seo_pages p ON p.id = i.page_id`+where+`
		ORDER BY FIELD(i.severity, 'high', 'medium', 'low'), p.url ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	out := []models.SeoIssue{}
	for rows.Next() {
		var is models.SeoIssue
		if err := rows.Scan(&is.ID, &is.PageID, &is.Kind, &is.Severity, &is.Message, &is.CreatedAt, &is.PageURL); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		out = append(out, is)
	}
	return out, rows.Err()
}

const suggestionSelect = `
	SELECT ms.id, ms.page_id, ms.suggestion, ms.keywords, ms.confidence, ms.source, ms.status,
		ms.edited_text, ms.approved_by, ms.created_at, ms.updated_at, p.url
	FROM meta_suggestions ms
	JOIN seo_pages p ON p.id = ms.page_id`

func scanSuggestion(row rowScanner) (*models.MetaSuggestion, error) {
	var (
		ms         models.MetaSuggestion
		keywords   []byte
		editedText sql.NullString
		approvedBy sql.NullString
	)
	err := row.Scan(&ms.ID, &ms.PageID, &ms.Suggestion, &keywords, &ms.Confidence, &ms.Source, &ms.Status,
		&editedText, &approvedBy, &ms.CreatedAt, &ms.UpdatedAt, &ms.PageURL)
	if err != nil {
		return nil, err
	}
	if ms.Keywords, err = decodeKeywords(keywords); err != nil {
		return nil, err
	}
	ms.EditedText = stringPtr(editedText)
	ms.ApprovedBy = stringPtr(approvedBy)
	return &ms, nil
}

func encodeKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return json.Marshal(keywords)
}

func decodeKeywords(raw []byte) ([]string, error) {
	keywords := []string{}
	if len(raw) == 0 {
		return keywords, nil
	}
	if err := json.Unmarshal(raw, &keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	return keywords, nil
}

func (s *Store) querySuggestions(ctx context.Context, where string, args ...any) ([]models.MetaSuggestion, error) {
	rows, err := s.DB.QueryContext(ctx, suggestionSelect+where+" ORDER BY ms.created_at DESC, ms.id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	out := []models.MetaSuggestion{}
	for rows.Next() {
		ms, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, *ms)
	}
	return out, rows.Err()
}

// ListSuggestions filters by status; empty means all.
func (s *Store) ListSuggestions(ctx context.Context, status string) ([]models.MetaSuggestion, error) {
	if status == "" {
		return s.querySuggestions(ctx, "")
	}
	return s.querySuggestions(ctx, " WHERE ms.status = ?", status)
}

// CreateSuggestion implements seo.Repository.
func (s *Store) CreateSuggestion(ctx context.Context, ms *models.MetaSuggestion) error {
	keywords, err := encodeKeywords(ms.Keywords)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO meta_suggestions (page_id, suggestion, keywords, confidence, source, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ms.PageID, ms.Suggestion, keywords, ms.Confidence, ms.Source, ms.Status)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	ms.ID, err = res.LastInsertId()
	return err
}

// GetSuggestion implements seo.Repository.
func (s *Store) GetSuggestion(ctx context.Context, id int64) (*models.MetaSuggestion, error) {
	ms, err := scanSuggestion(s.DB.QueryRowContext(ctx, suggestionSelect+" WHERE ms.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seo.ErrSuggestionNotFound
		}
		return nil, err
	}
	return ms, nil
}

// ApplyReview implements seo.Repository. The status guard in the UPDATE makes
// the pending check and the write one atomic step; the page update commits
// with it or not at all.
func (s *Store) ApplyReview(ctx context.Context, r seo.AppliedReview) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE meta_suggestions
			SET status = ?, edited_text = ?, approved_by = ?
			WHERE id = ? AND status = ?`,
			r.Status, r.EditedText, r.Reviewer, r.SuggestionID, models.SuggestionPending)
		if err != nil {
			return fmt.Errorf("update suggestion: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return seo.ErrSuggestionNotPending
		}

		if r.PublishMeta == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE seo_pages SET current_meta = ? WHERE id = ?", *r.PublishMeta, r.PageID); err != nil {
			return fmt.Errorf("publish meta: %w", err)
		}
		return nil
	})
}
