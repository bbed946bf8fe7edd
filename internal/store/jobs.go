package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/koodos-golang/internal/models"
)

// CreateCrawlJob inserts a running job and returns it.
func (s *Store) CreateCrawlJob(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO crawl_jobs (base_url, max_pages, status) VALUES (?, ?, ?)",
		baseURL, maxPages, models.CrawlRunning)
	if err != nil {
		return nil, fmt.Errorf("insert crawl job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.CrawlJob{
		ID:        id,
		BaseURL:   baseURL,
		MaxPages:  maxPages,
		Status:    models.CrawlRunning,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Store) GetCrawlJob(ctx context.Context, id int64) (*models.CrawlJob, error) {
	var (
		job        models.CrawlJob
		errMsg     sql.NullString
		finishedAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, base_url, max_pages, status, pages_crawled, error, created_at, finished_at
		FROM crawl_jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.BaseURL, &job.MaxPages, &job.Status, &job.PagesCrawled, &errMsg, &job.CreatedAt, &finishedAt)
	if err != nil {
		return nil, notFound(err)
	}
	job.Error = stringPtr(errMsg)
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

// HasRunningCrawl reports whether a job started within the last staleAfter is
// still running. Older running rows belong to a process that died mid-crawl.
func (s *Store) HasRunningCrawl(ctx context.Context, staleAfter time.Duration) (bool, error) {
	var running bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM crawl_jobs
			WHERE status = ? AND created_at > NOW() - INTERVAL ? SECOND)`,
		models.CrawlRunning, int64(staleAfter/time.Second)).Scan(&running)
	if err != nil {
		return false, fmt.Errorf("check running crawls: %w", err)
	}
	return running, nil
}

// FinishCrawlJob implements crawler.JobStore.
func (s *Store) FinishCrawlJob(ctx context.Context, jobID int64, status string, pagesCrawled int, errMsg string) error {
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE crawl_jobs SET status = ?, pages_crawled = ?, error = ?, finished_at = UTC_TIMESTAMP()
		WHERE id = ?`, status, pagesCrawled, msg, jobID)
	if err != nil {
		return fmt.Errorf("finish crawl job: %w", err)
	}
	return requireRow(res)
}
