// Package jobs starts crawl jobs, either on demand or on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/models"
)

var ErrCrawlInProgress = errors.New("jobs: a crawl is already running")

// StaleAfter is how long a running job row blocks new crawls. Rows older
// than this are left behind by a process that died mid-crawl.
const StaleAfter = 2 * time.Hour

// JobCreator records a new running crawl job. HasRunningCrawl lets
// processes sharing the database see each other's crawls.
type JobCreator interface {
	CreateCrawlJob(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error)
	HasRunningCrawl(ctx context.Context, staleAfter time.Duration) (bool, error)
}

// Crawler runs one crawl job to completion and finishes it.
type Crawler interface {
	Run(ctx context.Context, jobID int64, baseURL string, maxPages int) error
}

// CrawlRunner allows one crawl at a time per process.
type CrawlRunner struct {
	jobs    JobCreator
	crawler Crawler

	running atomic.Bool
	wg      sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewCrawlRunner(jobs JobCreator, crawler Crawler) *CrawlRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &CrawlRunner{jobs: jobs, crawler: crawler, baseCtx: ctx, cancel: cancel}
}

// Start creates a job and crawls in the background. The returned job is still running.
func (r *CrawlRunner) Start(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrCrawlInProgress
	}

	job, err := r.create(ctx, baseURL, maxPages)
	if err != nil {
		r.running.Store(false)
		return nil, err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Store(false)

		if err := r.crawler.Run(r.baseCtx, job.ID, baseURL, maxPages); err != nil {
			logger.Log.Warn("Crawl job failed", zap.Int64("job_id", job.ID), zap.Error(err))
		}
	}()

	return job, nil
}

// RunSync creates a job and crawls in the caller's goroutine.
func (r *CrawlRunner) RunSync(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrCrawlInProgress
	}
	defer r.running.Store(false)

	job, err := r.create(ctx, baseURL, maxPages)
	if err != nil {
		return nil, err
	}
	return job, r.crawler.Run(ctx, job.ID, baseURL, maxPages)
}

// create inserts the job unless another process is already crawling.
func (r *CrawlRunner) create(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error) {
	running, err := r.jobs.HasRunningCrawl(ctx, StaleAfter)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, ErrCrawlInProgress
	}
	return r.jobs.CreateCrawlJob(ctx, baseURL, maxPages)
}

// Shutdown cancels background crawls and waits for them to finish their job rows.
func (r *CrawlRunner) Shutdown(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
