// Package crawler discovers the pages of the public site, refreshes their
// SeoPage rows and records the on-page issues it finds.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/metrics"
	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
)

const (
	DefaultConcurrency = 4
	maxBodyBytes       = 5 << 20
	userAgent          = "KoodosSEOBot/1.0"
)

var (
	ErrInvalidBaseURL = errors.New("crawler: base url must be an absolute http(s) url")
	errNotHTML        = errors.New("crawler: response is not html")
	errOffSite        = errors.New("crawler: redirected off the crawled host")
)

// PageStore persists crawl results. UpsertPage sets page.ID and reports
// whether the page is new or its content hash changed.
type PageStore interface {
	UpsertPage(ctx context.Context, page *models.SeoPage) (changed bool, err error)
	ReplaceIssues(ctx context.Context, pageID int64, issues []models.SeoIssue) error
}

// JobStore closes out a crawl job.
type JobStore interface {
	FinishCrawlJob(ctx context.Context, jobID int64, status string, pagesCrawled int, errMsg string) error
}

// Proposer drafts a meta suggestion for a page. *seo.Pipeline satisfies it.
type Proposer interface {
	Propose(ctx context.Context, page models.SeoPage) (*models.MetaSuggestion, error)
}

type Crawler struct {
	client      *http.Client
	pages       PageStore
	jobs        JobStore
	proposer    Proposer
	concurrency int
	now         func() time.Time
}

type Option func(*Crawler)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) { c.client = client }
}

// WithProposer enables automatic suggestions for new and updated pages.
func WithProposer(p Proposer) Option {
	return func(c *Crawler) { c.proposer = p }
}

func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func New(pages PageStore, jobs JobStore, opts ...Option) *Crawler {
	c := &Crawler{
		client:      &http.Client{Timeout: 15 * time.Second},
		pages:       pages,
		jobs:        jobs,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run crawls baseURL breadth-first, staying on its host, until maxPages pages
// were stored or no unseen links remain. The job is always finished, as
// completed or failed; the returned error mirrors a failed job.
func (c *Crawler) Run(ctx context.Context, jobID int64, baseURL string, maxPages int) error {
	crawled, err := c.crawl(ctx, baseURL, maxPages)

	status, errMsg := models.CrawlCompleted, ""
	if err != nil {
		status, errMsg = models.CrawlFailed, err.Error()
	}

	// The job row is closed even when ctx was cancelled.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if ferr := c.jobs.FinishCrawlJob(finishCtx, jobID, status, crawled, errMsg); ferr != nil {
		logger.Log.Error("Failed to finish crawl job", zap.Int64("job_id", jobID), zap.Error(ferr))
		if err == nil {
			err = ferr
		}
	}

	metrics.CrawlJobs.WithLabelValues(status).Inc()
	logger.Log.Info("Crawl finished",
		zap.Int64("job_id", jobID),
		zap.String("status", status),
		zap.Int("pages_crawled", crawled))

	return err
}

func (c *Crawler) crawl(ctx context.Context, baseURL string, maxPages int) (int, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return 0, ErrInvalidBaseURL
	}
	if maxPages < 1 {
		maxPages = 1
	}

	host := strings.ToLower(base.Host)
	start := canonical(base)
	seen := map[string]struct{}{start: {}}
	level := []string{start}
	crawled := 0

	for len(level) > 0 && crawled < maxPages {
		if len(level) > maxPages-crawled {
			level = level[:maxPages-crawled]
		}

		results := make([]*pageResult, len(level))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i, u := range level {
			g.Go(func() error {
				res, err := c.visit(gctx, u, host)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					logger.Log.Warn("Skipping page", zap.String("url", u), zap.Error(err))
					res = &pageResult{err: err}
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return crawled, fmt.Errorf("crawl interrupted: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return crawled, fmt.Errorf("crawl interrupted: %w", err)
		}

		var next []string
		for i, res := range results {
			if res.err != nil {
				if crawled == 0 && level[i] == start {
					return 0, fmt.Errorf("fetch base url: %w", res.err)
				}
				continue
			}
			if res.stored {
				crawled++
			}
			if level[i] == start && res.statusCode >= http.StatusBadRequest {
				return crawled, fmt.Errorf("base url responded with HTTP %d", res.statusCode)
			}
			for _, link := range res.links {
				if _, ok := seen[link]; ok {
					continue
				}
				seen[link] = struct{}{}
				next = append(next, link)
			}
		}
		level = next
	}

	return crawled, nil
}

type pageResult struct {
	stored     bool
	statusCode int
	links      []string
	err        error
}

// visit fetches one page on host and stores what it finds. A page whose
// redirects end on another host is not stored.
func (c *Crawler) visit(ctx context.Context, pageURL, host string) (*pageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.CrawlPages.Inc()

	if !strings.EqualFold(resp.Request.URL.Host, host) {
		return nil, fmt.Errorf("%w: %s", errOffSite, resp.Request.URL.Host)
	}

	page := models.SeoPage{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
	}
	now := c.now().UTC()
	page.LastCrawled = &now

	var links []string
	if resp.StatusCode < http.StatusBadRequest {
		if !isHTML(resp.Header.Get("Content-Type")) {
			return nil, errNotHTML
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		found, err := extract(body, resp.Request.URL, host)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		page.Title = found.Title
		page.H1Count = found.H1Count
		page.ContentPreview = found.Preview
		if found.MetaDescription != "" {
			meta := found.MetaDescription
			page.CurrentMeta = &meta
		}
		links = found.Links
	}
	page.ContentHash = contentHash(page.ContentPreview)

	changed, err := c.pages.UpsertPage(ctx, &page)
	if err != nil {
		return nil, fmt.Errorf("store page: %w", err)
	}

	snapshot := seo.PageSnapshot{
		URL:        page.URL,
		Title:      page.Title,
		H1Count:    page.H1Count,
		StatusCode: page.StatusCode,
	}
	if page.CurrentMeta != nil {
		snapshot.MetaDescription = *page.CurrentMeta
	}
	if err := c.pages.ReplaceIssues(ctx, page.ID, seo.DetectIssues(snapshot)); err != nil {
		return nil, fmt.Errorf("store issues: %w", err)
	}

	if changed && c.proposer != nil && page.StatusCode < http.StatusBadRequest {
		if _, err := c.proposer.Propose(ctx, page); err != nil {
			logger.Log.Warn("Auto suggestion failed", zap.String("url", pageURL), zap.Error(err))
		}
	}

	return &pageResult{stored: true, statusCode: page.StatusCode, links: links}, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
