package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
)

// Scheduler starts a crawl on a standard five-field cron expression.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(spec string, runner *CrawlRunner, baseURL string, maxPages int) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("jobs: invalid cron schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithParser(parser))
	c.Schedule(schedule, cron.FuncJob(func() {
		job, err := runner.Start(context.Background(), baseURL, maxPages)
		switch {
		case errors.Is(err, ErrCrawlInProgress):
			logger.Log.Info("Scheduled crawl skipped, previous crawl still running")
		case err != nil:
			logger.Log.Error("Scheduled crawl could not start", zap.Error(err))
		default:
			logger.Log.Info("Scheduled crawl started", zap.Int64("job_id", job.ID), zap.String("base_url", baseURL))
		}
	}))

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running trigger to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
