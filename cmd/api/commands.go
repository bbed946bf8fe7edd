package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/auth"
	"github.com/01moynul/koodos-golang/internal/config"
	"github.com/01moynul/koodos-golang/internal/database"
	"github.com/01moynul/koodos-golang/internal/handlers"
	"github.com/01moynul/koodos-golang/internal/jobs"
	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/routes"
	"github.com/01moynul/koodos-golang/internal/slugs"
)

// serveAction runs the HTTP API until SIGINT or SIGTERM.
func serveAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Config, logging, database ---
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Migrate(ctx, a.db); err != nil {
		return err
	}

	// 2. --- Services ---
	tokens, err := auth.NewTokenManager(a.cfg.JWTSecret)
	if err != nil {
		return err
	}
	a.withPipeline(ctx)

	media, uploadDir, err := a.mediaStore()
	if err != nil {
		return err
	}

	runner := jobs.NewCrawlRunner(a.store, a.newCrawler())

	// 3. --- Background Workers (Cron) ---
	var scheduler *jobs.Scheduler
	if a.cfg.CrawlSchedule != "" {
		if a.cfg.CrawlBaseURL == "" {
			return errors.New("CRAWL_SCHEDULE requires CRAWL_BASE_URL")
		}
		scheduler, err = jobs.NewScheduler(a.cfg.CrawlSchedule, runner, a.cfg.CrawlBaseURL, a.cfg.CrawlMaxPages)
		if err != nil {
			return err
		}
		scheduler.Start()
		logger.Log.Info("Crawl scheduler started", zap.String("schedule", a.cfg.CrawlSchedule))
	}

	// 4. --- Application Setup ---
	h := &handlers.Handlers{
		Store:    a.store,
		Slugs:    slugs.NewService(a.store, slugs.WithMaxAttempts(a.cfg.SlugMaxAttempts)),
		Pipeline: a.pipeline,
		Crawls:   runner,
		Cache:    a.articleCache(ctx),
		Media:    media,
		Ready:    database.Healthcheck(a.db),
		Crawl: handlers.CrawlDefaults{
			BaseURL:  a.cfg.CrawlBaseURL,
			MaxPages: a.cfg.CrawlMaxPages,
		},
	}

	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(h, routes.Options{
		CORSOrigin: a.cfg.CORSOrigin,
		UploadDir:  uploadDir,
		Tokens:     tokens,
	})

	// 5. --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Starting KOODOS API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	// 6. --- Graceful Shutdown ---
	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Log.Warn("Scheduler stop incomplete", zap.Error(err))
		}
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Crawl runner shutdown incomplete", zap.Error(err))
	}
	return nil
}

// migrateAction applies pending migrations and exits.
func migrateAction(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Migrate(c.Context, a.db); err != nil {
		return err
	}
	logger.Log.Info("Migrations applied")
	return nil
}

// crawlAction runs one crawl in the foreground.
func crawlAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	a.withPipeline(ctx)

	baseURL := c.String("base-url")
	if baseURL == "" {
		baseURL = a.cfg.CrawlBaseURL
	}
	if baseURL == "" {
		return errors.New("--base-url or CRAWL_BASE_URL is required")
	}
	maxPages := c.Int("max-pages")
	if maxPages <= 0 {
		maxPages = a.cfg.CrawlMaxPages
	}

	runner := jobs.NewCrawlRunner(a.store, a.newCrawler())
	job, err := runner.RunSync(ctx, baseURL, maxPages)
	if job != nil {
		fmt.Fprintf(c.App.Writer, "crawl job %d finished\n", job.ID)
	}
	return err
}

// tokenAction prints a signed token for local development.
func tokenAction(c *cli.Context) error {
	role := c.String("role")
	if role != auth.RoleEditor && role != auth.RoleAdmin {
		return fmt.Errorf("role must be %q or %q", auth.RoleEditor, auth.RoleAdmin)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(c.String("sub"), role, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
