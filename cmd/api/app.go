package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/ai"
	"github.com/01moynul/koodos-golang/internal/cache"
	"github.com/01moynul/koodos-golang/internal/circuitbreaker"
	"github.com/01moynul/koodos-golang/internal/config"
	"github.com/01moynul/koodos-golang/internal/crawler"
	"github.com/01moynul/koodos-golang/internal/database"
	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/seo"
	"github.com/01moynul/koodos-golang/internal/storage"
	"github.com/01moynul/koodos-golang/internal/store"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	store    *store.Store
	pipeline *seo.Pipeline

	closers []func()
}

// bootstrap loads config, starts logging and connects to the database.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.OpenDBWithDSN(ctx, cfg.DBDSN)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Log.Info("Database connection established")

	a := &app{cfg: cfg, db: db, store: store.New(db)}
	a.closers = append(a.closers, func() { _ = db.Close() })
	return a, nil
}

// withPipeline wires the generation service (when configured) and the
// suggestion pipeline.
func (a *app) withPipeline(ctx context.Context) {
	var gen seo.Generator
	if a.cfg.GeminiAPIKey != "" {
		breaker := circuitbreaker.NewCircuitBreaker("gemini", a.cfg.BreakerThreshold, a.cfg.BreakerReset())
		svc, err := ai.NewAIService(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel, breaker)
		if err != nil {
			logger.Log.Warn("Generation service unavailable, suggestions will use templates", zap.Error(err))
		} else {
			gen = svc
			a.closers = append(a.closers, func() { _ = svc.Close() })
		}
	} else {
		logger.Log.Info("GEMINI_API_KEY not set, suggestions will use templates")
	}

	a.pipeline = seo.NewPipeline(gen, a.store, seo.WithGenerationTimeout(a.cfg.GenerationTimeout()))
}

func (a *app) newCrawler() *crawler.Crawler {
	var opts []crawler.Option
	if a.cfg.CrawlAutoSuggest {
		opts = append(opts, crawler.WithProposer(a.pipeline))
	}
	return crawler.New(a.store, a.store, opts...)
}

// articleCache connects to redis when REDIS_ADDR is set. A redis outage at
// startup degrades to no caching.
func (a *app) articleCache(ctx context.Context) cache.ArticleCache {
	if a.cfg.RedisAddr == "" {
		return cache.Noop{}
	}
	client, err := cache.Connect(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		logger.Log.Warn("Redis unavailable, article cache disabled", zap.Error(err))
		return cache.Noop{}
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	logger.Log.Info("Redis article cache enabled", zap.String("addr", a.cfg.RedisAddr))
	return cache.NewRedisArticleCache(client, a.cfg.CacheTTL())
}

// mediaStore returns the S3 store when a bucket is configured, else the
// local directory store. uploadDir is empty when S3 is used.
func (a *app) mediaStore() (media storage.Store, uploadDir string, err error) {
	if a.cfg.S3Bucket == "" {
		return storage.NewLocalStore(a.cfg.UploadDir, a.cfg.BaseURL), a.cfg.UploadDir, nil
	}
	s3Store, err := storage.NewS3Store(storage.S3Config{
		Bucket:    a.cfg.S3Bucket,
		Region:    a.cfg.S3Region,
		Endpoint:  a.cfg.S3Endpoint,
		AccessKey: a.cfg.S3AccessKey,
		SecretKey: a.cfg.S3SecretKey,
		PublicURL: a.cfg.MediaBaseURL,
	})
	if err != nil {
		return nil, "", fmt.Errorf("configure S3 storage: %w", err)
	}
	return s3Store, "", nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	logger.Sync()
}

const shutdownTimeout = 15 * time.Second
