// Package cache keeps rendered public articles in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/models"
)

const keyPrefix = "koodos:article:"

// ArticleCache caches published articles by slug. Lookups never fail: a
// broken cache is treated as a miss.
type ArticleCache interface {
	Get(ctx context.Context, slug string) (*models.Article, bool)
	Set(ctx context.Context, article *models.Article)
	Invalidate(ctx context.Context, slugs ...string)
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type RedisArticleCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisArticleCache(client redis.UniversalClient, ttl time.Duration) *RedisArticleCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisArticleCache{client: client, ttl: ttl}
}

func Key(slug string) string {
	return keyPrefix + slug
}

func (r *RedisArticleCache) Get(ctx context.Context, slug string) (*models.Article, bool) {
	data, err := r.client.Get(ctx, Key(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Article cache read failed", zap.String("slug", slug), zap.Error(err))
		}
		return nil, false
	}

	var article models.Article
	if err := json.Unmarshal(data, &article); err != nil {
		logger.Log.Warn("Dropping unreadable cache entry", zap.String("slug", slug), zap.Error(err))
		r.Invalidate(ctx, slug)
		return nil, false
	}
	return &article, true
}

func (r *RedisArticleCache) Set(ctx context.Context, article *models.Article) {
	data, err := json.Marshal(article)
	if err != nil {
		logger.Log.Warn("Article cache encode failed", zap.String("slug", article.Slug), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, Key(article.Slug), data, r.ttl).Err(); err != nil {
		logger.Log.Warn("Article cache write failed", zap.String("slug", article.Slug), zap.Error(err))
	}
}

func (r *RedisArticleCache) Invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, Key(s))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Article cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Noop is used when REDIS_ADDR is empty.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Article, bool) { return nil, false }
func (Noop) Set(context.Context, *models.Article) {}
func (Noop) Invalidate(context.Context, ...string) {}
