package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/koodos-golang/internal/database"
	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
	"github.com/01moynul/koodos-golang/internal/slugs"
	"github.com/01moynul/koodos-golang/internal/store"
)

// newTestStore connects to the MySQL database named by KOODOS_TEST_DSN and
// applies migrations. Tests are skipped when it is unset.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("KOODOS_TEST_DSN")
	if dsn == "" {
		t.Skip("KOODOS_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := database.OpenDBWithDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	for _, table := range []string{"seo_issues", "meta_suggestions", "seo_pages", "crawl_jobs", "comments", "articles", "categories"} {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	return store.New(db)
}

func TestStore_SlugsAgainstMySQL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	svc := slugs.NewService(st)

	first := &models.Category{Name: "Game Guides Test", Vertical: "games"}
	first.Slug, _ = svc.Assign(ctx, first.Name, slugs.EntityCategory, 0)
	require.NoError(t, st.CreateCategory(ctx, first))
	assert.Equal(t, "game-guides-test", first.Slug)

	second := &models.Category{Name: "Game guides: test", Vertical: "games"}
	var err error
	second.Slug, err = svc.Assign(ctx, second.Name, slugs.EntityCategory, 0)
	require.NoError(t, err)
	assert.Equal(t, "game-guides-test-1", second.Slug)

	// Self-update keeps the base slug.
	again, err := svc.Assign(ctx, first.Name, slugs.EntityCategory, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "game-guides-test", again)

	// The unique index backs up a lost race.
	clash := &models.Category{Name: "Clash", Slug: first.Slug, Vertical: "games"}
	require.ErrorIs(t, st.CreateCategory(ctx, clash), slugs.ErrDuplicateSlug)

	// Articles have their own namespace.
	exists, err := st.SlugExists(ctx, slugs.EntityArticle, "game-guides-test", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_ReviewAgainstMySQL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := &models.SeoPage{URL: "https://koodos.test/reviews/elden-ring", Title: "Elden Ring review", ContentHash: "h1"}
	changed, err := st.UpsertPage(ctx, page)
	require.NoError(t, err)
	require.True(t, changed)

	pipeline := seo.NewPipeline(nil, st)
	suggestion, err := pipeline.Propose(ctx, *page)
	require.NoError(t, err)

	_, err = pipeline.Review(ctx, seo.ReviewRequest{SuggestionID: suggestion.ID, Decision: models.SuggestionApproved, Reviewer: "editor-1"})
	require.NoError(t, err)

	got, err := st.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentMeta)
	assert.Equal(t, suggestion.Suggestion, *got.CurrentMeta)

	_, err = pipeline.Review(ctx, seo.ReviewRequest{SuggestionID: suggestion.ID, Decision: models.SuggestionRejected, Reviewer: "editor-2"})
	require.ErrorIs(t, err, seo.ErrSuggestionNotPending)

	// Stale write through the repository is refused by the status guard.
	err = st.ApplyReview(ctx, seo.AppliedReview{SuggestionID: suggestion.ID, PageID: page.ID, Status: models.SuggestionRejected, Reviewer: "editor-3"})
	require.ErrorIs(t, err, seo.ErrSuggestionNotPending)

	got, err = st.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, suggestion.Suggestion, *got.CurrentMeta)

	// Same content hash is not a change.
	changed, err = st.UpsertPage(ctx, &models.SeoPage{URL: page.URL, Title: "Elden Ring review", ContentHash: "h1"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_HasRunningCrawl(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	running, err := st.HasRunningCrawl(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, running)

	job, err := st.CreateCrawlJob(ctx, "https://koodos.test", 5)
	require.NoError(t, err)

	running, err = st.HasRunningCrawl(ctx, time.Hour)
	require.NoError(t, err)
	assert.True(t, running)

	// A row older than the window is treated as abandoned.
	_, err = st.DB.ExecContext(ctx, "UPDATE crawl_jobs SET created_at = NOW() - INTERVAL 3 HOUR WHERE id = ?", job.ID)
	require.NoError(t, err)
	running, err = st.HasRunningCrawl(ctx, time.Hour)
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, st.FinishCrawlJob(ctx, job.ID, models.CrawlCompleted, 5, ""))
	running, err = st.HasRunningCrawl(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, running)
}
