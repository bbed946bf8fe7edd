package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/cache"
	"github.com/01moynul/koodos-golang/internal/jobs"
	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
	"github.com/01moynul/koodos-golang/internal/slugs"
	"github.com/01moynul/koodos-golang/internal/storage"
	"github.com/01moynul/koodos-golang/internal/store"
)

// Store is the persistence the handlers need. *store.Store implements it.
type Store interface {
	slugs.Exister

	ListCategories(ctx context.Context, vertical string) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	UpdateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListArticles(ctx context.Context, f models.ArticleFilter) ([]models.Article, int, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	GetPublishedArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	CreateArticle(ctx context.Context, a *models.Article) error
	UpdateArticle(ctx context.Context, a *models.Article) error
	DeleteArticle(ctx context.Context, id int64) error

	ListApprovedComments(ctx context.Context, articleID int64) ([]models.Comment, error)
	ListComments(ctx context.Context, status string, limit int) ([]models.Comment, error)
	CreateComment(ctx context.Context, cm *models.Comment) error
	SetCommentStatus(ctx context.Context, id int64, status string) error
	DeleteComment(ctx context.Context, id int64) error

	ListPages(ctx context.Context, limit, offset int) ([]models.SeoPage, int, error)
	GetPage(ctx context.Context, id int64) (*models.SeoPage, error)
	ListIssues(ctx context.Context, kind string) ([]models.SeoIssue, error)
	ListSuggestions(ctx context.Context, status string) ([]models.MetaSuggestion, error)
	GetCrawlJob(ctx context.Context, id int64) (*models.CrawlJob, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// CrawlStarter launches a background crawl. *jobs.CrawlRunner implements it.
type CrawlStarter interface {
	Start(ctx context.Context, baseURL string, maxPages int) (*models.CrawlJob, error)
}

// CrawlDefaults fill in a crawl request that omits its parameters.
type CrawlDefaults struct {
	BaseURL  string
	MaxPages int
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    Store
	Slugs    *slugs.Service
	Pipeline *seo.Pipeline
	Crawls   CrawlStarter
	Cache    cache.ArticleCache
	Media    storage.Store
	Crawl    CrawlDefaults
	Ready    func(ctx context.Context) error // nil means always ready
}

// respondError maps domain errors onto HTTP statuses. msg is used for
// unexpected errors so internals are not leaked.
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, seo.ErrSuggestionNotFound),
		errors.Is(err, seo.ErrPageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, seo.ErrSuggestionNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "Suggestion has already been reviewed"})
	case errors.Is(err, slugs.ErrDuplicateSlug):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug is already taken, please retry"})
	case errors.Is(err, jobs.ErrCrawlInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A crawl is already running"})
	case errors.Is(err, seo.ErrEditedTextRequired),
		errors.Is(err, seo.ErrInvalidDecision),
		errors.Is(err, slugs.ErrUnknownEntity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, slugs.ErrSlugGenerationExhausted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not find a free slug, choose a different name"})
	default:
		_ = c.Error(err)
		logger.Log.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// paramID reads a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// pagination reads ?page=&limit= with sane bounds.
func pagination(c *gin.Context) (limit, offset, page int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit, page
}

func reviewerID(c *gin.Context) string {
	return c.GetString("userID")
}
