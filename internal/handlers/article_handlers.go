package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/render"
	"github.com/01moynul/koodos-golang/internal/slugs"
)

// --- Admin Article Handlers ---

// ListAdminArticles handles GET /v1/admin/articles (any status)
func (h *Handlers) ListAdminArticles(c *gin.Context) {
	limit, offset, page := pagination(c)
	filter := models.ArticleFilter{
		Status:       c.Query("status"),
		Vertical:     c.Query("vertical"),
		Kind:         c.Query("kind"),
		CategorySlug: c.Query("category"),
		Limit:        limit,
		Offset:       offset,
	}

	articles, total, err := h.Store.ListArticles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": total, "page": page, "limit": limit})
}

// GetAdminArticle handles GET /v1/admin/articles/:id
func (h *Handlers) GetAdminArticle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	article, err := h.Store.GetArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load article")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// CreateArticle handles POST /v1/admin/articles
func (h *Handlers) CreateArticle(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.CreateArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateArticleFields(input.Vertical, input.Kind, input.Rating); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// 2. --- Build the row ---
	article := &models.Article{
		CategoryID:    input.CategoryID,
		Kind:          input.Kind,
		Vertical:      input.Vertical,
		Title:         strings.TrimSpace(input.Title),
		Excerpt:       input.Excerpt,
		Body:          input.Body,
		CoverImageURL: input.CoverImageURL,
		Rating:        input.Rating,
		Status:        input.Status,
		AuthorID:      reviewerID(c),
	}
	if article.Status == models.ArticleStatusPublished {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	// 3. --- Assign slug + insert (one retry on a lost race) ---
	err := slugs.RetryOnDuplicate(c.Request.Context(), func(ctx context.Context) error {
		source := article.Title
		if strings.TrimSpace(input.Slug) != "" {
			source = input.Slug
		}
		slug, err := h.Slugs.Assign(ctx, source, slugs.EntityArticle, 0)
		if err != nil {
			return err
		}
		article.Slug = slug
		return h.Store.CreateArticle(ctx, article)
	})
	if err != nil {
		respondError(c, err, "Failed to create article")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Article created", "article": article})
}

// UpdateArticle handles PUT /v1/admin/articles/:id
func (h *Handlers) UpdateArticle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.UpdateArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		article *models.Article
		oldSlug string
		invalid string
	)
	err := slugs.RetryOnDuplicate(c.Request.Context(), func(ctx context.Context) error {
		current, err := h.Store.GetArticle(ctx, id)
		if err != nil {
			return err
		}
		oldSlug = current.Slug
		oldTitle := current.Title

		applyArticlePatch(current, input)
		if invalid = validateArticleFields(current.Vertical, current.Kind, current.Rating); invalid != "" {
			return nil
		}

		current.Slug, err = h.Slugs.ForUpdate(ctx, slugs.EntityArticle, slugs.UpdateRequest{
			ID:          current.ID,
			CurrentSlug: current.Slug,
			OldName:     oldTitle,
			NewName:     current.Title,
			Explicit:    input.Slug,
		})
		if err != nil {
			return err
		}

		article = current
		return h.Store.UpdateArticle(ctx, current)
	})
	if err != nil {
		respondError(c, err, "Failed to update article")
		return
	}
	if invalid != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), oldSlug, article.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Article updated", "article": article})
}

func applyArticlePatch(a *models.Article, in models.UpdateArticleInput) {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Vertical != nil {
		a.Vertical = *in.Vertical
	}
	if in.CategoryID != nil {
		a.CategoryID = in.CategoryID
	}
	if in.Excerpt != nil {
		a.Excerpt = *in.Excerpt
	}
	if in.Body != nil {
		a.Body = *in.Body
	}
	if in.CoverImageURL != nil {
		a.CoverImageURL = in.CoverImageURL
	}
	if in.Rating != nil {
		a.Rating = in.Rating
	}
	if in.Status != nil {
		if *in.Status == models.ArticleStatusPublished && a.PublishedAt == nil {
			now := time.Now().UTC()
			a.PublishedAt = &now
		}
		a.Status = *in.Status
	}
}

// validateArticleFields returns a client-facing message, or "" when valid.
func validateArticleFields(vertical, kind string, rating *float64) string {
	switch {
	case !models.IsKnownVertical(vertical):
		return "Unknown vertical"
	case kind == models.ArticleKindArticle && rating != nil:
		return "Only reviews carry a rating"
	}
	return ""
}

// DeleteArticle handles DELETE /v1/admin/articles/:id
func (h *Handlers) DeleteArticle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	article, err := h.Store.GetArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load article")
		return
	}
	if err := h.Store.DeleteArticle(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete article")
		return
	}

	h.Cache.Invalidate(c.Request.Context(), article.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted"})
}

// --- Public Article Handlers ---

// ListArticles handles GET /v1/articles (published only)
func (h *Handlers) ListArticles(c *gin.Context) {
	limit, offset, page := pagination(c)
	filter := models.ArticleFilter{
		Status:       models.ArticleStatusPublished,
		Vertical:     c.Query("vertical"),
		Kind:         c.Query("kind"),
		CategorySlug: c.Query("category"),
		Limit:        limit,
		Offset:       offset,
	}

	articles, total, err := h.Store.ListArticles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}
	// Listings carry excerpts, not bodies.
	for i := range articles {
		articles[i].Body = ""
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": total, "page": page, "limit": limit})
}

// GetArticleBySlug handles GET /v1/articles/:slug
func (h *Handlers) GetArticleBySlug(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	// 1. Cache first
	if article, ok := h.Cache.Get(ctx, slug); ok {
		c.JSON(http.StatusOK, gin.H{"article": article})
		return
	}

	// 2. Load + render
	article, err := h.Store.GetPublishedArticleBySlug(ctx, slug)
	if err != nil {
		respondError(c, err, "Failed to load article")
		return
	}
	article.BodyHTML, err = render.Markdown(article.Body)
	if err != nil {
		respondError(c, err, "Failed to render article")
		return
	}

	h.Cache.Set(ctx, article)
	c.JSON(http.StatusOK, gin.H{"article": article})
}
