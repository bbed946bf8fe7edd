package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/slugs"
)

// --- Category Handlers ---

// CreateCategory handles POST /v1/admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsKnownVertical(input.Vertical) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vertical"})
		return
	}
	if input.ParentID != nil {
		if _, err := h.Store.GetCategory(c.Request.Context(), *input.ParentID); err != nil {
			respondError(c, err, "Failed to load parent category")
			return
		}
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Vertical:    input.Vertical,
		Description: input.Description,
		ParentID:    input.ParentID,
	}

	// 2. --- Assign the slug and insert, retrying once if a concurrent insert took it ---
	err := slugs.RetryOnDuplicate(c.Request.Context(), func(ctx context.Context) error {
		source := cat.Name
		if strings.TrimSpace(input.Slug) != "" {
			source = input.Slug
		}
		slug, err := h.Slugs.Assign(ctx, source, slugs.EntityCategory, 0)
		if err != nil {
			return err
		}
		cat.Slug = slug
		return h.Store.CreateCategory(ctx, cat)
	})
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

// UpdateCategory handles PUT /v1/admin/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Vertical != nil && !models.IsKnownVertical(*input.Vertical) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vertical"})
		return
	}
	if input.ParentID != nil && !input.ClearParent {
		cycle, err := h.isDescendant(c.Request.Context(), *input.ParentID, id)
		if err != nil {
			respondError(c, err, "Failed to load parent category")
			return
		}
		if cycle {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A category cannot be moved under itself or its descendants"})
			return
		}
	}

	var cat *models.Category
	err := slugs.RetryOnDuplicate(c.Request.Context(), func(ctx context.Context) error {
		// 1. Load the current row on every attempt so the slug is recomputed from fresh state
		current, err := h.Store.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		oldName := current.Name

		// 2. Apply the patch
		if input.Name != nil {
			current.Name = strings.TrimSpace(*input.Name)
		}
		if input.Vertical != nil {
			current.Vertical = *input.Vertical
		}
		if input.Description != nil {
			current.Description = *input.Description
		}
		if input.ClearParent {
			current.ParentID = nil
		} else if input.ParentID != nil {
			current.ParentID = input.ParentID
		}

		// 3. Recompute the slug (self-excluded)
		current.Slug, err = h.Slugs.ForUpdate(ctx, slugs.EntityCategory, slugs.UpdateRequest{
			ID:          current.ID,
			CurrentSlug: current.Slug,
			OldName:     oldName,
			NewName:     current.Name,
			Explicit:    input.Slug,
		})
		if err != nil {
			return err
		}

		cat = current
		return h.Store.UpdateCategory(ctx, current)
	})
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}

	h.invalidateCategoryArticles(c.Request.Context(), cat.Slug)
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": cat})
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cat, err := h.Store.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load category")
		return
	}
	// Collect affected articles before the foreign key detaches them.
	h.invalidateCategoryArticles(c.Request.Context(), cat.Slug)

	if err := h.Store.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// isDescendant walks up from candidate and reports whether it reaches
// ancestor. A category counts as its own descendant.
func (h *Handlers) isDescendant(ctx context.Context, candidate, ancestor int64) (bool, error) {
	visited := make(map[int64]bool)
	for current := &candidate; current != nil; {
		if *current == ancestor {
			return true, nil
		}
		if visited[*current] {
			// Existing data already loops without reaching ancestor.
			return false, nil
		}
		visited[*current] = true

		cat, err := h.Store.GetCategory(ctx, *current)
		if err != nil {
			return false, err
		}
		current = cat.ParentID
	}
	return false, nil
}

// invalidateCategoryArticles drops cached articles that embed the category slug.
func (h *Handlers) invalidateCategoryArticles(ctx context.Context, categorySlug string) {
	articles, _, err := h.Store.ListArticles(ctx, models.ArticleFilter{
		Status:       models.ArticleStatusPublished,
		CategorySlug: categorySlug,
		Limit:        1000,
	})
	if err != nil {
		logger.Log.Warn("Could not list category articles for cache invalidation",
			zap.String("category", categorySlug), zap.Error(err))
		return
	}
	slugList := make([]string, 0, len(articles))
	for _, a := range articles {
		slugList = append(slugList, a.Slug)
	}
	h.Cache.Invalidate(ctx, slugList...)
}

// GetAllCategories handles GET /v1/categories (public, returns a tree)
func (h *Handlers) GetAllCategories(c *gin.Context) {
	// 1. Fetch all categories flat
	allCats, err := h.Store.ListCategories(c.Request.Context(), c.Query("vertical"))
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": buildCategoryTree(allCats)})
}

// buildCategoryTree nests children under their parents and returns the roots.
// Categories whose parent is not in the list are treated as roots.
func buildCategoryTree(flat []models.Category) []models.Category {
	byID := make(map[int64]int, len(flat))
	for i := range flat {
		byID[flat[i].ID] = i
	}

	childrenOf := make(map[int64][]int)
	var roots []int
	for i, cat := range flat {
		if cat.ParentID != nil {
			if _, ok := byID[*cat.ParentID]; ok && *cat.ParentID != cat.ID {
				childrenOf[*cat.ParentID] = append(childrenOf[*cat.ParentID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	// Children are attached depth-first so grandchildren are included;
	// visited guards against parent cycles.
	visited := make(map[int64]bool, len(flat))
	var build func(i int) models.Category
	build = func(i int) models.Category {
		cat := flat[i]
		visited[cat.ID] = true
		cat.Children = []models.Category{}
		for _, ci := range childrenOf[cat.ID] {
			if visited[flat[ci].ID] {
				continue
			}
			cat.Children = append(cat.Children, build(ci))
		}
		return cat
	}

	tree := []models.Category{}
	for _, i := range roots {
		tree = append(tree, build(i))
	}
	return tree
}

// GetCategoryBySlug handles GET /v1/categories/:slug
func (h *Handlers) GetCategoryBySlug(c *gin.Context) {
	cat, err := h.Store.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to load category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// --- Slug Probe ---

// ProbeSlug handles GET /v1/admin/slugs/probe?slug=&entityType=&excludeId=
// It answers whether a candidate slug is already held by another entity.
func (h *Handlers) ProbeSlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}
	if !slugs.Valid(slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug must be lowercase letters, digits and single hyphens"})
		return
	}
	entity := slugs.EntityType(c.Query("entityType"))
	if !entity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entityType must be category or article"})
		return
	}

	var excludeID int64
	if raw := c.Query("excludeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid excludeId"})
			return
		}
		excludeID = id
	}

	exists, err := h.Store.SlugExists(c.Request.Context(), entity, slug, excludeID)
	if err != nil {
		respondError(c, err, "Failed to probe slug")
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
