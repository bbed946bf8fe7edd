package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/render"
)

// GetArticleComments handles GET /v1/articles/:slug/comments (approved only)
func (h *Handlers) GetArticleComments(c *gin.Context) {
	article, err := h.Store.GetPublishedArticleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to load article")
		return
	}

	comments, err := h.Store.ListApprovedComments(c.Request.Context(), article.ID)
	if err != nil {
		respondError(c, err, "Failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// PostArticleComment handles POST /v1/articles/:slug/comments
// New comments wait in the moderation queue.
func (h *Handlers) PostArticleComment(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	author := render.PlainText(input.AuthorName)
	body := render.PlainText(input.Body)
	if author == "" || body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and comment text are required"})
		return
	}

	// 2. --- Check the article is public ---
	article, err := h.Store.GetPublishedArticleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to load article")
		return
	}

	// 3. --- Insert as pending ---
	comment := &models.Comment{
		ArticleID:  article.ID,
		AuthorName: author,
		Body:       body,
		Status:     models.CommentStatusPending,
	}
	if err := h.Store.CreateComment(c.Request.Context(), comment); err != nil {
		respondError(c, err, "Failed to save comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment submitted for moderation", "comment": comment})
}
