package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/koodos-golang/internal/models"
)

// --- Comment Moderation ---

// GetModerationQueue handles GET /v1/admin/comments?status=
// Defaults to pending comments; status=all lists everything.
func (h *Handlers) GetModerationQueue(c *gin.Context) {
	status := c.DefaultQuery("status", models.CommentStatusPending)
	switch status {
	case "all":
		status = ""
	case models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusSpam:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	limit, _, _ := pagination(c)
	comments, err := h.Store.ListComments(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// ModerateComment handles PATCH /v1/admin/comments/:id
// Body: {"action": "approve" | "spam"}
func (h *Handlers) ModerateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input models.ModerateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Update ---
	status := models.CommentStatusApproved
	if input.Action == "spam" {
		status = models.CommentStatusSpam
	}
	if err := h.Store.SetCommentStatus(c.Request.Context(), id, status); err != nil {
		respondError(c, err, "Failed to moderate comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated", "status": status})
}

// DeleteComment handles DELETE /v1/admin/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteComment(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
