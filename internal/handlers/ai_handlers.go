package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateSuggestion handles POST /v1/admin/seo/pages/:id/suggestions
// It drafts a new pending meta description for the page. A generation
// service outage is not an error here: the pipeline falls back to templates
// and reports a lower confidence.
func (h *Handlers) GenerateSuggestion(c *gin.Context) {
	// 1. Load the page
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.Store.GetPage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load page")
		return
	}

	// 2. Draft + store as pending
	suggestion, err := h.Pipeline.Propose(c.Request.Context(), *page)
	if err != nil {
		respondError(c, err, "Failed to create suggestion")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"suggestion": suggestion})
}
