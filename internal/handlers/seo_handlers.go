package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
)

//
// --- Crawl Jobs ---
//

// StartCrawl handles POST /v1/admin/seo/crawl
// The crawl runs in the background; poll GET /v1/admin/seo/crawl/:id.
func (h *Handlers) StartCrawl(c *gin.Context) {
	// An empty body means "use the configured defaults".
	var input models.StartCrawlInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.BaseURL == "" {
		input.BaseURL = h.Crawl.BaseURL
	}
	if input.MaxPages == 0 {
		input.MaxPages = h.Crawl.MaxPages
	}
	if input.BaseURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "baseUrl is required (no CRAWL_BASE_URL configured)"})
		return
	}

	job, err := h.Crawls.Start(c.Request.Context(), input.BaseURL, input.MaxPages)
	if err != nil {
		respondError(c, err, "Failed to start crawl")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// GetCrawlJob handles GET /v1/admin/seo/crawl/:id
func (h *Handlers) GetCrawlJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.Store.GetCrawlJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load crawl job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

//
// --- Pages & Issues ---
//

// GetSeoPages handles GET /v1/admin/seo/pages
func (h *Handlers) GetSeoPages(c *gin.Context) {
	limit, offset, page := pagination(c)
	pages, total, err := h.Store.ListPages(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages, "total": total, "page": page, "limit": limit})
}

// GetSeoPage handles GET /v1/admin/seo/pages/:id (with suggestions and issues)
func (h *Handlers) GetSeoPage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.Store.GetPage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// GetSeoIssues handles GET /v1/admin/seo/issues?kind=
func (h *Handlers) GetSeoIssues(c *gin.Context) {
	issues, err := h.Store.ListIssues(c.Request.Context(), c.Query("kind"))
	if err != nil {
		respondError(c, err, "Failed to list issues")
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

//
// --- Meta Suggestions ---
//

// GetSuggestions handles GET /v1/admin/seo/suggestions?status=
// Defaults to the pending review queue; status=all lists everything.
func (h *Handlers) GetSuggestions(c *gin.Context) {
	status := c.DefaultQuery("status", models.SuggestionPending)
	switch status {
	case "all":
		status = ""
	case models.SuggestionPending, models.SuggestionApproved, models.SuggestionEdited, models.SuggestionRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	suggestions, err := h.Store.ListSuggestions(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Failed to list suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ReviewSuggestion handles PATCH /v1/admin/seo/suggestions/:id
// Body: {"decision": "approved" | "edited" | "rejected", "editedText": "..."}
// The reviewer is the authenticated subject.
func (h *Handlers) ReviewSuggestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input models.ReviewSuggestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Apply the decision (pending check + page update are atomic) ---
	suggestion, err := h.Pipeline.Review(c.Request.Context(), seo.ReviewRequest{
		SuggestionID: id,
		Decision:     input.Decision,
		EditedText:   input.EditedText,
		Reviewer:     reviewerID(c),
	})
	if err != nil {
		respondError(c, err, "Failed to review suggestion")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion " + suggestion.Status, "suggestion": suggestion})
}
