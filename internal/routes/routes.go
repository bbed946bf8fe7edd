package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/01moynul/koodos-golang/internal/auth"
	"github.com/01moynul/koodos-golang/internal/handlers"
	"github.com/01moynul/koodos-golang/internal/middleware"
)

// Options carries the router settings that are not handler dependencies.
type Options struct {
	CORSOrigin string
	// UploadDir is served at /uploads when media is stored locally; empty disables it.
	UploadDir string
	Tokens    middleware.TokenValidator
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// CORS must run before anything that can abort the request.
	router.Use(middleware.CORSMiddleware(opts.CORSOrigin))
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})
		v1.GET("/ready", h.Readiness)

		// --- Public Content ---
		v1.GET("/articles", h.ListArticles)
		v1.GET("/articles/:slug", h.GetArticleBySlug)
		v1.GET("/articles/:slug/comments", h.GetArticleComments)
		v1.POST("/articles/:slug/comments", h.PostArticleComment)

		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/categories/:slug", h.GetCategoryBySlug)

		// --- Editorial Routes (editor or admin token) ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(opts.Tokens))
		admin.Use(middleware.RequireRole(auth.RoleEditor, auth.RoleAdmin))
		{
			admin.GET("/dashboard-stats", h.GetDashboardStats)

			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.GET("/articles", h.ListAdminArticles)
			admin.GET("/articles/:id", h.GetAdminArticle)
			admin.POST("/articles", h.CreateArticle)
			admin.PUT("/articles/:id", h.UpdateArticle)
			admin.DELETE("/articles/:id", h.DeleteArticle)

			admin.GET("/comments", h.GetModerationQueue)
			admin.PATCH("/comments/:id", h.ModerateComment)
			admin.DELETE("/comments/:id", h.DeleteComment)

			admin.POST("/uploads", h.UploadFile)
			admin.GET("/slugs/probe", h.ProbeSlug)

			seo := admin.Group("/seo")
			{
				seo.POST("/crawl", h.StartCrawl)
				seo.GET("/crawl/:id", h.GetCrawlJob)
				seo.GET("/pages", h.GetSeoPages)
				seo.GET("/pages/:id", h.GetSeoPage)
				seo.POST("/pages/:id/suggestions", h.GenerateSuggestion)
				seo.GET("/issues", h.GetSeoIssues)
				seo.GET("/suggestions", h.GetSuggestions)
				seo.PATCH("/suggestions/:id", h.ReviewSuggestion)
			}
		}
	}

	return router
}
