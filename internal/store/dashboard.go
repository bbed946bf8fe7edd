package store

import (
	"context"
	"fmt"

	"github.com/01moynul/koodos-golang/internal/models"
)

// DashboardStats gathers the editorial counters shown on the admin home page.
func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var st models.DashboardStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM articles WHERE status = 'published'),
			(SELECT COUNT(*) FROM articles WHERE status = 'draft'),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM comments WHERE status = 'pending'),
			(SELECT COUNT(*) FROM seo_pages),
			(SELECT COUNT(*) FROM seo_issues),
			(SELECT COUNT(*) FROM meta_suggestions WHERE status = 'pending')`).
		Scan(&st.PublishedArticles, &st.DraftArticles, &st.Categories, &st.PendingComments,
			&st.SeoPages, &st.OpenIssues, &st.PendingSuggestions)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &st, nil
}
