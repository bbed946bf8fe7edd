package models

// DashboardStats holds the counters for the admin dashboard.
type DashboardStats struct {
	PublishedArticles  int `json:"publishedArticles"`
	DraftArticles      int `json:"draftArticles"`
	Categories         int `json:"categories"`
	PendingComments    int `json:"pendingComments"`
	SeoPages           int `json:"seoPages"`
	OpenIssues         int `json:"openIssues"`
	PendingSuggestions int `json:"pendingSuggestions"`
}
