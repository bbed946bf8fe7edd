package models

import "time"

const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionEdited   = "edited"
	SuggestionRejected = "rejected"

	CrawlRunning   = "running"
	CrawlCompleted = "completed"
	CrawlFailed    = "failed"
)

// SeoPage is one crawlable page of the public site ('seo_pages').
type SeoPage struct {
	ID             int64      `json:"id" db:"id"`
	URL            string     `json:"url" db:"url"`
	Title          string     `json:"title" db:"title"`
	CurrentMeta    *string    `json:"currentMeta" db:"current_meta"`
	ContentPreview string     `json:"contentPreview" db:"content_preview"`
	ContentHash    string     `json:"-" db:"content_hash"`
	H1Count        int        `json:"h1Count" db:"h1_count"`
	StatusCode     int        `json:"statusCode" db:"status_code"`
	LastCrawled    *time.Time `json:"lastCrawled,omitempty" db:"last_crawled"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`

	Suggestions []MetaSuggestion `json:"suggestions,omitempty" db:"-"`
	Issues      []SeoIssue       `json:"issues,omitempty" db:"-"`
}

// MetaSuggestion is a proposed meta description awaiting (or after) human review.
type MetaSuggestion struct {
	ID         int64     `json:"id" db:"id"`
	PageID     int64     `json:"pageId" db:"page_id"`
	Suggestion string    `json:"suggestion" db:"suggestion"`
	Keywords   []string  `json:"keywords" db:"keywords"` // stored as JSON
	Confidence float64   `json:"confidence" db:"confidence"`
	Source     string    `json:"source" db:"source"` // "ai" or "template"
	Status     string    `json:"status" db:"status"`
	EditedText *string   `json:"editedText,omitempty" db:"edited_text"`
	ApprovedBy *string   `json:"approvedBy,omitempty" db:"approved_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	PageURL string `json:"pageUrl,omitempty" db:"-"`
}

// FinalText is what gets published for an approved or edited suggestion.
func (s *MetaSuggestion) FinalText() string {
	if s.EditedText != nil && *s.EditedText != "" {
		return *s.EditedText
	}
	return s.Suggestion
}

// SeoIssue is one problem detected on a page during a crawl.
type SeoIssue struct {
	ID        int64     `json:"id" db:"id"`
	PageID    int64     `json:"pageId" db:"page_id"`
	Kind      string    `json:"kind" db:"kind"`
	Severity  string    `json:"severity" db:"severity"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	PageURL string `json:"pageUrl,omitempty" db:"-"`
}

// CrawlJob is one crawl run ('crawl_jobs').
type CrawlJob struct {
	ID           int64      `json:"id" db:"id"`
	BaseURL      string     `json:"baseUrl" db:"base_url"`
	MaxPages     int        `json:"maxPages" db:"max_pages"`
	Status       string     `json:"status" db:"status"`
	PagesCrawled int        `json:"pagesCrawled" db:"pages_crawled"`
	Error        *string    `json:"error,omitempty" db:"error"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty" db:"finished_at"`
}

// --- API Input Structs ---

type StartCrawlInput struct {
	BaseURL  string `json:"baseUrl" binding:"omitempty,url"`
	MaxPages int    `json:"maxPages" binding:"omitempty,gte=1,lte=5000"`
}

type ReviewSuggestionInput struct {
	Decision   string `json:"decision" binding:"required,oneof=approved edited rejected"`
	EditedText string `json:"editedText"`
}
