package models

import "time"

const (
	ArticleKindArticle = "article"
	ArticleKindReview  = "review"

	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

// Article is the model for the 'articles' table. Reviews are articles with
// Kind "review" and a Rating.
type Article struct {
	ID            int64      `json:"id" db:"id"`
	CategoryID    *int64     `json:"categoryId,omitempty" db:"category_id"`
	Kind          string     `json:"kind" db:"kind"`
	Vertical      string     `json:"vertical" db:"vertical"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Excerpt       string     `json:"excerpt" db:"excerpt"`
	Body          string     `json:"body" db:"body"` // markdown
	CoverImageURL *string    `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	Rating        *float64   `json:"rating,omitempty" db:"rating"`
	Status        string     `json:"status" db:"status"`
	AuthorID      string     `json:"authorId" db:"author_id"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// Populated for public pages only.
	BodyHTML     string `json:"bodyHtml,omitempty" db:"-"`
	CategorySlug string `json:"categorySlug,omitempty" db:"-"`
}

// ArticleFilter narrows article listings. Zero values mean "any".
type ArticleFilter struct {
	Vertical     string
	Kind         string
	Status       string
	CategorySlug string
	Limit        int
	Offset       int
}

// --- API Input Structs ---

type CreateArticleInput struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Slug          string   `json:"slug" binding:"omitempty,max=180"`
	Kind          string   `json:"kind" binding:"required,oneof=article review"`
	Vertical      string   `json:"vertical" binding:"required"`
	CategoryID    *int64   `json:"categoryId"`
	Excerpt       string   `json:"excerpt" binding:"max=500"`
	Body          string   `json:"body"`
	CoverImageURL *string  `json:"coverImageUrl" binding:"omitempty,url"`
	Rating        *float64 `json:"rating" binding:"omitempty,gte=0,lte=10"`
	Status        string   `json:"status" binding:"required,oneof=draft published"`
}

type UpdateArticleInput struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Slug          *string  `json:"slug" binding:"omitempty,max=180"`
	Vertical      *string  `json:"vertical"`
	CategoryID    *int64   `json:"categoryId"`
	Excerpt       *string  `json:"excerpt" binding:"omitempty,max=500"`
	Body          *string  `json:"body"`
	CoverImageURL *string  `json:"coverImageUrl" binding:"omitempty,url"`
	Rating        *float64 `json:"rating" binding:"omitempty,gte=0,lte=10"`
	Status        *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}
