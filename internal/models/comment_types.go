package models

import "time"

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusSpam     = "spam"
)

// Comment is the model for the 'comments' table
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	ArticleID  int64     `json:"articleId" db:"article_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Body       string    `json:"body" db:"body"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Populated for the moderation queue.
	ArticleTitle string `json:"articleTitle,omitempty" db:"-"`
}

type CreateCommentInput struct {
	AuthorName string `json:"authorName" binding:"required,max=80"`
	Body       string `json:"body" binding:"required,max=5000"`
}

type ModerateCommentInput struct {
	Action string `json:"action" binding:"required,oneof=approve spam"`
}
