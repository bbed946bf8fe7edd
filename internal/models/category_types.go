package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Vertical    string    `json:"vertical" db:"vertical"`
	Description string    `json:"description" db:"description"`
	ParentID    *int64    `json:"parentId,omitempty" db:"parent_id"` // Use pointer for NULL
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Virtual Field (Not in DB) - Used for constructing the Tree View in the UI
	Children []Category `json:"children,omitempty" db:"-"`
}

// --- API Input Structs ---

type CreateCategoryInput struct {
	Name        string `json:"name" binding:"required,max=150"`
	Slug        string `json:"slug" binding:"omitempty,max=180"`
	Vertical    string `json:"vertical" binding:"required"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parentId"` // Pointer allows sending null for root categories
}

// UpdateCategoryInput uses pointers so omitted fields are left untouched.
type UpdateCategoryInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=150"`
	Slug        *string `json:"slug" binding:"omitempty,max=180"`
	Vertical    *string `json:"vertical"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parentId"`
	ClearParent bool    `json:"clearParent"`
}
