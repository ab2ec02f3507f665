package postservice

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Author is the weak reference to a user record. The post service never
// creates, mutates or deletes users; it only stores the id and resolves
// name and email at read time.
type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Category is the weak reference to a category record, resolved the same way.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Post struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	FeaturedImage string `json:"featured_image,omitempty"`
	Status        Status `json:"status"`
	AuthorID      int    `json:"-"`
	Author        Author `json:"author"`
	// Views carries the count as read from the store; a lookup bumps it
	// after the fact, so the returned value is always pre-increment.
	Views      int        `json:"views"`
	Slug       string     `json:"slug"`
	Featured   bool       `json:"featured"`
	Categories []Category `json:"categories"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	m *PostModel
}
