package categoryservice

import (
	"database/sql"
	"time"
)

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryModel struct {
	db *sql.DB
}

type CategoryService struct {
	m *CategoryModel
}
