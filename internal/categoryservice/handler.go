package categoryservice

import (
	"context"
	"database/sql"

	"github.com/ashkeyz/inkwell/internal/common"
)

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{m: newCategoryModel(db)}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory inserts a category. The slug is derived from the name with
// the same normalization posts use; names that collide on either column are
// rejected rather than suffixed, a category name is expected to be unique.
func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	v := common.NewValidator()
	v.Check(req.Name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(req.Name, 1, 50), "name", "must not be more than 50 characters long")
	v.Check(req.Name == "" || common.Slugify(req.Name) != "", "name", "must contain at least one letter or number")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c := &Category{
		Name: req.Name,
		Slug: common.Slugify(req.Name),
	}

	err := s.m.insert(ctx, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetCategories returns all categories ordered by name.
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	return s.m.getCategories(ctx)
}

func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getCategoryBySlug(ctx, slug)
}
