package postservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ashkeyz/inkwell/internal/common"
)

func NewPostService(db *sql.DB) *PostService {
	return &PostService{m: newPostModel(db)}
}

type CreatePostRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	FeaturedImage string `json:"featured_image"`
	Status        Status `json:"status"`
	AuthorID      int    `json:"author_id"`
	CategoryIDs   []int  `json:"category_ids"`
	Featured      bool   `json:"featured"`
}

// CreatePost allocates a slug from the title and inserts the record. When a
// concurrent create wins the same slug at insert time, allocation is rerun
// so the conflict never reaches the caller.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	if req.Status == "" {
		req.Status = StatusDraft
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateInt(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.m.allocateSlug(ctx, req.Title)
		if err != nil {
			return nil, err
		}

		post := &Post{
			Title:         req.Title,
			Content:       req.Content,
			Excerpt:       req.Excerpt,
			FeaturedImage: req.FeaturedImage,
			Status:        req.Status,
			AuthorID:      req.AuthorID,
			Slug:          slug,
			Featured:      req.Featured,
		}

		err = s.m.insert(ctx, post, req.CategoryIDs)
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return s.m.getPostById(ctx, post.ID)
	}

	return nil, ErrSlugExhausted
}

// GetPosts returns one page of posts matching the optional search text,
// newest first, together with the pagination metadata.
func (s *PostService) GetPosts(ctx context.Context, search string, page, limit int) ([]Post, Metadata, error) {
	page, limit = normalizePageLimit(page, limit)
	filter := Filter{Search: search}

	posts, err := s.m.getPosts(ctx, filter, limit, offsetFor(page, limit))
	if err != nil {
		return nil, Metadata{}, err
	}

	total, err := s.m.countPosts(ctx, filter)
	if err != nil {
		return nil, Metadata{}, err
	}

	return posts, paginate(page, limit, total), nil
}

// GetPostByID returns a post by its ID. The read bumps the view counter
// after the record has been fetched; the increment is best effort, its
// outcome is dropped and the returned record carries the pre-increment
// count.
func (s *PostService) GetPostByID(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.m.incrementViews(ctx, post.ID)

	return post, nil
}

// GetPostBySlug returns a post by its slug, with the same best-effort view
// bump as GetPostByID.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	_ = s.m.incrementViewsBySlug(ctx, post.Slug)

	return post, nil
}

// GetFeaturedPosts returns up to five featured, published posts, newest
// first. Drafts never appear here, featured flag or not.
func (s *PostService) GetFeaturedPosts(ctx context.Context) ([]Post, error) {
	return s.m.getFeaturedPosts(ctx)
}

type UpdatePostRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	FeaturedImage *string `json:"featured_image"`
	Status        *Status `json:"status"`
	Featured      *bool   `json:"featured"`
	CategoryIDs   []int   `json:"category_ids"`
}

// UpdatePost applies a partial update: only the provided fields change.
// The id and slug are not part of the request and therefore cannot change;
// whether a title change should re-derive the slug is deliberately not a
// behavior of this operation.
func (s *PostService) UpdatePost(ctx context.Context, id int, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Content != nil {
		validateContent(v, *req.Content)
	}
	if req.Status != nil {
		validateStatus(v, *req.Status)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err := s.m.updatePost(ctx, id, updateFields{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
		Featured:      req.Featured,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}

	return s.m.getPostById(ctx, id)
}

// DeletePost removes the record and returns it. The delete is hard: no
// tombstone, no soft-delete state.
func (s *PostService) DeletePost(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.m.deletePost(ctx, id)
	if err != nil {
		return nil, err
	}

	return post, nil
}
