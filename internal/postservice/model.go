package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateSlug      = errors.New("slug already exists")
	ErrAuthorForeignKey   = errors.New("author_id does not exist")
	ErrCategoryForeignKey = errors.New("category_id does not exist")
)

// featuredLimit caps the featured listing regardless of how many records
// qualify.
const featuredLimit = 5

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// UniqueViolationError is a helper function to check if the error is a unique constraint error.
func UniqueViolationError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insert persists the post and its category references in one transaction.
// The unique index on posts.slug is the authoritative guard for slug
// uniqueness; a violation surfaces as ErrDuplicateSlug so the caller can
// retry with the next suffix.
func (m *PostModel) insert(ctx context.Context, post *Post, categoryIDs []int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (title, content, excerpt, featured_image, status, author_id, slug, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, views, created_at, updated_at`

	args := []any{
		post.Title,
		post.Content,
		post.Excerpt,
		post.FeaturedImage,
		post.Status,
		post.AuthorID,
		post.Slug,
		post.Featured,
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&post.ID, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case UniqueViolationError(err, "posts_slug_key"):
			return ErrDuplicateSlug
		case ForeignKeyError(err, "posts_author_id_fkey"):
			return ErrAuthorForeignKey
		default:
			return err
		}
	}

	err = m.setCategories(tx, ctx, post.ID, categoryIDs)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// setCategories replaces the weak category references of a post.
func (m *PostModel) setCategories(tx *sql.Tx, ctx context.Context, postID int, categoryIDs []int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM post_categories WHERE post_id = $1", postID)
	if err != nil {
		return err
	}

	for _, id := range categoryIDs {
		_, err := tx.ExecContext(ctx, "INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)", postID, id)
		if err != nil {
			if ForeignKeyError(err, "post_categories_category_id_fkey") {
				return ErrCategoryForeignKey
			}
			return err
		}
	}

	return nil
}

const selectPostColumns = `
		SELECT p.id, p.title, p.content, p.excerpt, p.featured_image, p.status, p.author_id, p.views, p.slug, p.featured, p.created_at, p.updated_at, u.name, u.email
		FROM posts p
		JOIN users u ON p.author_id = u.id`

func scanPost(row interface{ Scan(dest ...any) error }) (*Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Excerpt, &post.FeaturedImage, &post.Status, &post.AuthorID, &post.Views, &post.Slug, &post.Featured, &post.CreatedAt, &post.UpdatedAt, &post.Author.Name, &post.Author.Email)
	if err != nil {
		return nil, err
	}

	post.Author.ID = post.AuthorID

	return &post, nil
}

// getPostById is a method to get a post by its ID joining the users table to resolve the author reference.
func (m *PostModel) getPostById(ctx context.Context, id int) (*Post, error) {
	query := selectPostColumns + `
		WHERE p.id = $1`

	post, err := scanPost(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	err = m.attachCategories(ctx, []*Post{post})
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (m *PostModel) getPostBySlug(ctx context.Context, slug string) (*Post, error) {
	query := selectPostColumns + `
		WHERE p.slug = $1`

	post, err := scanPost(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	err = m.attachCategories(ctx, []*Post{post})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// getPosts returns a page of posts matching the filter, newest first.
func (m *PostModel) getPosts(ctx context.Context, filter Filter, limit, offset int) ([]Post, error) {
	cond, args := filter.condition(1)

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, selectPostColumns, cond, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	return m.queryPosts(ctx, query, args...)
}

// getFeaturedPosts returns the promoted subset: featured and published,
// newest first, never more than featuredLimit records.
func (m *PostModel) getFeaturedPosts(ctx context.Context) ([]Post, error) {
	query := fmt.Sprintf(`%s
		WHERE p.featured = true AND p.status = 'published'
		ORDER BY p.created_at DESC
		LIMIT %d`, selectPostColumns, featuredLimit)

	return m.queryPosts(ctx, query)
}

func (m *PostModel) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}

	err = m.attachCategories(ctx, refs)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// attachCategories resolves the weak category references for a batch of
// posts with a single query.
func (m *PostModel) attachCategories(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int64, len(posts))
	index := make(map[int]*Post, len(posts))
	for i, p := range posts {
		ids[i] = int64(p.ID)
		index[p.ID] = p
		p.Categories = []Category{}
	}

	query := `
		SELECT pc.post_id, c.id, c.name, c.slug
		FROM post_categories pc
		JOIN categories c ON pc.category_id = c.id
		WHERE pc.post_id = ANY($1)
		ORDER BY c.name ASC`

	rows, err := m.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int
		var c Category
		err := rows.Scan(&postID, &c.ID, &c.Name, &c.Slug)
		if err != nil {
			return err
		}

		if p, ok := index[postID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}

	return rows.Err()
}

func (m *PostModel) countPosts(ctx context.Context, filter Filter) (int, error) {
	cond, args := filter.condition(1)

	query := fmt.Sprintf(`
		SELECT count(*)
		FROM posts p
		WHERE %s`, cond)

	var total int
	err := m.db.QueryRowContext(ctx, query, args...).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// slugExists reports whether a live record already holds the slug. This is
// the check-then-act half of allocation; the unique index remains the final
// arbiter under concurrent creates.
func (m *PostModel) slugExists(ctx context.Context, slug string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// updateFields carries the partial update. Nil fields are left untouched.
// The slug and id are deliberately absent: both are immutable once allocated.
type updateFields struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Status        *Status
	Featured      *bool
	CategoryIDs   []int
}

func (m *PostModel) updatePost(ctx context.Context, id int, fields updateFields) error {
	set := []string{"updated_at = now()"}
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Content != nil {
		add("content", *fields.Content)
	}
	if fields.Excerpt != nil {
		add("excerpt", *fields.Excerpt)
	}
	if fields.FeaturedImage != nil {
		add("featured_image", *fields.FeaturedImage)
	}
	if fields.Status != nil {
		add("status", *fields.Status)
	}
	if fields.Featured != nil {
		add("featured", *fields.Featured)
	}

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE posts
		SET %s
		WHERE id = $%d
		RETURNING id`, strings.Join(set, ", "), len(args))

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	if fields.CategoryIDs != nil {
		err = m.setCategories(tx, ctx, id, fields.CategoryIDs)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (m *PostModel) deletePost(ctx context.Context, id int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// incrementViews bumps the read counter by exactly one. Zero affected rows
// means the record disappeared between the read and the increment; that is
// a silent no-op, never an error.
func (m *PostModel) incrementViews(ctx context.Context, id int) error {
	query := `
		UPDATE posts
		SET views = views + 1
		WHERE id = $1`

	_, err := m.db.ExecContext(ctx, query, id)
	return err
}

func (m *PostModel) incrementViewsBySlug(ctx context.Context, slug string) error {
	query := `
		UPDATE posts
		SET views = views + 1
		WHERE slug = $1`

	_, err := m.db.ExecContext(ctx, query, slug)
	return err
}
