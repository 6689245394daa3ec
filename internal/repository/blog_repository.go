package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/model"
)

type BlogRepo struct {
	db *sql.DB
}

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{db: db} }

const blogCols = "id, title, slug, content, author, categories, tags, image, summary, blog_type, created_at"

func scanBlog(s rowScanner) (*model.Blog, error) {
	var (
		b    model.Blog
		tags []byte
	)
	if err := s.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.Author, &b.Categories, &tags,
		&b.Image, &b.Summary, &b.BlogType, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &b.Tags); err != nil {
		return nil, err
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return &b, nil
}

// Create inserts b; a slug collision surfaces as ErrConflict.
func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	tags, err := json.Marshal(nonNil(b.Tags))
	if err != nil {
		return err
	}
	const q = `INSERT INTO blogs (` + blogCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, b.ID, b.Title, b.Slug, b.Content, b.Author, b.Categories,
		string(tags), b.Image, b.Summary, b.BlogType, b.CreatedAt)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: slug %q taken", ErrConflict, b.Slug)
	}
	return err
}

func (r *BlogRepo) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	return r.get(ctx, "id", id)
}

func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	return r.get(ctx, "slug", slug)
}

func (r *BlogRepo) get(ctx context.Context, col, v string) (*model.Blog, error) {
	b, err := scanBlog(r.db.QueryRowContext(ctx, "SELECT "+blogCols+" FROM blogs WHERE "+col+" = ?", v))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// List returns blogs newest first, optionally limited to one blog type.
func (r *BlogRepo) List(ctx context.Context, blogType string) ([]model.Blog, error) {
	q := "SELECT " + blogCols + " FROM blogs"
	var args []any
	if blogType != "" {
		q += " WHERE blog_type = ?"
		args = append(args, blogType)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BlogRepo) Update(ctx context.Context, b *model.Blog) error {
	tags, err := json.Marshal(nonNil(b.Tags))
	if err != nil {
		return err
	}
	const q = `UPDATE blogs SET title = ?, slug = ?, content = ?, author = ?, categories = ?, tags = ?,
		image = ?, summary = ?, blog_type = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, b.Title, b.Slug, b.Content, b.Author, b.Categories, string(tags),
		b.Image, b.Summary, b.BlogType, b.ID)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: slug %q taken", ErrConflict, b.Slug)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *BlogRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "blogs", id)
}

// SlugTaken reports whether another blog than exceptID uses slug.
func (r *BlogRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blogs WHERE slug = ? AND id <> ?", slug, exceptID).Scan(&n)
	return n > 0, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
