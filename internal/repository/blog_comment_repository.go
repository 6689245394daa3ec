package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
)

type BlogCommentRepo struct {
	db *sql.DB
}

func NewBlogCommentRepo(db *sql.DB) *BlogCommentRepo { return &BlogCommentRepo{db: db} }

const commentCols = "id, blog_id, name, email, comment, rating, is_approved, parent_comment_id, created_at, updated_at"

// Comment orderings accepted by ListApproved.
var commentOrder = map[string]string{
	"newest": "created_at DESC",
	"oldest": "created_at ASC",
	"rating": "rating DESC, created_at DESC",
}

func scanComment(s rowScanner) (*model.BlogComment, error) {
	var (
		c      model.BlogComment
		parent sql.NullString
	)
	if err := s.Scan(&c.ID, &c.BlogID, &c.Name, &c.Email, &c.Comment, &c.Rating, &c.IsApproved,
		&parent, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentCommentID = &parent.String
	}
	return &c, nil
}

func (r *BlogCommentRepo) Create(ctx context.Context, c *model.BlogComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const q = `INSERT INTO blog_comments (` + commentCols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.BlogID, c.Name, c.Email, c.Comment, c.Rating, c.IsApproved,
		c.ParentCommentID, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *BlogCommentRepo) GetByID(ctx context.Context, id string) (*model.BlogComment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, "SELECT "+commentCols+" FROM blog_comments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// ListApproved pages through approved comments of one blog. Unknown sort
// keys fall back to newest first.
func (r *BlogCommentRepo) ListApproved(ctx context.Context, blogID, sort string, offset, limit int) ([]model.BlogComment, error) {
	order, ok := commentOrder[sort]
	if !ok {
		order = commentOrder["newest"]
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+commentCols+
		" FROM blog_comments WHERE blog_id = ? AND is_approved = TRUE ORDER BY "+order+" LIMIT ? OFFSET ?",
		blogID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BlogComment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ApprovedRatings returns the rating of every approved comment on a blog.
func (r *BlogCommentRepo) ApprovedRatings(ctx context.Context, blogID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT rating FROM blog_comments WHERE blog_id = ? AND is_approved = TRUE", blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *BlogCommentRepo) Update(ctx context.Context, c *model.BlogComment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE blog_comments SET name = ?, email = ?, comment = ?, rating = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Email, c.Comment, c.Rating, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *BlogCommentRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "blog_comments", id)
}
