package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/vacation-rental/internal/model"
)

const (
	maxCommentName  = 100
	maxCommentEmail = 255
	maxCommentBody  = 1000
	defaultRating   = 5
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type CommentService struct {
	comments CommentStore
	blogs    BlogStore
	now      func() time.Time
}

func NewCommentService(comments CommentStore, blogs BlogStore) *CommentService {
	return &CommentService{comments: comments, blogs: blogs, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds an approved comment to an existing blog. A reply must
// point at a comment of the same blog.
func (s *CommentService) Create(ctx context.Context, c *model.BlogComment) error {
	c.ID = ""
	if c.BlogID == "" {
		return fmt.Errorf("%w: blogId is required", ErrInvalidInput)
	}
	if c.Rating == 0 {
		c.Rating = defaultRating
	}
	if err := cleanComment(c); err != nil {
		return err
	}
	if _, err := s.blogs.GetByID(ctx, c.BlogID); err != nil {
		return err
	}
	if c.ParentCommentID != nil && *c.ParentCommentID == "" {
		c.ParentCommentID = nil
	}
	if c.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *c.ParentCommentID)
		if err != nil {
			return err
		}
		if parent.BlogID != c.BlogID {
			return fmt.Errorf("%w: parent comment belongs to another blog", ErrInvalidInput)
		}
	}
	c.IsApproved = true
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	return s.comments.Create(ctx, c)
}

func cleanComment(c *model.BlogComment) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Comment = strings.TrimSpace(c.Comment)
	switch {
	case c.Name == "" || c.Email == "" || c.Comment == "":
		return fmt.Errorf("%w: name, email and comment are required", ErrInvalidInput)
	case len([]rune(c.Name)) > maxCommentName:
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxCommentName)
	case len(c.Email) > maxCommentEmail || !emailPattern.MatchString(c.Email):
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	case len([]rune(c.Comment)) > maxCommentBody:
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, maxCommentBody)
	case c.Rating < 1 || c.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

// Pagination describes one page of a comment listing.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalComments int  `json:"totalComments"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

type CommentPage struct {
	Comments    []model.BlogComment `json:"comments"`
	Pagination  Pagination          `json:"pagination"`
	RatingStats model.RatingStats   `json:"ratingStats"`
}

// List returns one page of approved comments with the blog's rating
// statistics. page and limit below one fall back to 1 and 10.
func (s *CommentService) List(ctx context.Context, blogID string, page, limit int, sort string) (CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if _, err := s.blogs.GetByID(ctx, blogID); err != nil {
		return CommentPage{}, err
	}
	offset := (page - 1) * limit
	comments, err := s.comments.ListApproved(ctx, blogID, sort, offset, limit)
	if err != nil {
		return CommentPage{}, err
	}
	stats, err := s.Stats(ctx, blogID)
	if err != nil {
		return CommentPage{}, err
	}
	total := stats.TotalRatings
	return CommentPage{
		Comments: comments,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    (total + limit - 1) / limit,
			TotalComments: total,
			HasNext:       offset+len(comments) < total,
			HasPrev:       page > 1,
		},
		RatingStats: stats,
	}, nil
}

// Stats summarizes approved ratings: the mean rounded to one decimal and
// a count per star from 1 to 5.
func (s *CommentService) Stats(ctx context.Context, blogID string) (model.RatingStats, error) {
	ratings, err := s.comments.ApprovedRatings(ctx, blogID)
	if err != nil {
		return model.RatingStats{}, err
	}
	return ratingStats(ratings), nil
}

func ratingStats(ratings []int) model.RatingStats {
	st := model.RatingStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(ratings) == 0 {
		return st
	}
	sum := 0
	for _, r := range ratings {
		sum += r
		st.Distribution[r]++
	}
	st.TotalRatings = len(ratings)
	st.AverageRating = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	return st
}

func (s *CommentService) Get(ctx context.Context, id string) (*model.BlogComment, error) {
	return s.comments.GetByID(ctx, id)
}

// CommentUpdate carries the editable fields; nil leaves a field as is.
type CommentUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

func (s *CommentService) Update(ctx context.Context, id string, in CommentUpdate) (*model.BlogComment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Comment != nil {
		c.Comment = *in.Comment
	}
	if in.Rating != nil {
		c.Rating = *in.Rating
	}
	if err := cleanComment(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}
