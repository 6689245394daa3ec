package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/utils"
)

const defaultAuthor = "Admin"

type BlogService struct {
	blogs BlogStore
}

func NewBlogService(blogs BlogStore) *BlogService { return &BlogService{blogs: blogs} }

// Create derives a unique slug from the title and stores b.
func (s *BlogService) Create(ctx context.Context, b *model.Blog) error {
	b.ID = ""
	if err := prepareBlog(b); err != nil {
		return err
	}
	slug, err := s.uniqueSlug(ctx, b.Title, "")
	if err != nil {
		return err
	}
	b.Slug = slug
	return s.blogs.Create(ctx, b)
}

func prepareBlog(b *model.Blog) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" || strings.TrimSpace(b.Content) == "" {
		return fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if strings.TrimSpace(b.Author) == "" {
		b.Author = defaultAuthor
	}
	if b.BlogType == "" {
		b.BlogType = model.BlogTypeCustomer
	}
	if b.BlogType != model.BlogTypeCustomer && b.BlogType != model.BlogTypeProvider {
		return fmt.Errorf("%w: blogType %q", ErrInvalidInput, b.BlogType)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return nil
}

// uniqueSlug returns the slug of title, or slug-1, slug-2 and so on when
// it is taken by a blog other than exceptID.
func (s *BlogService) uniqueSlug(ctx context.Context, title, exceptID string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		return "", fmt.Errorf("%w: title has no usable characters", ErrInvalidInput)
	}
	slug := base
	for n := 1; ; n++ {
		taken, err := s.blogs.SlugTaken(ctx, slug, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// Get looks a blog up by id, then by slug.
func (s *BlogService) Get(ctx context.Context, idOrSlug string) (*model.Blog, error) {
	b, err := s.blogs.GetByID(ctx, idOrSlug)
	if err == nil {
		return b, nil
	}
	return s.blogs.GetBySlug(ctx, idOrSlug)
}

// List returns all blogs, or those of one audience.
func (s *BlogService) List(ctx context.Context, blogType string) ([]model.Blog, error) {
	return s.blogs.List(ctx, blogType)
}

// Update replaces the editable fields; a new title yields a new slug.
func (s *BlogService) Update(ctx context.Context, id string, in model.Blog) (*model.Blog, error) {
	cur, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID, in.CreatedAt, in.Slug = cur.ID, cur.CreatedAt, cur.Slug
	if in.BlogType == "" {
		in.BlogType = cur.BlogType
	}
	if err := prepareBlog(&in); err != nil {
		return nil, err
	}
	if in.Title != cur.Title {
		if in.Slug, err = s.uniqueSlug(ctx, in.Title, cur.ID); err != nil {
			return nil, err
		}
	}
	if err := s.blogs.Update(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	return s.blogs.Delete(ctx, id)
}
