package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

func TestBlogSlugsStayUnique(t *testing.T) {
	ctx := context.Background()
	svc := NewBlogService(repotest.NewBlogs())

	var slugs []string
	for i := 0; i < 3; i++ {
		b := &model.Blog{Title: "Best Huts in the Tatras!", Content: "..."}
		if err := svc.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
		slugs = append(slugs, b.Slug)
	}
	want := []string{"best-huts-in-the-tatras", "best-huts-in-the-tatras-1", "best-huts-in-the-tatras-2"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("slugs = %v; want %v", slugs, want)
		}
	}

	got, err := svc.Get(ctx, "best-huts-in-the-tatras-1")
	if err != nil || got.Slug != want[1] {
		t.Fatalf("Get by slug = %+v %v", got, err)
	}
	if got.Author != "Admin" || got.BlogType != model.BlogTypeCustomer {
		t.Fatalf("defaults = %q %q", got.Author, got.BlogType)
	}
	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestBlogUpdateRegeneratesSlug(t *testing.T) {
	ctx := context.Background()
	svc := NewBlogService(repotest.NewBlogs())
	b := &model.Blog{Title: "Winter", Content: "snow", BlogType: model.BlogTypeProvider}
	if err := svc.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	same, err := svc.Update(ctx, b.ID, model.Blog{Title: "Winter", Content: "more snow"})
	if err != nil || same.Slug != "winter" || same.BlogType != model.BlogTypeProvider {
		t.Fatalf("same title = %+v %v", same, err)
	}
	renamed, err := svc.Update(ctx, b.ID, model.Blog{Title: "Summer Trips", Content: "sun"})
	if err != nil || renamed.Slug != "summer-trips" {
		t.Fatalf("renamed = %+v %v", renamed, err)
	}

	provider, _ := svc.List(ctx, model.BlogTypeProvider)
	customer, _ := svc.List(ctx, model.BlogTypeCustomer)
	if len(provider) != 1 || len(customer) != 0 {
		t.Fatalf("provider %d, customer %d", len(provider), len(customer))
	}
}

func TestBlogValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewBlogService(repotest.NewBlogs())
	for _, b := range []model.Blog{
		{Title: "", Content: "x"},
		{Title: "x", Content: " "},
		{Title: "x", Content: "y", BlogType: "partner"},
		{Title: "!!!", Content: "y"},
	} {
		b := b
		if err := svc.Create(ctx, &b); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Create(%+v) err = %v; want ErrInvalidInput", b, err)
		}
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
