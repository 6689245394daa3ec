package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
)

func newCommentFixture(t *testing.T) (*CommentService, string) {
	t.Helper()
	blogs := repotest.NewBlogs()
	b := &model.Blog{Title: "Hiking", Slug: "hiking", Content: "..."}
	if err := blogs.Create(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	svc := NewCommentService(repotest.NewComments(), blogs)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, b.ID
}

func TestCommentPagesAndStats(t *testing.T) {
	ctx := context.Background()
	svc, blogID := newCommentFixture(t)

	for _, rating := range []int{5, 4, 4, 1, 0} {
		c := &model.BlogComment{BlogID: blogID, Name: "Sam", Email: "sam@example.com", Comment: "nice", Rating: rating}
		if err := svc.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		if !c.IsApproved {
			t.Fatal("comments are approved on creation")
		}
	}

	page, err := svc.List(ctx, blogID, 2, 2, "oldest")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Comments) != 2 || page.Comments[0].Rating != 4 || page.Comments[1].Rating != 1 {
		t.Fatalf("page 2 = %+v", page.Comments)
	}
	want := Pagination{CurrentPage: 2, TotalPages: 3, TotalComments: 5, HasNext: true, HasPrev: true}
	if page.Pagination != want {
		t.Fatalf("pagination = %+v; want %+v", page.Pagination, want)
	}

	stats := page.RatingStats
	if stats.TotalRatings != 5 || stats.AverageRating != 3.8 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Distribution[5] != 2 || stats.Distribution[4] != 2 || stats.Distribution[1] != 1 || stats.Distribution[2] != 0 {
		t.Fatalf("distribution = %v", stats.Distribution)
	}

	top, _ := svc.List(ctx, blogID, 0, 0, "rating")
	if top.Pagination.CurrentPage != 1 || top.Comments[0].Rating != 5 {
		t.Fatalf("defaults/rating order = %+v", top)
	}
	if _, err := svc.List(ctx, "missing", 1, 10, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestEmptyRatingStats(t *testing.T) {
	st := ratingStats(nil)
	if st.TotalRatings != 0 || st.AverageRating != 0 || len(st.Distribution) != 5 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCommentReplies(t *testing.T) {
	ctx := context.Background()
	svc, blogID := newCommentFixture(t)
	parent := &model.BlogComment{BlogID: blogID, Name: "Tom", Email: "tom@example.com", Comment: "Q?"}
	if err := svc.Create(ctx, parent); err != nil {
		t.Fatal(err)
	}

	reply := &model.BlogComment{BlogID: blogID, Name: "Uma", Email: "uma@example.com", Comment: "A.", ParentCommentID: &parent.ID}
	if err := svc.Create(ctx, reply); err != nil {
		t.Fatal(err)
	}
	missing := "nope"
	orphan := &model.BlogComment{BlogID: blogID, Name: "Uma", Email: "uma@example.com", Comment: "A.", ParentCommentID: &missing}
	if err := svc.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestCommentValidation(t *testing.T) {
	ctx := context.Background()
	svc, blogID := newCommentFixture(t)

	tests := []struct {
		name string
		c    model.BlogComment
		want error
	}{
		{"no blog", model.BlogComment{Name: "a", Email: "a@b.co", Comment: "x"}, ErrInvalidInput},
		{"bad email", model.BlogComment{BlogID: blogID, Name: "a", Email: "not-an-email", Comment: "x"}, ErrInvalidInput},
		{"long name", model.BlogComment{BlogID: blogID, Name: strings.Repeat("n", 101), Email: "a@b.co", Comment: "x"}, ErrInvalidInput},
		{"long comment", model.BlogComment{BlogID: blogID, Name: "a", Email: "a@b.co", Comment: strings.Repeat("c", 1001)}, ErrInvalidInput},
		{"rating", model.BlogComment{BlogID: blogID, Name: "a", Email: "a@b.co", Comment: "x", Rating: 9}, ErrInvalidInput},
		{"unknown blog", model.BlogComment{BlogID: "gone", Name: "a", Email: "a@b.co", Comment: "x"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			if err := svc.Create(ctx, &c); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestCommentUpdate(t *testing.T) {
	ctx := context.Background()
	svc, blogID := newCommentFixture(t)
	c := &model.BlogComment{BlogID: blogID, Name: "Vic", Email: "vic@example.com", Comment: "first"}
	if err := svc.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	text, rating := "edited", 3
	got, err := svc.Update(ctx, c.ID, CommentUpdate{Comment: &text, Rating: &rating})
	if err != nil {
		t.Fatal(err)
	}
	if got.Comment != "edited" || got.Rating != 3 || got.Name != "Vic" || !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updated = %+v", got)
	}

	bad := "x@"
	if _, err := svc.Update(ctx, c.ID, CommentUpdate{Email: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
