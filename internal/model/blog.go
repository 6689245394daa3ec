package model

import "time"

// Blog audiences.
const (
	BlogTypeCustomer = "customer"
	BlogTypeProvider = "provider"
)

// Blog is a published article. Slug is unique and derived from Title.
type Blog struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Categories string    `json:"categories"`
	Tags       []string  `json:"tags"`
	Image      string    `json:"image,omitempty"`
	Summary    string    `json:"summary"`
	BlogType   string    `json:"blogType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BlogComment is a reader comment on a blog post. Replies point at their
// parent through ParentCommentID.
type BlogComment struct {
	ID              string    `json:"id"`
	BlogID          string    `json:"blogId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Comment         string    `json:"comment"`
	Rating          int       `json:"rating"`
	IsApproved      bool      `json:"isApproved"`
	ParentCommentID *string   `json:"parentCommentId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RatingStats summarizes approved comment ratings for one blog.
type RatingStats struct {
	AverageRating float64     `json:"averageRating"`
	TotalRatings  int         `json:"totalRatings"`
	Distribution  map[int]int `json:"ratingDistribution"`
}
