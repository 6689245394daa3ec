package model

import "time"

// CategoryRatings are optional per-aspect scores from 0 to 5.
type CategoryRatings struct {
	Location      float64 `json:"Location"`
	Communication float64 `json:"Communication"`
	Equipment     float64 `json:"Equipment"`
	Cleanliness   float64 `json:"Cleanliness"`
	ClientCare    float64 `json:"ClientCare"`
	WiFi          float64 `json:"WiFi"`
	Activities    float64 `json:"Activities"`
	PriceQuality  float64 `json:"PriceQuality"`
}

// Values lists the ratings in declaration order.
func (c CategoryRatings) Values() []float64 {
	return []float64{c.Location, c.Communication, c.Equipment, c.Cleanliness,
		c.ClientCare, c.WiFi, c.Activities, c.PriceQuality}
}

// Review is a guest review of an accommodation. Creating or deleting one
// recomputes the accommodation's average rating.
type Review struct {
	ID              string          `json:"id"`
	AccommodationID string          `json:"accommodation"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	ReviewText      string          `json:"reviewText"`
	Pluses          string          `json:"pluses,omitempty"`
	Cons            string          `json:"cons,omitempty"`
	OverallRating   int             `json:"overallRating"`
	CategoryRatings CategoryRatings `json:"categoryRatings"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
