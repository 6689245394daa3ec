package model

import "time"

// Reservation approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Reservation is a guest's stay request for one accommodation. The
// accommodation reference is not enforced at write time; the cleanup
// sweep archives reservations whose accommodation has gone away.
//
// Fields:
//  AccommodationProvider – host user id that owns the accommodation.
//  IsApproved            – pending, approved or rejected.
//  ReviewEmailSent       – set once the post-stay review request went out.
type Reservation struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId,omitempty"`
	AccommodationID       string    `json:"accommodationId"`
	AccommodationProvider string    `json:"accommodationProvider,omitempty"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone,omitempty"`
	CheckInDate           time.Time `json:"checkInDate"`
	CheckOutDate          time.Time `json:"checkOutDate"`
	Guests                int       `json:"guests"`
	TotalPrice            float64   `json:"totalPrice"`
	IsApproved            string    `json:"isApproved"`
	ReviewEmailSent       bool      `json:"reviewEmailSent"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// ValidApproval reports whether s is a known approval state.
func ValidApproval(s string) bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// ArchivedReservation is a soft-deleted reservation.
type ArchivedReservation struct {
	Reservation
	DeletedAt time.Time `json:"deletedAt"`
}
