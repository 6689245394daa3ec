// Package queue carries guest notifications over RabbitMQ. The HTTP
// process and the scheduler publish events; the consumer turns them into
// mail.
package queue

import (
	"time"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// Queue names. Routing keys equal queue names on the default exchange.
const (
	QueueReservationArchived = "reservation.archived"
	QueueReviewRequested     = "review.requested"
)

// ReservationArchivedEvent is published when the cleanup sweep archives
// a reservation whose accommodation no longer exists. It carries the whole
// reservation so the consumer never reads the primary database.
type ReservationArchivedEvent struct {
	Reservation model.Reservation `json:"reservation"`
	ArchivedAt  time.Time         `json:"archived_at"`
}

// ReviewRequestedEvent asks the guest of a finished stay for a review.
type ReviewRequestedEvent struct {
	Reservation model.Reservation `json:"reservation"`
	ReviewLink  string            `json:"review_link"`
	RequestedAt time.Time         `json:"requested_at"`
}
