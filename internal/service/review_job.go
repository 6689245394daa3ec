package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vacation-rental/internal/applog"
)

// ReviewRequester asks guests who check out today for a review.
type ReviewRequester struct {
	res      ReservationStore
	notifier Notifier
	siteURL  string
	now      func() time.Time
}

func NewReviewRequester(res ReservationStore, notifier Notifier, siteURL string) *ReviewRequester {
	return &ReviewRequester{res: res, notifier: notifier, siteURL: strings.TrimRight(siteURL, "/"),
		now: func() time.Time { return time.Now().UTC() }}
}

// ReviewLink is the client page where a guest reviews an accommodation.
func (j *ReviewRequester) ReviewLink(accommodationID string) string {
	return fmt.Sprintf("%s/Review/%s", j.siteURL, accommodationID)
}

// Run notifies every approved reservation checking out today that has
// not been asked yet and marks it. A reservation whose notification
// fails stays unmarked and is retried on the next run.
func (j *ReviewRequester) Run(ctx context.Context) (int, error) {
	due, err := j.res.ListDueForReview(ctx, j.now())
	if err != nil {
		return 0, fmt.Errorf("list reservations due for review: %w", err)
	}
	sent := 0
	for _, r := range due {
		if err := j.notifier.ReviewRequested(ctx, r, j.ReviewLink(r.AccommodationID)); err != nil {
			applog.Error("review request failed", err, "reservation", r.ID)
			continue
		}
		if err := j.res.MarkReviewEmailSent(ctx, r.ID); err != nil {
			applog.Error("mark review email sent failed", err, "reservation", r.ID)
			continue
		}
		sent++
	}
	if sent > 0 {
		applog.Info("review requests sent", "count", sent)
	}
	return sent, nil
}
