package model

import (
	"encoding/json"
	"time"

	"github.com/iliyamo/vacation-rental/internal/daterange"
)

// UnmarshalJSON accepts YYYY-MM-DD as well as RFC 3339 for both dates.
func (e *OccupancyEntry) UnmarshalJSON(b []byte) error {
	type plain OccupancyEntry
	aux := struct {
		*plain
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if err := parseDay(&e.StartDate, aux.StartDate); err != nil {
		return err
	}
	return parseDay(&e.EndDate, aux.EndDate)
}

// UnmarshalJSON accepts YYYY-MM-DD as well as RFC 3339 for the stay
// dates. Dates absent from b keep their current value.
func (r *Reservation) UnmarshalJSON(b []byte) error {
	type plain Reservation
	aux := struct {
		*plain
		CheckInDate  string `json:"checkInDate"`
		CheckOutDate string `json:"checkOutDate"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if err := parseDay(&r.CheckInDate, aux.CheckInDate); err != nil {
		return err
	}
	return parseDay(&r.CheckOutDate, aux.CheckOutDate)
}

// parseDay leaves dst untouched when raw is blank.
func parseDay(dst *time.Time, raw string) error {
	if raw == "" {
		return nil
	}
	t, err := daterange.Parse(raw)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}
