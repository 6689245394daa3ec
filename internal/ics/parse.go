package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// ErrMalformed is returned when the payload is not an iCalendar object.
var ErrMalformed = errors.New("malformed calendar")

// Event is a VEVENT reduced to calendar days. End is inclusive.
type Event struct {
	UID         string    `json:"uid,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// GuestName is the summary, or the default guest when it is blank.
func (e Event) GuestName() string {
	if s := strings.TrimSpace(e.Summary); s != "" {
		return s
	}
	return model.DefaultGuestName
}

// Parse reads every VEVENT in body. Events without a usable DTSTART are
// logged and skipped. DTEND is treated as exclusive: one day is taken off
// and the result is clamped to the start day. A missing DTEND means a
// single-day event.
func Parse(body []byte) ([]Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, err := parseEvent(ve)
		if err != nil {
			applog.Warn("ics vevent skipped", "err", err, "uid", ve.Id())
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseEvent(ve *ical.VEvent) (Event, error) {
	var ev Event
	ev.UID = ve.Id()
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return ev, errors.New("missing DTSTART")
	}
	start, err := parseDay(startProp.Value)
	if err != nil {
		return ev, fmt.Errorf("DTSTART: %w", err)
	}
	ev.Start, ev.End = start, start

	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		end, err := parseDay(endProp.Value)
		if err != nil {
			return ev, fmt.Errorf("DTEND: %w", err)
		}
		end = end.AddDate(0, 0, -1)
		if end.After(start) {
			ev.End = end
		}
	}
	return ev, nil
}

// parseDay takes the calendar date an iCalendar DATE or DATE-TIME value is
// written in. UTC values keep their UTC date; floating and TZID values
// keep the local date as written.
func parseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return time.Time{}, fmt.Errorf("%w: %q", daterange.ErrInvalidDate, v)
	}
	if len(v) > 8 && v[8] != 'T' {
		return time.Time{}, fmt.Errorf("%w: %q", daterange.ErrInvalidDate, v)
	}
	t, err := time.Parse("20060102", v[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", daterange.ErrInvalidDate, v)
	}
	return t, nil
}
