package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/iliyamo/vacation-rental/internal/model"
)

// ProductID identifies calendars produced by this service.
const ProductID = "-//vacation-rental//occupancy//EN"

// EmptyCalendar is served whenever a real calendar cannot be built.
const EmptyCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:" + ProductID + "\r\n" +
	"CALSCALE:GREGORIAN\r\n" +
	"END:VCALENDAR\r\n"

// Export renders every occupancy entry of acc as an all-day event. DTEND
// is the stored end plus one day.
func Export(acc *model.Accommodation, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	if acc.Name != "" {
		cal.SetName(acc.Name)
	}

	location := acc.Location.Address
	if location == "" {
		location = "Accommodation Location"
	}
	for i, e := range acc.OccupancyCalendar {
		uid := e.ID
		if uid == "" {
			uid = fmt.Sprintf("%s-%d", acc.ID, i)
		}
		ev := cal.AddEvent(uid + "@" + acc.ID)
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(e.StartDate)
		ev.SetAllDayEndAt(e.EndDate.AddDate(0, 0, 1))
		ev.SetSummary("Booking: " + guestOrDefault(e.GuestName))
		ev.SetDescription("Status: " + statusOrDefault(e.Status))
		ev.SetLocation(location)
	}
	return cal.Serialize()
}

func guestOrDefault(s string) string {
	if s == "" {
		return "Guest"
	}
	return s
}

func statusOrDefault(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
