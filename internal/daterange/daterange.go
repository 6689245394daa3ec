// Package daterange works with calendar days. Every date is normalized to
// midnight UTC of its calendar date so values coming from JSON, ICS feeds
// and query strings compare equal regardless of the zone they were written
// in.
package daterange

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Layout is the canonical day format.
const Layout = "2006-01-02"

// ErrInvalidDate is returned for date strings that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Parse accepts YYYY-MM-DD or RFC 3339. A timestamp keeps the calendar
// date it names in its own offset.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Normalize(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Normalize truncates t to midnight UTC of the calendar date it shows.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar date of t.
func Format(t time.Time) string { return Normalize(t).Format(Layout) }

// ExpandToDays lists every day from start to end inclusive. An end before
// start yields nothing.
func ExpandToDays(start, end time.Time) []string {
	start, end = Normalize(start), Normalize(end)
	if end.Before(start) {
		return nil
	}
	days := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(Layout))
	}
	return days
}

// ExpandStrings is ExpandToDays over unparsed inputs.
func ExpandStrings(start, end string) ([]string, error) {
	s, err := Parse(start)
	if err != nil {
		return nil, err
	}
	e, err := Parse(end)
	if err != nil {
		return nil, err
	}
	return ExpandToDays(s, e), nil
}

// GroupContiguous splits days into maximal runs of consecutive days. The
// input is sorted and deduplicated first.
func GroupContiguous(days []string) ([]Range, error) {
	if len(days) == 0 {
		return nil, nil
	}
	parsed := make([]time.Time, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		t, err := time.Parse(Layout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
		parsed = append(parsed, t)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	out := []Range{{Start: parsed[0], End: parsed[0]}}
	for _, t := range parsed[1:] {
		last := &out[len(out)-1]
		if t.Equal(last.End.AddDate(0, 0, 1)) {
			last.End = t
			continue
		}
		out = append(out, Range{Start: t, End: t})
	}
	return out, nil
}

// Overlaps reports whether two inclusive ranges share at least one day.
func Overlaps(a, b Range) bool {
	as, ae := Normalize(a.Start), Normalize(a.End)
	bs, be := Normalize(b.Start), Normalize(b.End)
	return !as.After(be) && !bs.After(ae)
}

// Days returns the number of days in r, or zero when r is inverted.
func (r Range) Days() int {
	s, e := Normalize(r.Start), Normalize(r.End)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func (r Range) String() string { return Format(r.Start) + ".." + Format(r.End) }
