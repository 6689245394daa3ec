package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/vacation-rental/internal/applog"
)

var (
	// ErrInvalidURL is returned for feed URLs that are not absolute http(s).
	ErrInvalidURL = errors.New("invalid feed url")
	// ErrUnavailable covers network failures and non-200 responses.
	ErrUnavailable = errors.New("feed unavailable")
	// ErrTimeout is returned when the fetch exceeded its deadline.
	ErrTimeout = errors.New("feed fetch timed out")
)

// maxFeedBytes is the largest feed accepted; bigger ones are rejected
// rather than parsed in part.
const maxFeedBytes = 5 << 20

// Fetcher downloads ICS feeds with a bounded timeout.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher returns a Fetcher whose requests give up after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, maxBytes: maxFeedBytes}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, redactURL(raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http/https allowed", ErrInvalidURL)
	}
	return u, nil
}

// AirbnbURL builds the export feed URL for an Airbnb listing calendar.
func AirbnbURL(calendarID, secretToken string) string {
	return fmt.Sprintf("https://www.airbnb.com/calendar/ical/%s.ics?s=%s",
		url.PathEscape(calendarID), url.QueryEscape(secretToken))
}

// Fetch downloads the feed at raw and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, raw string) ([]byte, error) {
	u, err := ValidateURL(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")

	applog.Debug("ics fetch start", "url", redactURL(raw))
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, redactURL(raw))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, redactURL(raw))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: feed too large (over %d bytes)", ErrUnavailable, f.maxBytes)
	}
	applog.Debug("ics fetch success", "url", redactURL(raw), "bytes", len(body))
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redactURL keeps scheme and host only; feed URLs usually embed secrets.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	if j := strings.IndexByte(rest, '?'); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
