package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/vacation-rental/internal/config"
	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository/repotest"
	"github.com/iliyamo/vacation-rental/internal/router"
	"github.com/iliyamo/vacation-rental/internal/service"
	"github.com/iliyamo/vacation-rental/internal/utils"
)

const secret = "handler-test-secret"

type app struct {
	e      *echo.Echo
	accs   *repotest.Accommodations
	logins *repotest.LoginHistories
}

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return nil, service.ErrUpstreamUnavailable
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newApp(t *testing.T) *app {
	t.Helper()
	a := &app{
		e:      echo.New(),
		accs:   repotest.NewAccommodations(),
		logins: &repotest.LoginHistories{},
	}
	accommodations := service.NewAccommodationService(a.accs, repotest.NewAccommodationArchive()).
		WithOwners(repotest.Hosts{"host-1": model.RoleHost, "host-2": model.RoleHost, "root": model.RoleAdmin})
	reservations := service.NewReservationService(repotest.NewReservations(), repotest.NewReservationArchive(), a.accs)
	blogs := repotest.NewBlogs()
	logins := service.NewLoginHistoryService(a.logins)
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost}

	g := router.NewGuards(secret, nil, nil)
	router.RegisterRoutes(a.e, okPinger{})
	router.RegisterAuth(a.e, handler.NewAuthHandler(cfg, repotest.NewUsers(), repotest.NewTokens(), logins), g)
	router.RegisterAccommodations(a.e,
		handler.NewAccommodationHandler(accommodations),
		handler.NewOccupancyHandler(service.NewOccupancyService(a.accs), accommodations),
		handler.NewCalendarHandler(service.NewCalendarService(a.accs, stubFetcher{}, 1)),
		g)
	router.RegisterReservations(a.e, handler.NewReservationHandler(reservations), g)
	router.RegisterContent(a.e,
		handler.NewReviewHandler(service.NewReviewService(repotest.NewReviews(), a.accs)),
		handler.NewBlogHandler(service.NewBlogService(blogs), service.NewCommentService(repotest.NewComments(), blogs)),
		handler.NewLoginHistoryHandler(logins),
		g)
	return a
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, 5)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func (a *app) do(method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

const listing = `{"userId":"someone-else","name":"Cabin","phoneNumber":"+421900000000",
	"propertyType":{"en":"Wooden House"},"nightMin":1,"nightMax":7,"person":4,
	"locationDetails":{"city":"Poprad","country":"Slovakia"},"images":["a.jpg","b.jpg"]}`

func (a *app) createListing(t *testing.T, tok string) model.Accommodation {
	t.Helper()
	rec := a.do(http.MethodPost, "/accommodation", tok, listing)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var acc model.Accommodation
	decode(t, rec, &acc)
	return acc
}

func TestAccommodationOwnershipAndArchive(t *testing.T) {
	a := newApp(t)
	host, other, admin := token(t, "host-1", model.RoleHost), token(t, "host-2", model.RoleHost), token(t, "root", model.RoleAdmin)

	if rec := a.do(http.MethodPost, "/accommodation", token(t, "g", model.RoleGuest), listing); rec.Code != http.StatusForbidden {
		t.Fatalf("guest create: %d", rec.Code)
	}
	acc := a.createListing(t, host)
	if acc.UserID != "host-1" {
		t.Fatalf("owner = %q; hosts always own what they create", acc.UserID)
	}

	if rec := a.do(http.MethodPut, "/accommodation/"+acc.ID, other, `{"name":"Mine now"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: %d", rec.Code)
	}
	rec := a.do(http.MethodPut, "/accommodation/"+acc.ID, host, `{"name":"Lodge"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Lodge"`) {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	if rec := a.do(http.MethodDelete, "/accommodation/"+acc.ID, host, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/accommodation/"+acc.ID, "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/accommodation/deleted", host, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("host lists archive: %d", rec.Code)
	}
	var archived []model.ArchivedAccommodation
	rec = a.do(http.MethodGet, "/accommodation/deleted", admin, "")
	decode(t, rec, &archived)
	if len(archived) != 1 || archived[0].ID != acc.ID {
		t.Fatalf("archive = %+v", archived)
	}
	if rec := a.do(http.MethodPut, "/accommodation/restore/"+acc.ID, admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("restore: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodGet, "/accommodation/"+acc.ID, "", ""); rec.Code != http.StatusOK {
		t.Fatalf("get after restore: %d", rec.Code)
	}
}

func TestBookingReportsPartialAcceptance(t *testing.T) {
	a := newApp(t)
	acc := a.createListing(t, token(t, "host-1", model.RoleHost))
	path := "/accommodation/" + acc.ID + "/occupancyCalendar"

	rec := a.do(http.MethodPut, path, "", `{"startDate":"2024-06-03","endDate":"2024-06-10","status":"booked","guestName":"Ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first booking: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		AddedCount  int `json:"addedCount"`
		AddedRanges []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"addedRanges"`
	}
	rec = a.do(http.MethodPut, path, "", `{"startDate":"2024-06-01","endDate":"2024-06-05","status":"booked"}`)
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.AddedCount != 1 {
		t.Fatalf("partial booking: %d %s", rec.Code, rec.Body.String())
	}

	rec = a.do(http.MethodPut, path, "", `{"startDate":"2024-06-04","endDate":"2024-06-06","status":"booked"}`)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("occupied range: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodPut, path, "", `{"startDate":"June 1st","endDate":"2024-06-06","status":"booked"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", rec.Code)
	}
	if rec := a.do(http.MethodPut, "/accommodation/missing/occupancyCalendar", "", `{"startDate":"2024-06-01","endDate":"2024-06-02","status":"booked"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown listing: %d", rec.Code)
	}
}

func TestDeleteOccupancyEntry(t *testing.T) {
	a := newApp(t)
	host := token(t, "host-1", model.RoleHost)
	acc := a.createListing(t, host)
	path := "/accommodation/" + acc.ID + "/occupancyCalendar"
	a.do(http.MethodPut, path, "", `{"startDate":"2024-06-01","endDate":"2024-06-02","status":"booked"}`)
	a.do(http.MethodPut, path, "", `{"startDate":"2024-07-01","endDate":"2024-07-02","status":"blocked"}`)

	var cal struct {
		OccupancyCalendar []model.OccupancyEntry `json:"occupancyCalendar"`
	}
	decode(t, a.do(http.MethodGet, path, "", ""), &cal)
	if len(cal.OccupancyCalendar) != 2 {
		t.Fatalf("calendar = %+v", cal.OccupancyCalendar)
	}
	first, second := cal.OccupancyCalendar[0].ID, cal.OccupancyCalendar[1].ID

	rec := a.do(http.MethodDelete, "/"+acc.ID+"/occupancy/no-such-entry", host, "")
	decode(t, rec, &cal)
	if rec.Code != http.StatusOK || len(cal.OccupancyCalendar) != 2 {
		t.Fatalf("unknown entry: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodDelete, "/"+acc.ID+"/occupancy/"+first, token(t, "host-2", model.RoleHost), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign host: %d", rec.Code)
	}

	rec = a.do(http.MethodDelete, "/"+acc.ID+"/occupancy/"+first, host, "")
	decode(t, rec, &cal)
	if rec.Code != http.StatusOK || len(cal.OccupancyCalendar) != 1 || cal.OccupancyCalendar[0].ID != second {
		t.Fatalf("root delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = a.do(http.MethodDelete, "/accommodation/"+acc.ID+"/occupancy/"+second, host, "")
	decode(t, rec, &cal)
	if rec.Code != http.StatusOK || len(cal.OccupancyCalendar) != 0 {
		t.Fatalf("prefixed delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodDelete, "/missing/occupancy/"+first, host, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown listing: %d", rec.Code)
	}
}

func TestExportAlwaysReturnsCalendar(t *testing.T) {
	a := newApp(t)
	acc := a.createListing(t, token(t, "host-1", model.RoleHost))
	a.do(http.MethodPut, "/accommodation/"+acc.ID+"/occupancyCalendar", "", `{"startDate":"2024-06-01","endDate":"2024-06-02","status":"booked","guestName":"Ana"}`)

	rec := a.do(http.MethodGet, "/accommodation/"+acc.ID+"/calendar.ics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "SUMMARY:Booking: Ana") {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("content type = %q", ct)
	}

	rec = a.do(http.MethodGet, "/accommodation/nope/calendar.ics", "", "")
	if rec.Code != http.StatusNotFound || !strings.HasPrefix(rec.Body.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("missing listing: %d %q", rec.Code, rec.Body.String())
	}
}

func TestPreviewMapsUpstreamFailure(t *testing.T) {
	a := newApp(t)
	if rec := a.do(http.MethodGet, "/calendar?url=https://example.com/a.ics", "", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodGet, "/calendar/123/secret", "", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("airbnb preview: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodGet, "/calendar", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("preview without url: %d", rec.Code)
	}
}

func TestAuthFlowRecordsHostLogins(t *testing.T) {
	a := newApp(t)
	body := `{"email":"Host@Example.com","password":"s3cret-pass","name":"Hana","role":"host"}`
	if rec := a.do(http.MethodPost, "/v1/auth/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodPost, "/v1/auth/register", "", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/v1/auth/login", "", `{"email":"host@example.com","password":"wrong-pass"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", rec.Code)
	}

	rec := a.do(http.MethodPost, "/v1/auth/login", "", `{"email":"host@example.com","password":"s3cret-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		User   struct{ ID, Role string }
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}
	decode(t, rec, &login)
	if login.User.Role != model.RoleHost || login.Access.Token == "" {
		t.Fatalf("login body = %s", rec.Body.String())
	}

	var history []model.LoginHistory
	rec = a.do(http.MethodGet, "/login-histories?hostId=someone-else", login.Access.Token, "")
	decode(t, rec, &history)
	if len(history) != 1 || history[0].HostID != login.User.ID {
		t.Fatalf("history = %+v", history)
	}

	refresh := `{"refresh_token":"` + login.Refresh.Token + `"}`
	if rec := a.do(http.MethodPost, "/v1/auth/refresh", "", refresh); rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/v1/auth/refresh", "", refresh); rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: %d", rec.Code)
	}

	rec = a.do(http.MethodGet, "/v1/auth/me", login.Access.Token, "")
	if !strings.Contains(rec.Body.String(), login.User.ID) {
		t.Fatalf("me: %s", rec.Body.String())
	}
	if rec := a.do(http.MethodPost, "/v1/auth/logout", login.Access.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/v1/auth/logout", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("anonymous logout: %d", rec.Code)
	}
}

func TestReservationRoutes(t *testing.T) {
	a := newApp(t)
	acc := a.createListing(t, token(t, "host-1", model.RoleHost))
	body := `{"accommodationId":"` + acc.ID + `","name":"Ivy","email":"ivy@example.com",
		"checkInDate":"2024-06-01","checkOutDate":"2024-06-04","guests":2}`

	rec := a.do(http.MethodPost, "/reservations", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var r model.Reservation
	decode(t, rec, &r)
	if r.AccommodationProvider != "host-1" || r.IsApproved != model.ApprovalPending {
		t.Fatalf("reservation = %+v", r)
	}

	if rec := a.do(http.MethodGet, "/reservations/"+r.ID, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous read: %d", rec.Code)
	}
	guest := token(t, "g-1", model.RoleGuest)
	if rec := a.do(http.MethodGet, "/reservations/%7B"+r.ID+"%7D", guest, ""); rec.Code != http.StatusOK {
		t.Fatalf("braced id: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodPost, "/reservations", "", `{"name":"x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create: %d", rec.Code)
	}
}

func TestBlogAndComments(t *testing.T) {
	a := newApp(t)
	admin := token(t, "root", model.RoleAdmin)
	rec := a.do(http.MethodPost, "/blogs", admin, `{"title":"Best Tatra Hikes","content":"...","author":"Ed","blogType":"customer"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create blog: %d %s", rec.Code, rec.Body.String())
	}
	var b model.Blog
	decode(t, rec, &b)

	if rec := a.do(http.MethodGet, "/blogs/"+b.Slug, "", ""); rec.Code != http.StatusOK {
		t.Fatalf("get by slug: %d", rec.Code)
	}
	comment := `{"blogId":"` + b.ID + `","name":"Ana","email":"ana@example.com","comment":"Great","rating":4}`
	if rec := a.do(http.MethodPost, "/blog-comments", "", comment); rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}
	var page service.CommentPage
	decode(t, a.do(http.MethodGet, "/blog-comments/blog/"+b.ID+"?page=1&limit=5", "", ""), &page)
	if len(page.Comments) != 1 || page.RatingStats.AverageRating != 4 {
		t.Fatalf("page = %+v", page)
	}
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	if rec := a.do(http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	if rec := a.do(http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path: %d", rec.Code)
	}
}
