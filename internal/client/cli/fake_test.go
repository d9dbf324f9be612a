package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/dmitrijs2005/eventbooking/internal/logging"
	"github.com/google/uuid"
)

type fakeAuth struct {
	user     *models.User
	redirect string

	loginID, loginPass string
	loginErr           error

	regUser, regEmail, regPass string
	regErr                     error

	logoutCalled bool
	logoutErr    error
}

func (f *fakeAuth) Login(_ context.Context, id, pass string) (*models.User, error) {
	f.loginID, f.loginPass = id, pass
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.user == nil {
		f.user = &models.User{ID: uuid.New(), Username: id}
	}
	return f.user, nil
}

func (f *fakeAuth) Register(_ context.Context, username, email, password string) (*models.User, error) {
	f.regUser, f.regEmail, f.regPass = username, email, password
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{Username: username, Email: email}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	f.user = nil
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.User, error) { return f.user, nil }

func (f *fakeAuth) IsAdmin(context.Context) (bool, error) { return f.user.IsAdmin(), nil }

func (f *fakeAuth) RedirectAfterLogin(context.Context) (string, error) {
	loc := f.redirect
	f.redirect = ""
	return loc, nil
}

type fakeEvents struct {
	page     *models.Page[models.Event]
	event    *models.Event
	err      error
	lastQ    models.PageQuery
	lastCat  string
	lastID   uuid.UUID
	lastIn   models.EventInput
	deleted  bool
	imageRaw []byte
	imageFn  string
}

func (f *fakeEvents) List(_ context.Context, q models.PageQuery, category string) (*models.Page[models.Event], error) {
	f.lastQ, f.lastCat = q, category
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &models.Page[models.Event]{}, nil
	}
	return f.page, nil
}

func (f *fakeEvents) Get(_ context.Context, id uuid.UUID) (*models.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEvents) Create(_ context.Context, in models.EventInput) (*models.Event, error) {
	f.lastIn = in
	return &models.Event{ID: uuid.New(), Name: in.Name, Category: in.Category}, f.err
}

func (f *fakeEvents) Update(_ context.Context, id uuid.UUID, in models.EventInput) (*models.Event, error) {
	f.lastID, f.lastIn = id, in
	return &models.Event{ID: id, Name: in.Name}, f.err
}

func (f *fakeEvents) Delete(_ context.Context, id uuid.UUID) (string, error) {
	f.lastID, f.deleted = id, true
	return "Event deleted successfully", f.err
}

func (f *fakeEvents) UploadImage(_ context.Context, id uuid.UUID, filename string, r io.Reader) (*models.Event, error) {
	f.lastID, f.imageFn = id, filename
	f.imageRaw, _ = io.ReadAll(r)
	return &models.Event{ID: id, ImageURL: "https://cdn.example.com/" + filename}, f.err
}

func (f *fakeEvents) DeleteImage(_ context.Context, id uuid.UUID) error {
	f.lastID = id
	return f.err
}

type fakeBookings struct {
	booking  *models.Booking
	page     *models.Page[models.Booking]
	err      error
	lastID   uuid.UUID
	lastQ    models.PageQuery
	canceled bool
}

func (f *fakeBookings) Create(_ context.Context, eventID uuid.UUID) (*models.Booking, error) {
	f.lastID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.booking, nil
}

func (f *fakeBookings) Mine(_ context.Context, q models.PageQuery) (*models.Page[models.Booking], error) {
	f.lastQ = q
	if f.page == nil {
		return &models.Page[models.Booking]{}, f.err
	}
	return f.page, f.err
}

func (f *fakeBookings) Get(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.lastID = id
	return f.booking, f.err
}

func (f *fakeBookings) Cancel(_ context.Context, id uuid.UUID) (string, error) {
	f.lastID, f.canceled = id, true
	return "Booking cancelled successfully", f.err
}

type testApp struct {
	*App
	auth     *fakeAuth
	events   *fakeEvents
	bookings *fakeBookings
	out      *bytes.Buffer
}

// newTestApp builds an App over fakes that reads its prompts from input.
// Passwords are read from input as well.
func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	ta := &testApp{
		auth:     &fakeAuth{},
		events:   &fakeEvents{},
		bookings: &fakeBookings{},
		out:      &bytes.Buffer{},
	}
	ta.App = &App{
		auth:     ta.auth,
		events:   ta.events,
		bookings: ta.bookings,
		reader:   rdr(input),
		out:      ta.out,
		log:      logging.Nop(),
		location: "/",
	}
	return ta
}

func adminUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "root",
		Email:    "root@example.com",
		Roles:    []models.Role{models.RoleObject(models.RoleAdmin)},
	}
}
