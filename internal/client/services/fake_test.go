package services

import (
	"context"
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
	"github.com/dmitrijs2005/eventbooking/internal/client/models"
)

type apiCall struct {
	Method       string
	Endpoint     string
	Body         any
	RequiresAuth bool

	Field    string
	Filename string
	Upload   []byte
}

// fakeAPI implements client.API for unit tests. Responses are served in
// order; the last one repeats.
type fakeAPI struct {
	calls     []apiCall
	responses []*client.Envelope
	errs      []error
}

func (f *fakeAPI) respond(env *client.Envelope, err error) *fakeAPI {
	f.responses = append(f.responses, env)
	f.errs = append(f.errs, err)
	return f
}

func (f *fakeAPI) next() (*client.Envelope, error) {
	i := len(f.calls) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	if i < 0 {
		return &client.Envelope{Success: true}, nil
	}
	return f.responses[i], f.errs[i]
}

func (f *fakeAPI) Request(_ context.Context, method, endpoint string, body any, requiresAuth bool) (*client.Envelope, error) {
	f.calls = append(f.calls, apiCall{Method: method, Endpoint: endpoint, Body: body, RequiresAuth: requiresAuth})
	return f.next()
}

func (f *fakeAPI) Upload(_ context.Context, endpoint, field, filename string, r io.Reader, requiresAuth bool) (*client.Envelope, error) {
	raw, _ := io.ReadAll(r)
	f.calls = append(f.calls, apiCall{Method: "POST", Endpoint: endpoint, RequiresAuth: requiresAuth, Field: field, Filename: filename, Upload: raw})
	return f.next()
}

func (f *fakeAPI) last() apiCall { return f.calls[len(f.calls)-1] }

func ok(data string) *client.Envelope {
	env := &client.Envelope{Success: true}
	if data != "" {
		env.Data = json.RawMessage(data)
	}
	return env
}

type fakeSession struct {
	token    string
	user     *models.User
	redirect string

	saveErr  error
	clearErr error
	clears   int
}

func (s *fakeSession) SaveLogin(_ context.Context, token string, user *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token, s.user = token, user
	return nil
}

func (s *fakeSession) User(context.Context) (*models.User, error) { return s.user, nil }

func (s *fakeSession) Clear(context.Context) (bool, error) {
	if s.clearErr != nil {
		return false, s.clearErr
	}
	had := s.token != "" || s.user != nil
	s.token, s.user = "", nil
	s.clears++
	return had, nil
}

func (s *fakeSession) PopRedirect(context.Context) (string, error) {
	r := s.redirect
	s.redirect = ""
	return r, nil
}
