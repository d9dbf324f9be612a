package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// Well-known locations reported by a Navigator.
const (
	LocationHome     = "/"
	LocationLogin    = "/login"
	LocationRegister = "/register"
)

// RefreshEndpoint is exchanged for a new access token using the refresh cookie.
const RefreshEndpoint = "/auth/refresh"

// API is what the domain services need from the transport.
type API interface {
	Request(ctx context.Context, method, endpoint string, body any, requiresAuth bool) (*Envelope, error)
	Upload(ctx context.Context, endpoint, field, filename string, r io.Reader, requiresAuth bool) (*Envelope, error)
}

// TokenStore holds the access token and the user it belongs to.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	// Clear drops token and user and reports whether there was anything to drop.
	Clear(ctx context.Context) (bool, error)
	SetRedirect(ctx context.Context, location string) error
}

type CookieStore interface {
	LoadCookies(ctx context.Context) ([]byte, error)
	SaveCookies(ctx context.Context, data []byte) error
}

// Navigator lets the client send the user to the login entry point without
// knowing anything about the UI. RedirectToLogin runs while the session is
// being torn down and must not call back into the client.
type Navigator interface {
	CurrentLocation() string
	RedirectToLogin(ctx context.Context)
}

type nopNavigator struct{}

func (nopNavigator) CurrentLocation() string         { return "" }
func (nopNavigator) RedirectToLogin(context.Context) {}

// Envelope is the uniform {success, data, error, message} response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Decode unmarshals the data member into v. ErrNoData is returned when the
// response carried no data.
func (e *Envelope) Decode(v any) error {
	if e == nil || len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return ErrNoData
	}
	return json.Unmarshal(e.Data, v)
}

// parseEnvelope reads a JSON body. Bodies that are valid JSON but not an
// object become the data of a synthesized envelope.
func parseEnvelope(raw []byte, ok bool) *Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Envelope{Success: ok, Data: json.RawMessage(raw)}
	}
	return &env
}
