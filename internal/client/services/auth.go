// Package services contains the application services of the event booking
// client. They translate domain calls into API requests and keep the local
// session in step with the backend.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
	"github.com/dmitrijs2005/eventbooking/internal/client/models"
)

var ErrInvalidLoginResponse = errors.New("login response did not contain a token and user")

// SessionStore is the part of the session the auth service manages.
type SessionStore interface {
	SaveLogin(ctx context.Context, token string, user *models.User) error
	User(ctx context.Context) (*models.User, error)
	Clear(ctx context.Context) (bool, error)
	PopRedirect(ctx context.Context) (string, error)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and store token and user together.
//   - Register: create a new account; it does not log in.
//   - Logout: end the session locally, then tell the server.
//   - CurrentUser / IsAdmin: answer from the cached user, no network.
//   - RedirectAfterLogin: the location remembered when the session expired.
type AuthService interface {
	Login(ctx context.Context, emailOrUsername, password string) (*models.User, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAdmin(ctx context.Context) (bool, error)
	RedirectAfterLogin(ctx context.Context) (string, error)
}

type authService struct {
	api     client.API
	session SessionStore
}

func NewAuthService(api client.API, session SessionStore) AuthService {
	return &authService{api: api, session: session}
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (a *authService) Login(ctx context.Context, emailOrUsername, password string) (*models.User, error) {
	env, err := a.api.Request(ctx, http.MethodPost, "/auth/login", loginRequest{emailOrUsername, password}, false)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	var resp loginResponse
	if err := env.Decode(&resp); err != nil || resp.Token == "" || resp.User == nil {
		return nil, ErrInvalidLoginResponse
	}

	if err := a.session.SaveLogin(ctx, resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return resp.User, nil
}

func (a *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	env, err := a.api.Request(ctx, http.MethodPost, "/auth/register", registerRequest{username, email, password}, false)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	var u models.User
	if err := env.Decode(&u); err != nil {
		if errors.Is(err, client.ErrNoData) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode registered user: %w", err)
	}
	return &u, nil
}

// Logout clears the local session before calling the server, so a failing
// or unauthorized logout call still leaves the client logged out and does not
// bounce the user to the login prompt.
func (a *authService) Logout(ctx context.Context) error {
	if _, err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if _, err := a.api.Request(ctx, http.MethodPost, "/auth/logout", nil, false); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	return a.session.User(ctx)
}

func (a *authService) IsAdmin(ctx context.Context) (bool, error) {
	u, err := a.session.User(ctx)
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

func (a *authService) RedirectAfterLogin(ctx context.Context) (string, error) {
	return a.session.PopRedirect(ctx)
}
