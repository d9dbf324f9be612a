package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	token    string
	hasUser  bool
	redirect string
	clears   int
	tokenErr error
}

func newFakeStore(token string) *fakeStore {
	return &fakeStore{token: token, hasUser: token != ""}
}

func (s *fakeStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.tokenErr
}

func (s *fakeStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *fakeStore) Clear(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" && !s.hasUser {
		return false, nil
	}
	s.token, s.hasUser = "", false
	s.clears++
	return true, nil
}

func (s *fakeStore) SetRedirect(_ context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = location
	return nil
}

func (s *fakeStore) snapshot() (token string, clears int, redirect string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.clears, s.redirect
}

type fakeNav struct {
	location  string
	redirects atomic.Int32
}

func (n *fakeNav) CurrentLocation() string { return n.location }

func (n *fakeNav) RedirectToLogin(context.Context) { n.redirects.Add(1) }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// makeToken returns a signed JWT for subject expiring at exp.
func makeToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}
