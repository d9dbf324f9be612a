// Package token decodes access tokens on the client. Signatures are not
// verified here: the client only needs the expiry to decide when to refresh,
// and the backend remains the authority on validity.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshLeeway is how long before expiry a token is considered due for refresh.
const RefreshLeeway = 60 * time.Second

var ErrMalformedToken = errors.New("malformed access token")

// Claims holds the registered claims only. Private claims such as roles are
// ignored whatever their shape; the cached user record is the source of roles.
type Claims struct {
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Decode extracts the claims of raw without verifying its signature.
// Any structural problem is reported as ErrMalformedToken.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Expiry returns the expiry claim; ok is false when the token carries none.
func (c *Claims) Expiry() (t time.Time, ok bool) {
	if c == nil || c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.RegisteredClaims.ExpiresAt.Time, true
}

// ExpiresWithin reports whether the token expires before now+window.
// Tokens without an expiry never do.
func (c *Claims) ExpiresWithin(now time.Time, window time.Duration) bool {
	exp, ok := c.Expiry()
	if !ok {
		return false
	}
	return !exp.After(now.Add(window))
}
