package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/client/token"
	"github.com/dmitrijs2005/eventbooking/internal/logging"
)

const (
	defaultRefreshTimeout = 15 * time.Second
	maxResponseBytes      = 32 << 20
	unauthorizedMessage   = "Unauthorized access - please log in again."
)

type HTTPClient struct {
	baseURL        string
	http           *http.Client
	jar            http.CookieJar
	store          TokenStore
	nav            Navigator
	log            logging.Logger
	now            func() time.Time
	refreshTimeout time.Duration

	guard RefreshGuard
	endMu sync.Mutex
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCookieJar sets the jar that carries the refresh cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *HTTPClient) { c.jar = jar }
}

func WithNavigator(n Navigator) Option {
	return func(c *HTTPClient) {
		if n != nil {
			c.nav = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l.With("module", "client")
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

// WithRefreshTimeout bounds a single refresh flight.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api"). Endpoints passed to Request are
// appended to it.
func NewHTTPClient(baseURL string, store TokenStore, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		store:          store,
		nav:            nopNavigator{},
		log:            logging.Nop(),
		now:            time.Now,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.jar != nil {
		hc := *c.http
		hc.Jar = c.jar
		c.http = &hc
	}
	return c
}

// Request sends body (JSON-encoded when non-nil) to endpoint and returns the
// decoded envelope. With requiresAuth the token is refreshed first when it is
// about to expire, and the call fails with *AuthRequiredError when no token
// is available.
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, body any, requiresAuth bool) (*Envelope, error) {
	var payload io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, endpoint, payload, contentType, requiresAuth)
}

// Upload posts r as a multipart/form-data file under field. It follows the
// same auth and status policy as Request.
func (c *HTTPClient) Upload(ctx context.Context, endpoint, field, filename string, r io.Reader, requiresAuth bool) (*Envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, endpoint, &buf, mw.FormDataContentType(), requiresAuth)
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, requiresAuth bool) (*Envelope, error) {
	var bearer string
	if requiresAuth {
		if err := c.EnsureValidAccessToken(ctx); err != nil {
			return nil, err
		}
		tok, err := c.store.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
		if tok == "" {
			return nil, &AuthRequiredError{Endpoint: endpoint}
		}
		bearer = tok
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	c.log.Debug(ctx, "api request", "method", method, "endpoint", endpoint, "auth", requiresAuth)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, ctxErr)
		}
		c.log.Warn(ctx, "api request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, &NetworkError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	return c.handleResponse(ctx, method, endpoint, resp)
}

func (c *HTTPClient) handleResponse(ctx context.Context, method, endpoint string, resp *http.Response) (*Envelope, error) {
	if resp.StatusCode == http.StatusNoContent {
		return &Envelope{Success: true}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Method: method, Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		c.log.Debug(ctx, "empty response from API", "endpoint", endpoint, "status", resp.StatusCode)
		return &Envelope{Success: true}, nil
	}
	if !json.Valid(raw) {
		return nil, newMalformedResponseError(resp.StatusCode, raw)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	env := parseEnvelope(raw, ok)
	if ok {
		return env, nil
	}

	herr := &HTTPError{Status: resp.StatusCode, Message: env.Error}
	if herr.Message == "" {
		herr.Message = env.Message
	}
	if resp.StatusCode == http.StatusUnauthorized && !isRefreshEndpoint(endpoint) {
		if herr.Message == "" {
			herr.Message = unauthorizedMessage
		}
		c.terminateSession(ctx, "unauthorized response")
	}
	c.log.Debug(ctx, "api error response", "endpoint", endpoint, "status", resp.StatusCode, "error", herr.Error())
	return nil, herr
}

// EnsureValidAccessToken refreshes the stored token when it expires within
// token.RefreshLeeway or cannot be decoded. Without a token it does nothing.
// A failed refresh has already ended the session and yields ErrRefreshFailed.
func (c *HTTPClient) EnsureValidAccessToken(ctx context.Context) error {
	tok, err := c.store.Token(ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	if tok == "" || !c.needsRefresh(ctx, tok) {
		return nil
	}

	c.log.Debug(ctx, "access token expired or expiring soon", "state", c.guard.State(), "waiters", c.guard.waiters())

	ok, err := c.guard.Do(ctx, func(ctx context.Context) bool {
		return c.refresh(ctx, false)
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrRefreshFailed
	}
	return nil
}

// RefreshAccessToken exchanges the refresh cookie for a new access token.
// Concurrent callers share one network call. It never fails loudly: any
// problem ends the session and yields false.
func (c *HTTPClient) RefreshAccessToken(ctx context.Context) bool {
	ok, err := c.guard.Do(ctx, func(ctx context.Context) bool {
		return c.refresh(ctx, true)
	})
	return err == nil && ok
}

func (c *HTTPClient) needsRefresh(ctx context.Context, raw string) bool {
	claims, err := token.Decode(raw)
	if err != nil {
		c.log.Debug(ctx, "stored access token cannot be decoded", "error", err)
		return true
	}
	return claims.ExpiresWithin(c.now(), token.RefreshLeeway)
}

// refresh is the body of a refresh flight. Unless forced, it first re-reads
// the stored token: a flight that lost the race to another one finds a
// fresh token (success) or a cleared session (failure) and skips the call.
func (c *HTTPClient) refresh(ctx context.Context, force bool) bool {
	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	if !force {
		tok, err := c.store.Token(ctx)
		switch {
		case err != nil:
			c.log.Warn(ctx, "read access token before refresh", "error", err)
		case tok == "":
			return false
		case !c.needsRefresh(ctx, tok):
			return true
		}
	}

	if err := c.postRefresh(ctx); err != nil {
		c.log.Warn(ctx, "token refresh failed", "error", err)
		c.terminateSession(ctx, "refresh failed")
		return false
	}
	c.log.Info(ctx, "access token refreshed")
	return true
}

func (c *HTTPClient) postRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshEndpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: http.MethodPost, Endpoint: RefreshEndpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode}
	}

	var payload struct {
		Success bool `json:"success"`
		Data    *struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if !payload.Success || payload.Data == nil || payload.Data.AccessToken == "" {
		return errors.New("refresh response did not contain an access token")
	}

	if err := c.store.SetToken(ctx, payload.Data.AccessToken); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	return nil
}

// terminateSession clears the stored credentials and, if that removed
// anything, remembers where the user was and redirects to login. Calls are
// serialized so that concurrent failures produce a single redirect.
func (c *HTTPClient) terminateSession(ctx context.Context, reason string) {
	ctx = context.WithoutCancel(ctx)

	c.endMu.Lock()
	defer c.endMu.Unlock()

	cleared, err := c.store.Clear(ctx)
	if err != nil {
		c.log.Error(ctx, "clear session", "error", err)
		return
	}
	if !cleared {
		return
	}

	loc := c.nav.CurrentLocation()
	c.log.Info(ctx, "session ended", "reason", reason, "location", loc)
	if isAuthLocation(loc) {
		return
	}
	if loc != "" && loc != LocationHome {
		if err := c.store.SetRedirect(ctx, loc); err != nil {
			c.log.Warn(ctx, "remember location", "location", loc, "error", err)
		}
	}
	c.nav.RedirectToLogin(ctx)
}

func isRefreshEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, RefreshEndpoint)
}

func isAuthLocation(loc string) bool {
	return strings.HasSuffix(loc, LocationLogin) || strings.HasSuffix(loc, LocationRegister)
}
