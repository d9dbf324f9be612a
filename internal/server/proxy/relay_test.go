package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method, path, query, auth, cookie, contentType string
	body                                           []byte
}

// upstream answers every request with status and body and records what it saw.
func upstream(t *testing.T, status int, body string, headers map[string]string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.method, s.path, s.query = r.Method, r.URL.EscapedPath(), r.URL.RawQuery
		s.auth, s.cookie, s.contentType = r.Header.Get("Authorization"), r.Header.Get("Cookie"), r.Header.Get("Content-Type")
		s.body, _ = io.ReadAll(r.Body)
		for k, v := range headers {
			w.Header().Add(k, v)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func serve(t *testing.T, p *Relay, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	mux := http.NewServeMux()
	p.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func newRelay(srv *httptest.Server) *Relay {
	return NewRelay(srv.URL+"/api/", srv.Client(), logging.Nop())
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		want       map[string]any
	}{
		{"json passthrough", 200, `{"success":true,"data":{"id":1}}`, 200, map[string]any{"success": true, "data": map[string]any{"id": float64(1)}}},
		{"empty body", 200, "", 200, map[string]any{"success": true, "data": nil}},
		{"text body", 200, "hello", 200, map[string]any{"success": true, "data": "hello"}},
		{"upstream error with body", 404, "Event not found", 404, map[string]any{"success": false, "error": "API error: 404 Event not found"}},
		{"upstream error without body", 503, "", 503, map[string]any{"success": false, "error": "API error: 503 Service Unavailable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, s := upstream(t, tt.status, tt.body, nil)
			req := httptest.NewRequest(http.MethodGet, "/api/proxy/events/category/CONCERT?page=1&size=10", nil)
			req.Header.Set("Authorization", "Bearer tok")

			rec, env := serve(t, newRelay(srv), req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.want, env)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			assert.Equal(t, http.MethodGet, s.method)
			assert.Equal(t, "/api/events/category/CONCERT", s.path)
			assert.Equal(t, "page=1&size=10", s.query)
			assert.Equal(t, "Bearer tok", s.auth)
		})
	}
}

func TestCookiesRelayed(t *testing.T) {
	srv, s := upstream(t, 200, `{"success":true,"data":{"accessToken":"t2"}}`,
		map[string]string{"Set-Cookie": "refreshToken=r2; Path=/; HttpOnly"})

	req := httptest.NewRequest(http.MethodPost, "/api/proxy/auth/refresh", nil)
	req.Header.Set("Cookie", "refreshToken=r1")

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "refreshToken=r1", s.cookie)
	assert.Equal(t, "refreshToken=r2; Path=/; HttpOnly", rec.Header().Get("Set-Cookie"))
}

func TestPost_JSON(t *testing.T) {
	srv, s := upstream(t, 201, `{"success":true,"data":{"id":"b1"}}`, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy/bookings", strings.NewReader(`{"eventId":"e1"}`))
	req.Header.Set("Content-Type", "application/json")

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "data": map[string]any{"id": "b1"}}, env)
	assert.JSONEq(t, `{"eventId":"e1"}`, string(s.body))
	assert.Equal(t, "application/json", s.contentType)
}

func TestPost_InvalidJSON(t *testing.T) {
	srv, s := upstream(t, 200, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy/bookings", strings.NewReader(`{"eventId":`))
	req.Header.Set("Content-Type", "application/json")

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.True(t, strings.HasPrefix(env["error"].(string), "Invalid JSON body: "))
	assert.Empty(t, s.method, "upstream must not be called")
}

func TestPost_Created(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]any
	}{
		{"empty", "", map[string]any{"success": true}},
		{"text", "created", map[string]any{"success": true, "message": "created"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := upstream(t, 201, tt.body, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/proxy/auth/register", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")

			rec, env := serve(t, newRelay(srv), req)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestPost_NoContent(t *testing.T) {
	srv, _ := upstream(t, 204, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/auth/logout", nil)

	rec, _ := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestPost_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   map[string]any
	}{
		{"json object merged", 409, `{"error":"Already booked","code":"DUP"}`,
			map[string]any{"success": false, "error": "Already booked", "code": "DUP"}},
		{"success key cannot flip", 400, `{"success":true,"message":"odd"}`,
			map[string]any{"success": false, "message": "odd"}},
		{"text", 500, "boom", map[string]any{"success": false, "error": "boom"}},
		{"empty", 401, "", map[string]any{"success": false, "error": "Unauthorized"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := upstream(t, tt.status, tt.body, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/proxy/bookings", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")

			rec, env := serve(t, newRelay(srv), req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestPost_MultipartStreamsThrough(t *testing.T) {
	srv, s := upstream(t, 200, `{"success":true,"data":{"imageUrl":"u"}}`, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("imageFile", "poster.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/proxy/events/e1/image", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, mw.FormDataContentType(), s.contentType)
	assert.Equal(t, buf.Bytes(), s.body)
}

func TestPost_OtherContentType(t *testing.T) {
	srv, s := upstream(t, 200, "ok", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/notes", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "data": "ok"}, env)
	assert.Equal(t, "text/plain", s.contentType)
	assert.Equal(t, "plain", string(s.body))
}

func TestPut_Validation(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantError   string
	}{
		{"text body", "text/plain", "x", http.StatusUnsupportedMediaType, "Request body present but Content-Type is not application/json"},
		{"no body", "", "", http.StatusBadRequest, "Request body is required for PUT"},
		{"empty json body", "application/json", "", http.StatusBadRequest, "Request body is required for PUT"},
		{"null json body", "application/json", "null", http.StatusBadRequest, "Request body is required for PUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, s := upstream(t, 200, "", nil)
			req := httptest.NewRequest(http.MethodPut, "/api/proxy/events/e1", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec, env := serve(t, newRelay(srv), req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, map[string]any{"success": false, "error": tt.wantError}, env)
			assert.Empty(t, s.method)
		})
	}

	srv, _ := upstream(t, 200, "", nil)
	req := httptest.NewRequest(http.MethodPut, "/api/proxy/events/e1", strings.NewReader("{bad"))
	req.Header.Set("Content-Type", "application/json")
	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env["error"], "Invalid JSON body: ")
}

func TestPut_Forwards(t *testing.T) {
	srv, s := upstream(t, 200, `{"success":true,"data":{"name":"New"}}`, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/proxy/events/e1", strings.NewReader(`{"name":"New"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, http.MethodPut, s.method)
	assert.Equal(t, "application/json", s.contentType)

	srv, _ = upstream(t, 204, "", nil)
	req = httptest.NewRequest(http.MethodPut, "/api/proxy/events/e1", strings.NewReader(`{"name":"New"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, _ = serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   map[string]any
	}{
		{"no content", 204, "", map[string]any{"success": true, "message": "Resource deleted successfully"}},
		{"empty ok", 200, "", map[string]any{"success": true, "message": "Resource deleted successfully"}},
		{"envelope passthrough", 200, `{"success":true,"message":"Event deleted"}`, map[string]any{"success": true, "message": "Event deleted"}},
		{"json without success", 200, `{"id":"e1"}`, map[string]any{"success": true, "data": map[string]any{"id": "e1"}}},
		{"text", 200, "gone", map[string]any{"success": true, "message": "gone"}},
		{"accepted empty", 202, "", map[string]any{"success": true, "message": "Operation successful, no content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, s := upstream(t, tt.status, tt.body, nil)
			req := httptest.NewRequest(http.MethodDelete, "/api/proxy/bookings/b1", nil)
			req.Header.Set("Authorization", "Bearer tok")

			rec, env := serve(t, newRelay(srv), req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, env)
			assert.Equal(t, "/api/bookings/b1", s.path)
			assert.Equal(t, "Bearer tok", s.auth)
		})
	}
}

func TestDelete_UpstreamError(t *testing.T) {
	srv, _ := upstream(t, 403, `{"error":"Forbidden"}`, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/proxy/events/e1", nil)

	rec, env := serve(t, newRelay(srv), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Forbidden"}, env)
}

func TestOptionsAndMethodNotAllowed(t *testing.T) {
	srv, s := upstream(t, 200, "", nil)

	rec, _ := serve(t, newRelay(srv), httptest.NewRequest(http.MethodOptions, "/api/proxy/events", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec, env := serve(t, newRelay(srv), httptest.NewRequest(http.MethodPatch, "/api/proxy/events", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Method PATCH not allowed"}, env)
	assert.Empty(t, s.method)
}

func TestUpstreamDown(t *testing.T) {
	srv, _ := upstream(t, 200, "", nil)
	p := newRelay(srv)
	srv.Close()

	rec, env := serve(t, p, httptest.NewRequest(http.MethodGet, "/api/proxy/events", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, env["success"])
	assert.NotEmpty(t, env["error"])
}

func TestBodyTooLarge(t *testing.T) {
	srv, s := upstream(t, 200, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/proxy/bookings", strings.NewReader(`{"eventId":"0123456789"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 4)

	mux := http.NewServeMux()
	newRelay(srv).Register(mux)
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body exceeds 4 bytes")
	assert.Empty(t, s.method)
}
