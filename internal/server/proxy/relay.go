// Package proxy relays /api/proxy/{path...} requests to the upstream booking
// API and normalizes every answer into the {success, data, error, message}
// envelope the client expects.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
)

// Prefix is the route every relayed path lives under.
const Prefix = "/api/proxy/"

const deletedMessage = "Resource deleted successfully"

// Relay forwards requests to the upstream API.
type Relay struct {
	upstream string
	client   *http.Client
	logger   logging.Logger
}

// NewRelay returns a relay for the API rooted at upstream. A nil client
// means http.DefaultClient.
func NewRelay(upstream string, client *http.Client, l logging.Logger) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{
		upstream: strings.TrimRight(upstream, "/"),
		client:   client,
		logger:   l.With("module", "proxy"),
	}
}

// Register mounts the relay on mux.
func (p *Relay) Register(mux *http.ServeMux) {
	mux.Handle(Prefix+"{path...}", p)
}

func (p *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		p.options(w)
	case http.MethodGet:
		p.get(w, r)
	case http.MethodPost:
		p.post(w, r)
	case http.MethodPut:
		p.put(w, r)
	case http.MethodDelete:
		p.delete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, failure(fmt.Sprintf("Method %s not allowed", r.Method)))
	}
}

func (p *Relay) options(w http.ResponseWriter) {
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") == "" {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

// target builds the upstream URL. The escaped form of the path is kept so
// encoded segments survive the hop.
func (p *Relay) target(r *http.Request, withQuery bool) string {
	path := strings.TrimPrefix(r.URL.EscapedPath(), Prefix)
	u := p.upstream + "/" + path
	if withQuery && r.URL.RawQuery != "" {
		u += "?" + r.URL.RawQuery
	}
	return u
}

// upstreamResponse is a fully read upstream answer.
type upstreamResponse struct {
	status int
	body   []byte
}

func (u *upstreamResponse) ok() bool { return u.status >= 200 && u.status < 300 }

func (u *upstreamResponse) blank() bool { return len(bytes.TrimSpace(u.body)) == 0 }

func (u *upstreamResponse) text() string {
	if u.blank() {
		return http.StatusText(u.status)
	}
	return string(u.body)
}

// forward sends the request upstream with the caller's Authorization and
// Cookie headers and relays Set-Cookie back to w.
func (p *Relay) forward(ctx context.Context, w http.ResponseWriter, r *http.Request, method, url string, body io.Reader, contentType string) (*upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, h := range []string{"Authorization", "Cookie", "Accept"} {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	if body != nil && req.ContentLength == 0 && r.ContentLength > 0 {
		req.ContentLength = r.ContentLength
	}

	p.logger.Debug(ctx, "relaying request", "method", method, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	for _, c := range resp.Header.Values("Set-Cookie") {
		w.Header().Add("Set-Cookie", c)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	return &upstreamResponse{status: resp.StatusCode, body: data}, nil
}

func (p *Relay) upstreamFailed(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error(r.Context(), "upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusBadGateway, failure(err.Error()))
}

// readBody reads the whole request body. It answers the client itself (and
// returns false) when the body is over the configured limit or unreadable.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err == nil {
		return data, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, failure(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)))
		return nil, false
	}
	writeJSON(w, http.StatusBadRequest, failure("Failed to read request body: "+err.Error()))
	return nil, false
}

func isJSONContent(ct string) bool { return strings.Contains(ct, "application/json") }

func invalidJSON(body []byte) error {
	var v any
	return json.Unmarshal(body, &v)
}

func (p *Relay) get(w http.ResponseWriter, r *http.Request) {
	resp, err := p.forward(r.Context(), w, r, http.MethodGet, p.target(r, true), nil, "application/json")
	if err != nil {
		p.upstreamFailed(w, r, err)
		return
	}
	if !resp.ok() {
		p.logger.Warn(r.Context(), "upstream returned error", "method", "GET", "status", resp.status)
		writeJSON(w, resp.status, failure(fmt.Sprintf("API error: %d %s", resp.status, resp.text())))
		return
	}
	writeSuccess(w, resp)
}

func (p *Relay) post(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	url := p.target(r, false)

	var (
		resp *upstreamResponse
		err  error
	)
	switch {
	case strings.Contains(ct, "multipart/form-data"):
		resp, err = p.forward(r.Context(), w, r, http.MethodPost, url, r.Body, ct)
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, failure("Request body too large"))
			return
		}
	case isJSONContent(ct):
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		if jerr := invalidJSON(body); jerr != nil {
			writeJSON(w, http.StatusBadRequest, failure("Invalid JSON body: "+jerr.Error()))
			return
		}
		resp, err = p.forward(r.Context(), w, r, http.MethodPost, url, bytes.NewReader(body), "application/json")
	default:
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		var rd io.Reader
		if len(body) > 0 {
			rd = bytes.NewReader(body)
		}
		resp, err = p.forward(r.Context(), w, r, http.MethodPost, url, rd, ct)
	}
	if err != nil {
		p.upstreamFailed(w, r, err)
		return
	}

	switch {
	case !resp.ok():
		p.writeUpstreamError(w, r, resp)
	case resp.status == http.StatusCreated:
		if resp.blank() {
			writeJSON(w, http.StatusCreated, envelope{"success": true})
			return
		}
		if json.Valid(resp.body) {
			writeRaw(w, http.StatusCreated, resp.body)
			return
		}
		writeJSON(w, http.StatusCreated, envelope{"success": true, "message": string(resp.body)})
	case resp.status == http.StatusNoContent:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeSuccess(w, resp)
	}
}

func (p *Relay) put(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	blank := len(bytes.TrimSpace(body)) == 0

	if !isJSONContent(r.Header.Get("Content-Type")) {
		if !blank {
			writeJSON(w, http.StatusUnsupportedMediaType, failure("Request body present but Content-Type is not application/json"))
			return
		}
		writeJSON(w, http.StatusBadRequest, failure("Request body is required for PUT"))
		return
	}
	if blank || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		writeJSON(w, http.StatusBadRequest, failure("Request body is required for PUT"))
		return
	}
	if jerr := invalidJSON(body); jerr != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid JSON body: "+jerr.Error()))
		return
	}

	resp, err := p.forward(r.Context(), w, r, http.MethodPut, p.target(r, false), bytes.NewReader(body), "application/json")
	if err != nil {
		p.upstreamFailed(w, r, err)
		return
	}

	switch {
	case !resp.ok():
		p.writeUpstreamError(w, r, resp)
	case resp.status == http.StatusNoContent:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeSuccess(w, resp)
	}
}

func (p *Relay) delete(w http.ResponseWriter, r *http.Request) {
	resp, err := p.forward(r.Context(), w, r, http.MethodDelete, p.target(r, false), nil, "")
	if err != nil {
		p.upstreamFailed(w, r, err)
		return
	}
	if !resp.ok() {
		p.writeUpstreamError(w, r, resp)
		return
	}

	if resp.blank() {
		msg := deletedMessage
		if resp.status != http.StatusOK && resp.status != http.StatusNoContent {
			msg = "Operation successful, no content"
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": msg})
		return
	}
	if !json.Valid(resp.body) {
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": string(resp.body)})
		return
	}
	if resp.status != http.StatusOK && resp.status != http.StatusNoContent {
		writeRaw(w, http.StatusOK, resp.body)
		return
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(resp.body, &obj) == nil {
		if _, has := obj["success"]; has {
			writeRaw(w, http.StatusOK, resp.body)
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": json.RawMessage(resp.body)})
}

// writeUpstreamError relays a non-2xx answer. A JSON object body is merged
// into the envelope; anything else becomes its error text.
func (p *Relay) writeUpstreamError(w http.ResponseWriter, r *http.Request, resp *upstreamResponse) {
	p.logger.Warn(r.Context(), "upstream returned error", "method", r.Method, "status", resp.status)

	env := envelope{}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &obj); err == nil && obj != nil {
		for k, v := range obj {
			env[k] = v
		}
	} else {
		env["error"] = resp.text()
	}
	env["success"] = false
	writeJSON(w, resp.status, env)
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
