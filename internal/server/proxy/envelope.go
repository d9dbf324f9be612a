package proxy

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// envelope is the response shape shared with the client. Keys are set
// explicitly so upstream error objects can be merged in.
type envelope map[string]any

func failure(msg string) envelope {
	return envelope{"success": false, "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeSuccess relays a 2xx answer: blank bodies become data:null, JSON
// passes through unchanged and anything else is wrapped as data text.
func writeSuccess(w http.ResponseWriter, resp *upstreamResponse) {
	switch {
	case resp.blank():
		writeJSON(w, http.StatusOK, envelope{"success": true, "data": nil})
	case json.Valid(resp.body):
		writeRaw(w, http.StatusOK, resp.body)
	default:
		writeJSON(w, http.StatusOK, envelope{"success": true, "data": string(resp.body)})
	}
}
