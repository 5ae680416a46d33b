package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerEmitsRequestIDAndPrincipal(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	handler = Logger(logger)(handler)
	handler = Principal(handler)
	handler = RequestID(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	req.Header.Set("X-User-ID", "user-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if got := line["request_id"]; got != "req-abc-123" {
		t.Fatalf("request_id = %v, want %q", got, "req-abc-123")
	}
	if got := line["user"]; got != "user-7" {
		t.Fatalf("user = %v, want %q", got, "user-7")
	}
	if got := line["status"]; got != float64(http.StatusAccepted) {
		t.Fatalf("status = %v, want %d", got, http.StatusAccepted)
	}
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler = RequestID(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	if rid == "" || len(rid) > maxRequestIDLength {
		t.Fatalf("response request id = %q, want freshly minted identifier", rid)
	}
}
