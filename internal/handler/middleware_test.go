package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	SecurityHeaders(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("inner status not preserved, got %d", rec.Code)
	}

	tests := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Cache-Control", "no-store"},
		{"Content-Security-Policy", "default-src 'none'"},
		{"Content-Security-Policy", "frame-ancestors 'none'"},
		{"Strict-Transport-Security", "max-age="},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); !strings.Contains(got, tt.want) {
			t.Errorf("%s: want %q in %q", tt.header, tt.want, got)
		}
	}
}

func TestRequestLogger_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	h := middleware.RequestID(RequestLogger(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/form", nil))

	var rec0 map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec0); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if rec0["status"] != float64(http.StatusCreated) {
		t.Errorf("expected status 201 in log, got %v", rec0["status"])
	}
	if rec0["path"] != "/api/form" || rec0["method"] != http.MethodPost {
		t.Errorf("unexpected method/path %v %v", rec0["method"], rec0["path"])
	}
	if id, _ := rec0["request_id"].(string); id == "" {
		t.Error("expected request_id in log record")
	}
}

func TestRequestLogger_DefaultsStatusToOK(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	RequestLogger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("expected status 200 in log, got %s", buf.String())
	}
}
