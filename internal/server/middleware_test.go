package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/govgate/govgate/internal/config"
	"github.com/govgate/govgate/internal/logger"
)

func newTestServer(t *testing.T, defaultAction string) *Server {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Governance.DefaultAction = defaultAction
	cfg.RateLimit.Enabled = false

	s, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

// echoHandler replies with the body it received, so tests can observe
// what the middleware forwarded downstream.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func governedRequest(t *testing.T, s *Server, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := s.governanceMiddleware(echoHandler())
	req := httptest.NewRequest(method, "/gateway/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGovernanceMiddlewareDeny(t *testing.T) {
	s := newTestServer(t, "deny")

	rec := governedRequest(t, s, http.MethodPost, `{"message": "My SSN is 123-45-6789"}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body deniedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("403 body is not JSON: %v", err)
	}
	if body.Error == "" {
		t.Error("403 body missing error")
	}
	if !strings.HasPrefix(body.ReceiptID, "rcpt_") {
		t.Errorf("receipt_id = %q", body.ReceiptID)
	}
	if len(body.PIITypes) == 0 {
		t.Error("403 body missing pii_types")
	}
}

func TestGovernanceMiddlewareRedact(t *testing.T) {
	s := newTestServer(t, "redact")

	rec := governedRequest(t, s, http.MethodPost, `{"prompt": "My SSN is 123-45-6789", "model": "m1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var forwarded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &forwarded); err != nil {
		t.Fatalf("forwarded body is not JSON: %v", err)
	}
	if got := forwarded["prompt"]; got != "My SSN is [SSN_REDACTED]" {
		t.Errorf("forwarded prompt = %q", got)
	}
	if got := forwarded["model"]; got != "m1" {
		t.Errorf("unrelated field changed: %q", got)
	}
}

func TestGovernanceMiddlewareCleanPassThrough(t *testing.T) {
	s := newTestServer(t, "deny")

	body := `{"message": "nothing sensitive"}`
	rec := governedRequest(t, s, http.MethodPost, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != body {
		t.Errorf("clean body changed: %q", rec.Body.String())
	}
}

func TestGovernanceMiddlewareNotApplicable(t *testing.T) {
	s := newTestServer(t, "deny")

	cases := []struct {
		name string
		body string
	}{
		{"not json", "SSN 123-45-6789 in a plain body"},
		{"json array", `["123-45-6789"]`},
		{"json string", `"123-45-6789"`},
		{"no candidate key", `{"comment": "SSN 123-45-6789"}`},
		{"candidate key not a string", `{"message": 42}`},
		{"candidate key empty", `{"message": ""}`},
		{"empty body", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := governedRequest(t, s, http.MethodPost, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 pass-through", rec.Code)
			}
			if rec.Body.String() != tc.body {
				t.Errorf("ungoverned body changed: %q", rec.Body.String())
			}
		})
	}
}

func TestGovernanceMiddlewareReadMethodsExempt(t *testing.T) {
	s := newTestServer(t, "deny")

	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodHead} {
		rec := governedRequest(t, s, method, `{"message": "123-45-6789"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", method, rec.Code)
		}
	}
}

func TestGovernanceMiddlewareKeyPriority(t *testing.T) {
	s := newTestServer(t, "deny")

	// content outranks text; the SSN in text must go unexamined.
	rec := governedRequest(t, s, http.MethodPost, `{"text": "SSN 123-45-6789", "content": "totally clean"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (governed field was clean)", rec.Code)
	}
}

func TestGovernanceMiddlewareUpdatesStats(t *testing.T) {
	s := newTestServer(t, "deny")

	governedRequest(t, s, http.MethodPost, `{"message": "SSN 123-45-6789"}`)
	governedRequest(t, s, http.MethodPost, `{"message": "clean"}`)

	stats := s.Governor().Stats()
	if stats.TotalCalls != 2 {
		t.Errorf("total calls = %d, want 2", stats.TotalCalls)
	}
	if stats.TotalPIIDetected != 1 {
		t.Errorf("total pii detected = %d, want 1", stats.TotalPIIDetected)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.GetDefaults()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, Burst: 2}

	s, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	handler := s.rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("burst requests rejected: %v", statuses)
	}
	if statuses[3] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %v", statuses)
	}
}

func TestResponseWriterCapture(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	rw.Write(bytes.Repeat([]byte("x"), 10))

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("captured status = %d", rw.statusCode)
	}
	if rw.size != 10 {
		t.Errorf("captured size = %d", rw.size)
	}
}
