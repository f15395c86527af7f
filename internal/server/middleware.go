package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govgate/govgate/internal/events"
	"github.com/govgate/govgate/internal/govern"
	"github.com/govgate/govgate/internal/pii"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// deniedResponse is the 403 body returned when governance denies a
// request.
type deniedResponse struct {
	Error     string     `json:"error"`
	ReceiptID string     `json:"receipt_id"`
	PIITypes  []pii.Type `json:"pii_types"`
}

// loggingMiddleware logs request lifecycle with a per-request ID.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		s.logger.WithRequestID(requestID).Info("request started",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)

		next.ServeHTTP(rw, r)

		s.logger.WithRequestID(requestID).Info("request completed",
			zap.Int("status_code", rw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int("response_size", rw.size),
		)
	})
}

// governanceMiddleware intercepts inbound write requests, governs the
// extracted text value, and either blocks, rewrites, or passes through.
// Bodies that are not JSON objects are not applicable and pass through
// ungoverned.
func (s *Server) governanceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isWriteMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := getRequestID(r.Context())
		logger := s.logger.WithRequestID(requestID)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("failed to read request body", zap.Error(err))
			http.Error(w, "failed to read request", http.StatusInternalServerError)
			return
		}
		r.Body.Close()

		passThrough := func() {
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		}

		doc, ok := parseDocument(body)
		if !ok {
			passThrough()
			return
		}

		key, text, ok := doc.extractText()
		if !ok {
			passThrough()
			return
		}

		result, err := s.governor.Govern(text)
		if err != nil {
			logger.Error("governance call failed", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		s.recordDecision(r, requestID, result)

		switch result.Action {
		case govern.ActionDeny:
			logger.Info("request denied",
				zap.String("receipt_id", result.Receipt.ID),
				zap.Any("pii_types", result.PII.Types),
			)
			s.metrics.DeniedRequests.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(deniedResponse{
				Error:     "request blocked: sensitive data detected",
				ReceiptID: result.Receipt.ID,
				PIITypes:  result.PII.Types,
			})
			return

		case govern.ActionRedact:
			rewritten, err := doc.withText(key, result.Output)
			if err != nil {
				logger.Error("failed to re-serialize request body", zap.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			logger.Info("request redacted",
				zap.String("field", key),
				zap.String("receipt_id", result.Receipt.ID),
				zap.Int("pii_count", result.PII.Count),
			)
			r.Body = io.NopCloser(bytes.NewReader(rewritten))
			r.ContentLength = int64(len(rewritten))
			next.ServeHTTP(w, r)
			return
		}

		// allow and escalate both forward the original body; escalation
		// is acted on downstream via the receipt.
		passThrough()
	})
}

// recordDecision updates metrics and broadcasts the decision event.
func (s *Server) recordDecision(r *http.Request, requestID string, result *govern.Result) {
	s.metrics.CallsTotal.WithLabelValues(string(result.Action)).Inc()
	for _, match := range result.PII.Matches {
		s.metrics.DetectionsTotal.WithLabelValues(string(match.Type)).Inc()
	}
	s.metrics.ProcessingTime.Observe(float64(result.Receipt.ProcessingTimeNS) / 1e9)

	s.hub.Broadcast(events.Event{
		Type:      events.EventTypeDecision,
		Timestamp: time.Now(),
		RequestID: requestID,
		Data: events.DecisionEvent{
			RequestID:    requestID,
			Method:       r.Method,
			Path:         r.URL.Path,
			Action:       string(result.Action),
			ReceiptID:    result.Receipt.ID,
			PIITypes:     result.PII.Types,
			PIICount:     result.PII.Count,
			ProcessingNS: result.Receipt.ProcessingTimeNS,
		},
	})
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture response data.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// getRequestID extracts request ID from context.
func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}
