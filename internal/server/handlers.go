package server

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/govgate/govgate/internal/govern"
	"github.com/govgate/govgate/internal/pii"
	"github.com/govgate/govgate/internal/receipt"
)

type governRequest struct {
	Text     string `json:"text"`
	Region   string `json:"region,omitempty"`
	Industry string `json:"industry,omitempty"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type verifyRequest struct {
	Receipt *receipt.Receipt `json:"receipt"`
	Input   string           `json:"input"`
	Output  string           `json:"output"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// handleGovern runs the full pipeline on the posted text and returns
// the result bundle including the receipt.
func (s *Server) handleGovern(w http.ResponseWriter, r *http.Request) {
	var req governRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var opts []govern.CallOption
	if req.Region != "" {
		opts = append(opts, govern.WithRegion(req.Region))
	}
	if req.Industry != "" {
		opts = append(opts, govern.WithIndustry(req.Industry))
	}

	result, err := s.governor.Govern(req.Text, opts...)
	if err != nil {
		s.logger.Error("governance call failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.recordDecision(r, getRequestID(r.Context()), result)
	writeJSON(w, http.StatusOK, result)
}

// handleDetect runs detection only; no action, no receipt, no stats.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, pii.Detect(req.Text))
}

// handleVerify recomputes a receipt's hashes against candidate text.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Receipt == nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid: req.Receipt.Verify(req.Input, req.Output),
	})
}

// handleStats returns a snapshot of the governor's counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.governor.Stats())
}

// handleStatsReset zeroes the counters.
func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	s.governor.ResetStats()
	writeJSON(w, http.StatusOK, s.governor.Stats())
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleInfo handles info requests.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":           "govgate",
		"default_action": s.governor.DefaultAction(),
		"policy_version": s.governor.PolicyVersion(),
		"pattern_count":  len(pii.Catalog()),
	})
}

// handleGatewayProxy forwards governed requests to the upstream target.
func (s *Server) handleGatewayProxy(w http.ResponseWriter, r *http.Request) {
	target, err := url.Parse(s.config.Upstream.Target)
	if err != nil {
		s.logger.Error("failed to parse upstream target", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	r.URL.Path = strings.TrimPrefix(r.URL.Path, "/gateway")
	if r.URL.Path == "" {
		r.URL.Path = "/"
	}

	requestID := getRequestID(r.Context())
	logger := s.logger.WithRequestID(requestID)

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Director = func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		req.Host = target.Host
		if _, ok := req.Header["User-Agent"]; !ok {
			req.Header.Set("User-Agent", s.config.API.UserAgent)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream proxy error", zap.Error(err))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	proxy.Transport = &http.Transport{
		ResponseHeaderTimeout: s.config.Upstream.Timeout,
	}

	proxy.ServeHTTP(w, r)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
