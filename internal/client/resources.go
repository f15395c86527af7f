package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/govgate/govgate/internal/govern"
	"github.com/govgate/govgate/internal/receipt"
)

// Policy is a governance policy published by the control plane.
type Policy struct {
	ID            string `json:"id"`
	Version       string `json:"version"`
	DefaultAction string `json:"default_action"`
	Description   string `json:"description,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

// PolicyService reads policies.
type PolicyService struct {
	client *Client
}

// Get fetches one policy by ID.
func (s *PolicyService) Get(ctx context.Context, id string) (*Policy, error) {
	if id == "" {
		return nil, fmt.Errorf("policy id is required")
	}
	var policy Policy
	if err := s.client.do(ctx, http.MethodGet, "/v1/policies/"+url.PathEscape(id), nil, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// List fetches all policies visible to the credential.
func (s *PolicyService) List(ctx context.Context) ([]Policy, error) {
	var out struct {
		Policies []Policy `json:"policies"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/v1/policies", nil, &out); err != nil {
		return nil, err
	}
	return out.Policies, nil
}

// Evaluation is the audit submission for one governance decision. The
// receipt carries hashes only, so raw text never crosses the wire.
type Evaluation struct {
	Receipt  *receipt.Receipt `json:"receipt"`
	Region   string           `json:"region,omitempty"`
	Industry string           `json:"industry,omitempty"`
}

// EvaluationService submits decisions for audit.
type EvaluationService struct {
	client *Client
}

// Create records one evaluation and returns its server-assigned ID.
func (s *EvaluationService) Create(ctx context.Context, eval Evaluation) (string, error) {
	if eval.Receipt == nil {
		return "", fmt.Errorf("evaluation receipt is required")
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/v1/evaluations", eval, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// MetricsService pushes aggregate counters.
type MetricsService struct {
	client *Client
}

// Push uploads a stats snapshot.
func (s *MetricsService) Push(ctx context.Context, stats govern.Stats) error {
	return s.client.do(ctx, http.MethodPost, "/v1/metrics", stats, nil)
}
