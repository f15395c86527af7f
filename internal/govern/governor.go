// Package govern combines PII detection with a configured action policy
// and issues a hash-bound receipt for every call.
package govern

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/govgate/govgate/internal/logger"
	"github.com/govgate/govgate/internal/pii"
	"github.com/govgate/govgate/internal/receipt"
)

// Config configures a Governor instance.
type Config struct {
	// DefaultAction is applied whenever PII is detected. One of deny,
	// redact, escalate; redact if empty.
	DefaultAction Action
	// PolicyVersion is recorded verbatim in every receipt.
	PolicyVersion string
}

// Governor is a caller-owned governance instance. There is no implicit
// process-wide default; construct one with New or register instances in
// a Registry. Safe for concurrent use.
type Governor struct {
	defaultAction Action
	policyVersion string
	logger        *logger.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a governor. log may be nil.
func New(cfg Config, log *logger.Logger) (*Governor, error) {
	action := cfg.DefaultAction
	if action == "" {
		action = ActionRedact
	}
	if !ValidDefaultAction(action) {
		return nil, fmt.Errorf("invalid default action: %s (must be deny, redact, or escalate)", action)
	}

	version := cfg.PolicyVersion
	if version == "" {
		version = "1.0"
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Governor{
		defaultAction: action,
		policyVersion: version,
		logger:        log,
		stats:         zeroStats(),
	}, nil
}

// DefaultAction returns the action applied when PII is found.
func (g *Governor) DefaultAction() Action { return g.defaultAction }

// PolicyVersion returns the version recorded in receipts.
func (g *Governor) PolicyVersion() string { return g.policyVersion }

// Govern runs detection on input, decides the action, and returns the
// immutable result with its receipt. It is synchronous and CPU-bound;
// the only possible error is receipt-id entropy unavailability.
func (g *Governor) Govern(input string, opts ...CallOption) (*Result, error) {
	var scope callScope
	for _, opt := range opts {
		opt(&scope)
	}

	// time.Since reads the monotonic clock, so wall-clock adjustments
	// cannot skew the measured span.
	start := time.Now()

	detection := pii.Detect(input)

	action := ActionAllow
	output := input
	if detection.HasPII {
		action = g.defaultAction
		if action == ActionRedact {
			output = detection.RedactedText
		}
	}

	elapsed := time.Since(start).Nanoseconds()

	rcpt, err := receipt.Generate(input, output, string(action), detection.Types, detection.Count, g.policyVersion, elapsed)
	if err != nil {
		return nil, err
	}

	g.recordCall(action, detection.HasPII, elapsed)

	g.logger.Debug("governance decision",
		zap.String("action", string(action)),
		zap.String("receipt_id", rcpt.ID),
		zap.Int("pii_count", detection.Count),
		zap.Int64("processing_ns", elapsed),
	)

	return &Result{
		Action:   action,
		Output:   output,
		PII:      detection,
		Receipt:  rcpt,
		Region:   scope.region,
		Industry: scope.industry,
	}, nil
}

// recordCall applies one call's statistics under the governor lock, so
// concurrent calls are linearizable: N calls always add exactly N.
func (g *Governor) recordCall(action Action, foundPII bool, elapsedNS int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stats.TotalCalls++
	if foundPII {
		g.stats.TotalPIIDetected++
	}
	g.stats.TotalProcessingNS += elapsedNS
	g.stats.ActionCounts[action]++
}

// Stats returns a snapshot copy of the counters.
func (g *Governor) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := g.stats
	snapshot.ActionCounts = make(map[Action]int64, len(g.stats.ActionCounts))
	for action, count := range g.stats.ActionCounts {
		snapshot.ActionCounts[action] = count
	}
	return snapshot
}

// ResetStats swaps in an all-zero structure under the same lock used by
// recordCall, so no caller ever observes a partial reset.
func (g *Governor) ResetStats() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats = zeroStats()
}

func zeroStats() Stats {
	return Stats{
		ActionCounts: map[Action]int64{
			ActionAllow:    0,
			ActionDeny:     0,
			ActionRedact:   0,
			ActionEscalate: 0,
		},
	}
}
