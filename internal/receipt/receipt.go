// Package receipt produces tamper-evident audit records binding an
// (input, output, action) triple by hash, never by content.
package receipt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/govgate/govgate/internal/pii"
)

// timestampLayout is ISO-8601 UTC with microsecond precision.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Receipt is an immutable audit record. It never holds the raw text it
// attests to; Verify recomputes the hashes from candidate text instead.
// The JSON field set is stable and every field is always present.
type Receipt struct {
	ID               string     `json:"id"`
	Timestamp        string     `json:"timestamp"`
	InputHash        string     `json:"input_hash"`
	OutputHash       string     `json:"output_hash"`
	Action           string     `json:"action"`
	PIITypes         []pii.Type `json:"pii_types"`
	PIICount         int        `json:"pii_count"`
	PolicyVersion    string     `json:"policy_version"`
	ProcessingTimeNS int64      `json:"processing_time_ns"`
}

// Generate builds a receipt for one governance call. The only error is
// unavailability of the cryptographic randomness source backing the
// receipt ID, which propagates rather than degrading to a weaker scheme.
func Generate(input, output, action string, piiTypes []pii.Type, piiCount int, policyVersion string, processingTimeNS int64) (*Receipt, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt id: %w", err)
	}

	types := make([]pii.Type, len(piiTypes))
	copy(types, piiTypes)

	return &Receipt{
		ID:               id,
		Timestamp:        time.Now().UTC().Format(timestampLayout),
		InputHash:        HashText(input),
		OutputHash:       HashText(output),
		Action:           action,
		PIITypes:         types,
		PIICount:         piiCount,
		PolicyVersion:    policyVersion,
		ProcessingTimeNS: processingTimeNS,
	}, nil
}

// Verify reports whether this receipt was generated for exactly the
// given (input, output) pair. Any byte difference in either flips it.
func (r *Receipt) Verify(input, output string) bool {
	return r.InputHash == HashText(input) && r.OutputHash == HashText(output)
}

// HashText returns "sha256:" plus the lowercase hex digest of the exact
// byte content of text. Deterministic and one-way.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// newID returns "rcpt_" plus 32 lowercase hex characters carrying 128
// bits from a cryptographically strong source. Collisions are possible
// only with negligible probability; IDs are never content-derived.
func newID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return "rcpt_" + hex.EncodeToString(buf[:]), nil
}
