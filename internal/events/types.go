package events

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/govgate/govgate/internal/pii"
)

// EventType classifies hub events.
type EventType string

const (
	EventTypeDecision   EventType = "governance_decision"
	EventTypeSystem     EventType = "system_status"
	EventTypeConnection EventType = "connection"
)

// Event is the envelope broadcast to dashboard clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data"`
}

// DecisionEvent reports one governance decision. It carries the receipt
// ID and PII metadata only; the governed text never leaves the process.
type DecisionEvent struct {
	RequestID    string     `json:"request_id"`
	Method       string     `json:"method"`
	Path         string     `json:"path"`
	Action       string     `json:"action"`
	ReceiptID    string     `json:"receipt_id"`
	PIITypes     []pii.Type `json:"pii_types"`
	PIICount     int        `json:"pii_count"`
	ProcessingNS int64      `json:"processing_ns"`
}

// SystemEvent reports service-level state changes.
type SystemEvent struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConnectionEvent reports dashboard clients joining and leaving.
type ConnectionEvent struct {
	Action   string `json:"action"`
	ClientID string `json:"client_id"`
}

// client is one connected dashboard peer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan Event
}
