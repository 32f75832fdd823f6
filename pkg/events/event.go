package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeDocumentAnalyzed       = "document.analyzed"
	TypeDocumentRejected       = "document.rejected"
	TypeSessionDocumentIndexed = "session.document_indexed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "document.analyzed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// AnalysisPayload describes the outcome of one document analysis.
type AnalysisPayload struct {
	AnalysisID       string   `json:"analysis_id"`
	Filename         string   `json:"filename"`
	SizeBytes        int64    `json:"size_bytes"`
	Decision         string   `json:"decision"`
	DocumentType     string   `json:"document_type,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	ImportantClauses []string `json:"important_clauses,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	DurationMs       int64    `json:"duration_ms"`
}

type IndexedPayload struct {
	SessionID string `json:"session_id"`
	Chunks    int    `json:"chunks"`
	Backend   string `json:"backend"`
}

// NewAnalysisEvent picks the event type from the payload's decision.
func NewAnalysisEvent(p AnalysisPayload, at time.Time) (BaseEvent, error) {
	typ := TypeDocumentRejected
	if p.Decision == "accept" {
		typ = TypeDocumentAnalyzed
	}
	return newEvent(typ, p, at)
}

func NewIndexedEvent(p IndexedPayload, at time.Time) (BaseEvent, error) {
	return newEvent(TypeSessionDocumentIndexed, p, at)
}

func newEvent(typ string, payload any, at time.Time) (BaseEvent, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return BaseEvent{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return BaseEvent{}, fmt.Errorf("unmarshal %s payload: %w", typ, err)
	}
	return BaseEvent{Type: typ, Data: data, OccurredAt: at.UTC()}, nil
}

// DecodePayload fills out from the event's data map.
func DecodePayload(e Event, out any) error {
	b, err := json.Marshal(e.Payload())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Encode serialises an event with its type and time, for in-process transport.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

func Decode(b []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
