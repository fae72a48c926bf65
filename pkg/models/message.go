package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageEnvelope wraps every message published to the broker.
type MessageEnvelope struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	TraceID   string          `json:"trace_id,omitempty"`
}

func (m *MessageEnvelope) Validate() error {
	switch {
	case m == nil:
		return fmt.Errorf("message envelope cannot be nil")
	case m.ID == "":
		return fmt.Errorf("message id is required")
	case m.Type == "":
		return fmt.Errorf("message type is required")
	case len(m.Payload) == 0:
		return fmt.Errorf("message payload is required")
	}
	return nil
}

// Decode unmarshals the payload into v.
func (m *MessageEnvelope) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}
