// Package envelope defines the versioned wrapper every event travels in and
// the publisher that stamps and sends it.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Envelope is immutable once published. Type is the versioned discriminator
// (domain.eventName.vN); Data is the type-specific payload.
type Envelope struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Source         string          `json:"source"`
	Time           string          `json:"time"`
	Data           json.RawMessage `json:"data"`
	ConversationID string          `json:"conversationId,omitempty"`
	TraceParent    string          `json:"traceparent,omitempty"`
}

// Event is anything a service publishes.
type Event interface {
	EventType() string
	ConversationID() string
}

var ErrMissingType = errors.New("envelope: missing type")

// UnmarshalJSON accepts data either as an embedded object or as a string
// holding serialized JSON; producers in the wild emit both.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	type raw Envelope
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	data := bytes.TrimSpace(r.Data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("envelope data: %w", err)
		}
		data = []byte(s)
	}
	r.Data = data
	*e = Envelope(r)
	return nil
}

// Parse decodes and minimally validates an envelope from a message body.
func Parse(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, err
	}
	if strings.TrimSpace(env.Type) == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope %s: empty data", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}

// Domain returns the first segment of the type, e.g. "product".
func (e Envelope) Domain() string {
	d, _, _ := strings.Cut(e.Type, ".")
	return d
}
