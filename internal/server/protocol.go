package server

import "encoding/json"

// FrameTypeEvent is the only frame type the event socket sends.
const FrameTypeEvent = "event"

// EventHello is sent once when a client connects.
const EventHello = "hello"

// Frame is the envelope of every message on the event socket.
type Frame struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hello is the payload of the hello frame.
type Hello struct {
	Version string   `json:"version"`
	ConnID  string   `json:"connId"`
	Events  []string `json:"events"`
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: raw,
		Seq:     seq,
	}, nil
}
