/*
Package protocol defines the wire contract shared by the server and its clients.

This file defines the message envelope carried on every WebSocket frame in both
directions, together with the parsing logic that turns a raw text frame into a
structurally validated envelope. Per-type body validation happens later, in the
dispatcher; this layer only guarantees the outer shape.
*/
package protocol

import (
	"encoding/json"
	"strings"

	"syncroom/internal/pkg/logx"
)

// Envelope is the wire-level wrapper for every message in both directions.
// ID is set by a sender expecting a reply; ReplyTo is set on the response.
// Type determines the shape of Body.
type Envelope struct {
	ID      *int64          `json:"id,omitempty"`
	ReplyTo *int64          `json:"replyTo,omitempty"`
	Type    string          `json:"type"`
	Body    json.RawMessage `json:"body"`
}

// MalformedError describes an envelope that failed structural validation.
// ID carries the correlation id when one could still be recovered from the
// broken input, so the error reply can reference it.
type MalformedError struct {
	Reason string
	ID     *int64
}

func (e *MalformedError) Error() string {
	return e.Reason
}

// ParseEnvelope parses a raw text frame into an Envelope.
// It enforces the structural invariants of the wire contract: the input is a
// JSON object, id/replyTo are integers when present, and both a string type
// tag and a body are present. Violations return a *MalformedError preserving
// any recoverable correlation id.
func ParseEnvelope(raw []byte) (*Envelope, *MalformedError) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &MalformedError{Reason: "invalid JSON"}
	}

	var id *int64
	if rawID, ok := probe["id"]; ok {
		if err := json.Unmarshal(rawID, &id); err != nil || id == nil {
			return nil, &MalformedError{Reason: "invalid id type"}
		}
	}

	if rawReply, ok := probe["replyTo"]; ok {
		var replyTo *int64
		if err := json.Unmarshal(rawReply, &replyTo); err != nil || replyTo == nil {
			return nil, &MalformedError{Reason: "invalid replyTo type", ID: id}
		}
	}

	rawType, hasType := probe["type"]
	rawBody, hasBody := probe["body"]
	if !hasType || !hasBody {
		return nil, &MalformedError{Reason: "missing type or body", ID: id}
	}

	env := &Envelope{ID: id, Body: rawBody}
	if err := json.Unmarshal(rawType, &env.Type); err != nil {
		return nil, &MalformedError{Reason: "invalid message type", ID: id}
	}

	return env, nil
}

// IsEmptyBody reports whether a raw body carries no payload. Message types
// without a body schema accept JSON null or an empty object, nothing else.
func IsEmptyBody(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "null" || trimmed == "{}"
}

// Serialize builds the JSON bytes for an outbound message.
// replyTo may be nil for uncorrelated broadcasts.
func Serialize(msgType string, body any, replyTo *int64) []byte {
	rawBody, err := json.Marshal(body)
	if err != nil {
		// bodies are server-built structs; this only fires on a programming error
		logx.Error(err, "Failed to marshal outbound message body", "msg_type", msgType)
		rawBody = []byte("null")
	}

	env := Envelope{
		ReplyTo: replyTo,
		Type:    msgType,
		Body:    rawBody,
	}

	raw, err := json.Marshal(env)
	if err != nil {
		logx.Error(err, "Failed to marshal outbound envelope", "msg_type", msgType)
		return nil
	}

	return raw
}
