package hub

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"syncroom/internal/protocol"
)

// dispatch routes one inbound frame to its handler. Runs on the hub loop.
//
// Every failure mode answers the sender rather than dropping the frame:
// binary frames, unparseable envelopes, unknown types, and handler panics
// each map to a distinct wire error so clients can correlate via replyTo.
func (h *Hub) dispatch(c *connection, data []byte, binary bool) {
	if c.user.Conn != c {
		return
	}

	if binary {
		c.sendError(nil, protocol.WireError{
			Type:    protocol.ErrBinaryData,
			Message: "Binary messages are not supported.",
		})
		return
	}

	env, malformed := protocol.ParseEnvelope(data)
	if malformed != nil {
		c.sendError(malformed.ID, protocol.WireError{
			Type:    protocol.ErrMalformedMsg,
			Message: malformed.Reason,
		})
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().
				Interface("panic", rec).
				Str("user_id", c.user.ID).
				Str("message_type", env.Type).
				Msg("Message handler panicked.")
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrServerError,
				Message: "Internal error while handling the message.",
			})
		}
	}()

	switch env.Type {
	case protocol.TypePing:
		h.handlePing(c, env)
	case protocol.TypeMessage:
		h.handleMessage(c, env)
	case protocol.TypeSync:
		h.handleSync(c, env)
	case protocol.TypeKick:
		h.handleKick(c, env)
	case protocol.TypeClearChat:
		h.handleClearChat(c, env)
	case protocol.TypeUpdateRoom:
		h.handleUpdateRoom(c, env)
	case protocol.TypeKickAll:
		h.handleKickAll(c, env)
	case protocol.TypeDestroyRoom:
		h.handleDestroyRoom(c, env)
	case protocol.TypePromote:
		h.handlePromote(c, env)
	case protocol.TypeQueryPlayback:
		h.handleQueryPlayback(c, env)
	case protocol.TypeUpdatePlaylist:
		h.handleUpdatePlaylist(c, env)
	case protocol.TypePlaybackStats:
		h.handlePlaybackStats(c, env)
	case protocol.TypeStruggle:
		h.handleStruggle(c, env)
	default:
		c.sendError(env.ID, protocol.WireError{
			Cause:   env.Type,
			Type:    protocol.ErrNobodyCared,
			Message: fmt.Sprintf("No handler for message type %q.", env.Type),
		})
	}
}

// requireEmptyBody is the schema gate for message types that carry no body.
// A false return means the sender has already been answered.
func (h *Hub) requireEmptyBody(c *connection, env *protocol.Envelope) bool {
	if protocol.IsEmptyBody(env.Body) {
		return true
	}

	c.sendError(env.ID, protocol.WireError{
		Type:    protocol.ErrMalformedMsg,
		Message: fmt.Sprintf("%s does not take a body.", env.Type),
	})
	return false
}

// decodeBody unmarshals and validates an envelope body into dst. A false
// return means the sender has already been answered with a malformed error.
func (h *Hub) decodeBody(c *connection, env *protocol.Envelope, dst any) bool {
	if err := json.Unmarshal(env.Body, dst); err != nil {
		c.sendError(env.ID, protocol.WireError{
			Type:    protocol.ErrMalformedMsg,
			Message: fmt.Sprintf("Invalid body for %s: %v", env.Type, err),
		})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		// non-struct bodies carry their own Validate method instead of tags
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrMalformedMsg,
				Message: fmt.Sprintf("Invalid body for %s: %v", env.Type, err),
			})
			return false
		}
	}

	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrMalformedMsg,
				Message: fmt.Sprintf("Invalid body for %s: %v", env.Type, err),
			})
			return false
		}
	}

	return true
}
