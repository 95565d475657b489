package hub

import (
	"errors"
	"time"

	"syncroom/internal/app/room"
	"syncroom/internal/protocol"
)

// Message handlers. All run on the hub loop with c.user guaranteed to be a
// live, bound member of its room. None of them block.

func (h *Hub) handlePing(c *connection, env *protocol.Envelope) {
	if !h.requireEmptyBody(c, env) {
		return
	}

	c.reply(env, protocol.TypePong, protocol.PongBody{Timestamp: time.Now().UnixMilli()})
}

func (h *Hub) handleMessage(c *connection, env *protocol.Envelope) {
	if !c.allow(c.chatLimiter, env) {
		return
	}

	var body protocol.MessageBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	if body.Recommendation != "" {
		if err := h.media.Validate(body.Recommendation); err != nil {
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrInvalidMedia,
				Message: "The recommended media token is not valid.",
			})
			return
		}
	}

	msg := protocol.ChatMessage{
		Type:           protocol.ChatUser,
		Timestamp:      time.Now().UnixMilli(),
		UserID:         c.user.ID,
		Text:           body.Text,
		Recommendation: body.Recommendation,
	}
	c.user.Room.AppendMessage(msg)
	h.announce(c.user.Room, protocol.TypeChatMessage, msg)
}

func (h *Hub) handleSync(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var state protocol.SyncState
	if !h.decodeBody(c, env, &state) {
		return
	}

	if err := state.Validate(); err != nil {
		c.sendError(env.ID, protocol.WireError{
			Type:    protocol.ErrBadSync,
			Message: err.Error(),
		})
		return
	}

	if state.Media != "" {
		if err := h.media.Validate(state.Media); err != nil {
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrBadSync,
				Message: "The sync media token is not valid.",
			})
			return
		}
	}

	c.user.Room.SetSync(state)
	h.announce(c.user.Room, protocol.TypeSSync, state)
}

func (h *Hub) handleKick(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var body protocol.TargetBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	target, ok := h.targetGuard(c, env, body.UserID)
	if !ok || !h.notSelfGuard(c, env, target) {
		return
	}

	h.logger.Info().
		Str("room_slug", c.user.Room.Slug).
		Str("user_id", target.ID).
		Msg("User kicked by the room owner.")
	h.kickUser(target)
}

func (h *Hub) handleClearChat(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}
	if !h.requireEmptyBody(c, env) {
		return
	}

	c.user.Room.ClearChat()
	h.announce(c.user.Room, protocol.TypeChatCleared, struct{}{})
}

func (h *Hub) handleUpdateRoom(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var body protocol.UpdateRoomBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	r := c.user.Room
	if body.Name != nil {
		if err := r.Rename(*body.Name); err != nil {
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrBadRoomUpdate,
				Message: err.Error(),
			})
			return
		}
	}

	h.announce(r, protocol.TypeRoomUpdated, protocol.RoomUpdatedBody{
		Room: &protocol.RoomInfo{Slug: r.Slug, Name: r.Name()},
	})
}

func (h *Hub) handleKickAll(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}
	if !h.requireEmptyBody(c, env) {
		return
	}

	r := c.user.Room
	h.logger.Info().Str("room_slug", r.Slug).Msg("Owner kicked everyone.")

	for _, u := range r.Users() {
		if u == c.user {
			continue
		}
		h.kickUser(u)
	}
}

func (h *Hub) handleDestroyRoom(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}
	if !h.requireEmptyBody(c, env) {
		return
	}

	h.destroyRoom(c.user.Room)
}

func (h *Hub) handlePromote(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var body protocol.TargetBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	target, ok := h.targetGuard(c, env, body.UserID)
	if !ok || !h.notSelfGuard(c, env, target) {
		return
	}

	r := c.user.Room
	if err := r.Promote(target); err != nil {
		c.sendError(env.ID, protocol.WireError{
			Type:    protocol.ErrServerError,
			Message: err.Error(),
		})
		return
	}

	h.announce(r, protocol.TypeRoomUpdated, protocol.RoomUpdatedBody{OwnerID: &target.ID})
}

func (h *Hub) handleQueryPlayback(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var body protocol.TargetBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	target, ok := h.targetGuard(c, env, body.UserID)
	if !ok {
		return
	}

	if target.Conn != nil {
		target.Conn.Send(protocol.Serialize(protocol.TypePlaybackQuery, struct{}{}, nil))
	}
}

func (h *Hub) handleUpdatePlaylist(c *connection, env *protocol.Envelope) {
	if !h.ownerGuard(c, env) {
		return
	}

	var body protocol.UpdatePlaylistBody
	if !h.decodeBody(c, env, &body) {
		return
	}

	r := c.user.Room
	if err := r.UpdatePlaylist(body, h.media); err != nil {
		var rejected *room.MediaRejectedError
		switch {
		case errors.Is(err, room.ErrPlaylistDuplicate):
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrPlaylistDuplicates,
				Message: "The playlist contains the same media more than once.",
			})
		case errors.As(err, &rejected):
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrInvalidMedia,
				Message: "A playlist entry is not a valid media token.",
			})
		default:
			c.sendError(env.ID, protocol.WireError{
				Type:    protocol.ErrServerError,
				Message: "Could not update the playlist.",
			})
		}
		return
	}

	playlist := r.Playlist()
	h.announce(r, protocol.TypeRoomUpdated, protocol.RoomUpdatedBody{Playlist: &playlist})
}

func (h *Hub) handlePlaybackStats(c *connection, env *protocol.Envelope) {
	if !c.allow(c.statsLimiter, env) {
		return
	}

	var stats protocol.PlaybackStats
	if !h.decodeBody(c, env, &stats) {
		return
	}

	h.announce(c.user.Room, protocol.TypePlaybackReport, protocol.PlaybackReportBody{
		UserID: c.user.ID,
		Stats:  stats,
	})
}

func (h *Hub) handleStruggle(c *connection, env *protocol.Envelope) {
	if !h.notOwnerGuard(c, env) {
		return
	}
	if !h.requireEmptyBody(c, env) {
		return
	}
	if !c.allow(c.struggleLimiter, env) {
		return
	}

	h.announce(c.user.Room, protocol.TypeUserStruggle, protocol.UserRefBody{UserID: c.user.ID})
}
