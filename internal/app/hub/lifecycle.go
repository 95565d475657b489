/*
Package hub contains the live coordination core.

This file implements the per-connection lifecycle state machine: binding a
fresh connection to its user (open), and walking the close paths (server
initiated, intentional leave, and unexpected disconnect into the
reconnection grace window).
*/
package hub

import (
	"time"

	"syncroom/internal/app/room"
	"syncroom/internal/protocol"
)

// handleOpen binds a connection to its user. Runs on the hub loop.
//
// A user reconnecting over a still-live old connection supersedes it: the
// old socket is closed with ConnectedElsewhere and no presence broadcast is
// made, since from the room's point of view the user never went away. A
// genuinely fresh or returning user is announced as userJoined or a present
// userState transition, depending on whether they had ever connected.
func (h *Hub) handleOpen(c *connection) {
	u := c.user

	// the user may have been reaped or kicked between the HTTP upgrade and
	// this event reaching the loop
	if h.sessions.Get(u.SessionToken) != u || h.registry.Get(u.Room.Slug) != u.Room {
		h.logger.Warn().Str("user_id", u.ID).Msg("Connection opened for a vanished session. Closing.")
		c.CloseWith(protocol.CloseRoomDestroyed, protocol.ReasonRoomDestroyed)
		return
	}

	now := time.Now()
	prior := u.State
	u.SetState(room.PresencePresent, now)

	if old, ok := u.Conn.(*connection); ok && old != nil && old != c {
		h.logger.Info().Str("user_id", u.ID).Msg("Session reconnected elsewhere. Superseding old connection.")

		h.detach(old)
		old.CloseWith(protocol.CloseConnectedElsewhere, protocol.ReasonConnectedElsewhere)
	} else if prior == room.PresenceNew {
		h.announce(u.Room, protocol.TypeUserJoined, u.Wire())
	} else {
		h.announce(u.Room, protocol.TypeUserState, protocol.UserStateBody{
			UserID:    u.ID,
			Timestamp: now.UnixMilli(),
			State:     protocol.WireUserPresent,
		})
	}

	u.Conn = c
	h.subscribe(u.Room.Topic, c)

	hello := protocol.RoomHelloBody{
		WireRoom: u.Room.Snapshot(),
		You:      u.Wire(),
	}
	c.Send(protocol.Serialize(protocol.TypeRoomHello, hello, nil))
}

// handleClose runs when a connection's read pump ends. Runs on the hub loop.
func (h *Hub) handleClose(c *connection, code int) {
	h.detach(c)

	// server-initiated closes already updated all state when they were decided
	if c.serverClosed.Load() {
		return
	}

	u := c.user

	// a superseded connection that was not flagged cannot own the user anymore
	if u.Conn != c {
		return
	}

	u.Conn = nil

	if code == protocol.CloseLeave {
		h.logger.Info().Str("user_id", u.ID).Str("room_slug", u.Room.Slug).Msg("User left intentionally.")
		h.departUser(u)
		return
	}

	// unexpected disconnect: start the grace window, keep any owner status
	now := time.Now()
	u.SetState(room.PresenceReconnecting, now)

	h.announce(u.Room, protocol.TypeUserState, protocol.UserStateBody{
		UserID:    u.ID,
		Timestamp: now.UnixMilli(),
		State:     protocol.WireUserDisconnected,
	})
}

// departUser runs the full departure of a user: membership removal with
// election, session invalidation, and the userLeft broadcast (suppressed for
// users who never finished joining). Runs on the hub loop.
func (h *Hub) departUser(u *room.User) {
	r := u.Room
	wasJoined := u.State != room.PresenceNew

	ownerChanged := r.RemoveUser(u)
	h.sessions.Destroy(u.SessionToken)

	if ownerChanged {
		ownerID := ""
		if owner := r.Owner(); owner != nil {
			ownerID = owner.ID
		}
		h.announce(r, protocol.TypeRoomUpdated, protocol.RoomUpdatedBody{OwnerID: &ownerID})
	}

	if wasJoined {
		h.announce(r, protocol.TypeUserLeft, protocol.UserRefBody{UserID: u.ID})
	}
}

// kickUser forcibly departs a member on the owner's behalf: the live
// connection (if any) is closed with the kicked code, then the normal
// departure runs.
func (h *Hub) kickUser(target *room.User) {
	if conn, ok := target.Conn.(*connection); ok && conn != nil {
		h.detach(conn)
		conn.CloseWith(protocol.CloseKicked, protocol.ReasonKicked)
	}
	target.Conn = nil

	h.departUser(target)
}

// destroyRoom tears a room down: every member's connection is closed with
// the room-destroyed code, every session invalidated, and the room deleted
// from the registry. Runs on the hub loop.
func (h *Hub) destroyRoom(r *room.Room) {
	for _, u := range r.Users() {
		if conn, ok := u.Conn.(*connection); ok && conn != nil {
			h.detach(conn)
			conn.CloseWith(protocol.CloseRoomDestroyed, protocol.ReasonRoomDestroyed)
		}
		u.Conn = nil

		h.sessions.Destroy(u.SessionToken)
		r.RemoveUser(u)
	}

	h.registry.Delete(r.Slug)

	h.logger.Info().Str("room_slug", r.Slug).Msg("Room destroyed.")
}

// detach releases the hub-side resources of a connection: topic
// subscription and the outbound queue. Idempotent.
func (h *Hub) detach(c *connection) {
	h.unsubscribe(c.topic, c)
	c.detachOnce.Do(func() { close(c.send) })
}
