package hub

import (
	"syncroom/internal/app/room"
	"syncroom/internal/protocol"
)

// Precondition checks shared by the privileged message handlers. Each guard
// answers the sender with the appropriate wire error on failure, so handlers
// can simply return on a false result.

func (h *Hub) ownerGuard(c *connection, env *protocol.Envelope) bool {
	if c.user.Room.Owner() == c.user {
		return true
	}
	c.sendError(env.ID, protocol.WireError{
		Type:    protocol.ErrUnauthorized,
		Message: "Only the room owner can do that.",
	})
	return false
}

func (h *Hub) notOwnerGuard(c *connection, env *protocol.Envelope) bool {
	if c.user.Room.Owner() != c.user {
		return true
	}
	c.sendError(env.ID, protocol.WireError{
		Type:    protocol.ErrUnauthorized,
		Message: "The room owner cannot do that.",
	})
	return false
}

// targetGuard resolves a target user ID to a member of the sender's room,
// answering userNotFound when no such member exists.
func (h *Hub) targetGuard(c *connection, env *protocol.Envelope, userID string) (*room.User, bool) {
	target, ok := c.user.Room.Member(userID)
	if !ok {
		c.sendError(env.ID, protocol.WireError{
			Cause:   userID,
			Type:    protocol.ErrUserNotFound,
			Message: "No such user in this room.",
		})
		return nil, false
	}
	return target, true
}

func (h *Hub) notSelfGuard(c *connection, env *protocol.Envelope, target *room.User) bool {
	if target != c.user {
		return true
	}
	c.sendError(env.ID, protocol.WireError{
		Type:    protocol.ErrSelfTarget,
		Message: "You cannot target yourself.",
	})
	return false
}
