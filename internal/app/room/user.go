/*
Package room contains the in-memory domain model of the coordination core:
rooms, their members, ownership election, chat history, and the playlist.

This file defines the User type, representing one participant's identity and
connection state across reconnects. A User belongs to exactly one Room for
its whole lifetime.
*/
package room

import (
	"fmt"
	"strings"
	"time"

	"syncroom/internal/pkg/randx"
	"syncroom/internal/protocol"
)

// Presence tracks whether a user currently has a live connection.
type Presence string

const (
	// PresenceNew marks a user who has never connected.
	PresenceNew Presence = "new"

	// PresencePresent marks a user with an open connection.
	PresencePresent Presence = "present"

	// PresenceReconnecting marks a user whose connection dropped and whose
	// reconnection grace period is running.
	PresenceReconnecting Presence = "reconnecting"
)

// MaxDisplayNameLength bounds user display names.
const MaxDisplayNameLength = 64

// Conn is the transport attachment of a user. The user references the
// connection only for sending; it never owns the connection's buffers.
type Conn interface {
	// Send queues a payload for delivery, reporting whether it was accepted.
	Send(payload []byte) bool

	// CloseWith terminates the connection with an application close code,
	// marking it server-closed so the gateway skips departure handling.
	CloseWith(code int, reason string)
}

// User represents one participant of a room.
type User struct {
	// ID is the stable public identifier of the user.
	ID string

	// SessionToken is the secret capability used to authenticate connection
	// upgrades. It stays valid for the user's lifetime to permit reconnects.
	SessionToken string

	DisplayName  string
	GravatarHash string

	// State and LastChange form the presence state machine; LastChange is
	// stamped on every transition and drives both election tie-breaks and
	// the reaper's grace window.
	State      Presence
	LastChange time.Time

	// Conn is the at-most-one live connection, nil when disconnected.
	Conn Conn

	// Room is the room this user belongs to, set once at creation.
	Room *Room
}

// CheckDisplayName validates a display name and optional gravatar hash,
// returning a human-readable error on failure.
func CheckDisplayName(name string, gravatarHash string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}

	if len(name) > MaxDisplayNameLength {
		return fmt.Errorf("display name cannot be longer than %d characters", MaxDisplayNameLength)
	}

	if gravatarHash != "" && !randx.IsGravatarHash(gravatarHash) {
		return fmt.Errorf("invalid gravatar hash")
	}

	return nil
}

// SetState transitions the presence state machine and stamps the change.
func (u *User) SetState(state Presence, now time.Time) {
	u.State = state
	u.LastChange = now
}

// Wire returns the public view of the user. The internal new/reconnecting
// distinction collapses to "disconnected" on the wire.
func (u *User) Wire() protocol.WireUser {
	state := protocol.WireUserDisconnected
	if u.State == PresencePresent {
		state = protocol.WireUserPresent
	}

	return protocol.WireUser{
		ID:           u.ID,
		Name:         u.DisplayName,
		GravatarHash: u.GravatarHash,
		State:        state,
		LastChange:   u.LastChange.UnixMilli(),
	}
}
