/*
Package session maintains the directory from secret session tokens to users.

A session token is issued once at join/create time and redeemed to
authenticate a connection upgrade; it stays valid for the user's lifetime so
dropped connections can reconnect. Like the room registry, the directory
holds no locks: all access is serialized on the hub's event loop.
*/
package session

import (
	"strings"

	"syncroom/internal/app/room"
)

// Directory maps session tokens to users, one-to-one.
type Directory struct {
	sessions map[string]*room.User
}

// NewDirectory constructs an empty session directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*room.User)}
}

// Register stores the user's session token.
func (d *Directory) Register(u *room.User) {
	d.sessions[u.SessionToken] = u
}

// Get resolves a session token to its user, nil when unknown.
func (d *Directory) Get(token string) *room.User {
	return d.sessions[token]
}

// Destroy invalidates a session token, reporting whether it existed.
func (d *Directory) Destroy(token string) bool {
	if _, ok := d.sessions[token]; !ok {
		return false
	}

	delete(d.sessions, token)
	return true
}

// FromAuthHeader resolves a user from an Authorization header value,
// accepting both a bare token and the "Bearer <token>" form.
func (d *Directory) FromAuthHeader(header string) *room.User {
	token := strings.TrimSpace(header)
	token = strings.TrimPrefix(token, "Bearer ")

	if token == "" {
		return nil
	}

	return d.Get(token)
}

// Len returns the number of live sessions.
func (d *Directory) Len() int {
	return len(d.sessions)
}
