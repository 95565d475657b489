/*
Package room contains the in-memory domain model of the coordination core.

This file defines the Room aggregate: the member set, the weak owner
reference, ownership election, the bounded chat history, the playlist, and
the shared playback sync state. The aggregate holds no locks; all access is
serialized by the hub's event loop.
*/
package room

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"syncroom/internal/pkg/randx"
	"syncroom/internal/protocol"
)

const (
	// MaxChatHistory bounds the chat ring; the oldest entry is evicted on overflow.
	MaxChatHistory = 256

	// MaxNameLength bounds room display names.
	MaxNameLength = 64
)

// ErrPlaylistDuplicate rejects a playlist update containing the same media
// token more than once.
var ErrPlaylistDuplicate = errors.New("playlist contains duplicate media tokens")

// ErrNotMember rejects a promotion of a user who is not in the room.
var ErrNotMember = errors.New("user is not a member of this room")

// MediaRejectedError reports a playlist entry that failed attestation
// validation. The whole update is aborted when it occurs.
type MediaRejectedError struct {
	Token string
	Err   error
}

func (e *MediaRejectedError) Error() string {
	return fmt.Sprintf("media token rejected: %v", e.Err)
}

func (e *MediaRejectedError) Unwrap() error { return e.Err }

// MediaValidator validates a single opaque media token.
type MediaValidator interface {
	Validate(token string) error
}

// Room is a named in-memory space grouping users around one shared
// playback/chat/playlist state.
type Room struct {
	// Slug is the stable, immutable identifier.
	Slug string

	// Topic is the broadcast channel key derived from the slug.
	Topic string

	name     string
	users    map[string]*User
	owner    *User
	chat     []protocol.ChatMessage
	playlist []string
	sync     protocol.SyncState
}

// CheckName validates a room display name.
func CheckName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("room name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("room name cannot be longer than %d characters", MaxNameLength)
	}

	return nil
}

// New constructs an empty room. The slug is assumed validated by the caller.
func New(slug, name string) *Room {
	return &Room{
		Slug:  slug,
		Topic: "room:" + slug,
		name:  strings.TrimSpace(name),
		users: make(map[string]*User),
		sync:  protocol.IdleSync(),
	}
}

// Join creates a new User inside this room. The display name is assumed
// validated; an empty gravatar hash is derived from the display name.
func (r *Room) Join(displayName, gravatarHash string, now time.Time) *User {
	displayName = strings.TrimSpace(displayName)

	if gravatarHash == "" {
		gravatarHash = randx.GravatarHash(displayName)
	}

	u := &User{
		ID:           randx.NewUserID(),
		SessionToken: randx.NewSessionToken(),
		DisplayName:  displayName,
		GravatarHash: gravatarHash,
		State:        PresenceNew,
		LastChange:   now,
		Room:         r,
	}

	r.AddUser(u)

	return u
}

// AddUser inserts a user into the member set. The first member of an
// ownerless room becomes owner.
func (r *Room) AddUser(u *User) {
	r.users[u.ID] = u

	if r.owner == nil {
		r.owner = u
	}
}

// RemoveUser deletes a user from the member set. If the removed user was the
// owner, an election runs among the remaining members. The return value
// reports whether ownership changed (including to unset).
func (r *Room) RemoveUser(u *User) (ownerChanged bool) {
	delete(r.users, u.ID)

	if r.owner == u {
		r.electOwner()
		return true
	}

	return false
}

// electOwner picks a new owner from the remaining members: present users
// strictly before non-present ones, and among present users whoever has been
// continuously present longest (earliest last state change). Remaining ties
// order by user id, keeping the election deterministic.
func (r *Room) electOwner() {
	if len(r.users) == 0 {
		r.owner = nil
		return
	}

	candidates := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		candidates = append(candidates, u)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		ap := a.State == PresencePresent
		bp := b.State == PresencePresent

		if ap != bp {
			return ap
		}

		if ap && bp {
			if !a.LastChange.Equal(b.LastChange) {
				return a.LastChange.Before(b.LastChange)
			}
		}

		return a.ID < b.ID
	})

	r.owner = candidates[0]
}

// Promote sets the owner unconditionally, bypassing election. It fails if
// the user is not a current member.
func (r *Room) Promote(u *User) error {
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotMember
	}

	r.owner = u
	return nil
}

// Owner returns the current owner, nil when the room has none.
func (r *Room) Owner() *User {
	return r.owner
}

// Member looks up a user by id.
func (r *Room) Member(id string) (*User, bool) {
	u, ok := r.users[id]
	return u, ok
}

// Users returns a snapshot slice of the current members.
func (r *Room) Users() []*User {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

// Len returns the current member count.
func (r *Room) Len() int {
	return len(r.users)
}

// IsEmpty reports whether the room has no members left.
func (r *Room) IsEmpty() bool {
	return len(r.users) == 0
}

// Name returns the room's display name.
func (r *Room) Name() string {
	return r.name
}

// Rename validates and sets the room's display name.
func (r *Room) Rename(name string) error {
	if err := CheckName(name); err != nil {
		return err
	}

	r.name = strings.TrimSpace(name)
	return nil
}

// AppendMessage stores a chat message, evicting the oldest entry once the
// history exceeds MaxChatHistory.
func (r *Room) AppendMessage(msg protocol.ChatMessage) {
	r.chat = append(r.chat, msg)

	if len(r.chat) > MaxChatHistory {
		r.chat = r.chat[1:]
	}
}

// ClearChat drops the whole chat history.
func (r *Room) ClearChat() {
	r.chat = nil
}

// Chat returns a snapshot copy of the chat history.
func (r *Room) Chat() []protocol.ChatMessage {
	out := make([]protocol.ChatMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

// SetSync replaces the shared playback state.
func (r *Room) SetSync(state protocol.SyncState) {
	r.sync = state
}

// Sync returns the shared playback state.
func (r *Room) Sync() protocol.SyncState {
	return r.sync
}

// Playlist returns a snapshot copy of the playlist.
func (r *Room) Playlist() []string {
	out := make([]string, len(r.playlist))
	copy(out, r.playlist)
	return out
}

// UpdatePlaylist atomically replaces the playlist with newList. Duplicate
// entries are rejected with ErrPlaylistDuplicate. Entries not already in the
// current playlist must pass the media validator; any rejection aborts the
// whole update with a *MediaRejectedError, leaving the playlist unchanged.
// Entries carried over from the old playlist are not re-validated.
func (r *Room) UpdatePlaylist(newList []string, validator MediaValidator) error {
	known := make(map[string]bool, len(r.playlist))
	for _, token := range r.playlist {
		known[token] = false
	}

	toValidate := make([]string, 0, len(newList))

	for _, token := range newList {
		seen, exists := known[token]
		if seen {
			return ErrPlaylistDuplicate
		}

		if !exists {
			toValidate = append(toValidate, token)
		}
		known[token] = true
	}

	for _, token := range toValidate {
		if err := validator.Validate(token); err != nil {
			return &MediaRejectedError{Token: token, Err: err}
		}
	}

	replacement := make([]string, len(newList))
	copy(replacement, newList)
	r.playlist = replacement

	return nil
}

// Snapshot builds the full public view of the room. Users who never
// connected are omitted, matching what clients are told about membership.
func (r *Room) Snapshot() protocol.WireRoom {
	users := make([]protocol.WireUser, 0, len(r.users))
	for _, u := range r.users {
		if u.State == PresenceNew {
			continue
		}
		users = append(users, u.Wire())
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	ownerID := ""
	if r.owner != nil {
		ownerID = r.owner.ID
	}

	return protocol.WireRoom{
		Room:     protocol.RoomInfo{Slug: r.Slug, Name: r.name},
		OwnerID:  ownerID,
		Users:    users,
		Chat:     r.Chat(),
		Sync:     r.sync,
		Playlist: r.Playlist(),
	}
}
