package hub

import (
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"syncroom/internal/app/room"
	"syncroom/internal/pkg/errs"
	"syncroom/internal/pkg/randx"
	"syncroom/internal/protocol"
)

// HTTP-facing operations. Each enters the hub loop through Do so REST
// traffic observes the same serialized ordering as connection events.

// JoinResult is the credential set handed to a user who created or joined
// a room over HTTP. The session token authenticates the later WebSocket
// upgrade.
type JoinResult struct {
	UserID       string `json:"userId"`
	SessionToken string `json:"sessionToken"`
	RoomSlug     string `json:"roomSlug"`
	RoomName     string `json:"roomName"`
}

// CheckSlug reports whether a slug is valid and free to claim.
func (h *Hub) CheckSlug(slug string) *errs.CustomError {
	if !randx.IsValidSlug(slug) {
		return errs.NewError(errs.ErrRoomSlugInvalid)
	}

	var taken bool
	h.Do(func() { taken = h.registry.Get(slug) != nil })

	if taken {
		return errs.NewError(errs.ErrRoomSlugExists)
	}
	return nil
}

// CreateRoom creates a room and joins its first user, who becomes owner.
func (h *Hub) CreateRoom(slug, name, displayName, gravatarHash string) (*JoinResult, *errs.CustomError) {
	if !randx.IsValidSlug(slug) {
		return nil, errs.NewError(errs.ErrRoomSlugInvalid)
	}
	if err := room.CheckName(name); err != nil {
		return nil, errs.NewError(errs.ErrRoomNameInvalid)
	}
	if cerr := checkIdentity(displayName, gravatarHash); cerr != nil {
		return nil, cerr
	}

	var result *JoinResult
	var cerr *errs.CustomError

	h.Do(func() {
		r, err := h.registry.Create(slug, name)
		if err != nil {
			cerr = errs.NewError(errs.ErrRoomSlugExists)
			return
		}

		u := r.Join(strings.TrimSpace(displayName), gravatarHash, time.Now())
		h.sessions.Register(u)
		result = joinResultFor(u)

		h.logger.Info().
			Str("room_slug", slug).
			Str("user_id", u.ID).
			Msg("Room created.")
	})

	return result, cerr
}

// JoinRoom adds a user to an existing room.
func (h *Hub) JoinRoom(slug, displayName, gravatarHash string) (*JoinResult, *errs.CustomError) {
	if cerr := checkIdentity(displayName, gravatarHash); cerr != nil {
		return nil, cerr
	}

	var result *JoinResult
	var cerr *errs.CustomError

	h.Do(func() {
		r := h.registry.Get(slug)
		if r == nil {
			cerr = errs.NewError(errs.ErrRoomNotFound)
			return
		}

		u := r.Join(strings.TrimSpace(displayName), gravatarHash, time.Now())
		h.sessions.Register(u)
		result = joinResultFor(u)

		h.logger.Info().
			Str("room_slug", slug).
			Str("user_id", u.ID).
			Msg("User joined room.")
	})

	return result, cerr
}

// RoomInfo returns the public metadata of a room.
func (h *Hub) RoomInfo(slug string) (*protocol.RoomInfo, *errs.CustomError) {
	var info *protocol.RoomInfo

	h.Do(func() {
		if r := h.registry.Get(slug); r != nil {
			info = &protocol.RoomInfo{Slug: r.Slug, Name: r.Name()}
		}
	})

	if info == nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}
	return info, nil
}

// ResolveSession looks a session token up, returning nil for unknown tokens.
func (h *Hub) ResolveSession(token string) *room.User {
	var u *room.User
	h.Do(func() { u = h.sessions.Get(token) })
	return u
}

// ResolveAuthHeader authenticates an Authorization header against the
// session directory.
func (h *Hub) ResolveAuthHeader(header string) *room.User {
	var u *room.User
	h.Do(func() { u = h.sessions.FromAuthHeader(header) })
	return u
}

// Attach binds an upgraded WebSocket to its user and starts the pumps. The
// open event runs on the hub loop before any frame from this socket can be
// dispatched.
func (h *Hub) Attach(ws *websocket.Conn, u *room.User) {
	c := newConnection(h, ws, u)

	h.Do(func() { h.handleOpen(c) })

	go c.writePump()
	go c.readPump()
}

func checkIdentity(displayName, gravatarHash string) *errs.CustomError {
	if err := room.CheckDisplayName(displayName, gravatarHash); err != nil {
		if gravatarHash != "" && !randx.IsGravatarHash(gravatarHash) {
			return errs.NewError(errs.ErrGravatarHashInvalid)
		}
		return errs.NewError(errs.ErrDisplayNameInvalid)
	}
	return nil
}

func joinResultFor(u *room.User) *JoinResult {
	return &JoinResult{
		UserID:       u.ID,
		SessionToken: u.SessionToken,
		RoomSlug:     u.Room.Slug,
		RoomName:     u.Room.Name(),
	}
}
