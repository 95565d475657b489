/*
Package protocol defines the wire contract shared by the server and its clients.

This file enumerates the message type tags in both directions and the
client-supplied bodies with their validation schemas. Bodies use validator/v10
struct tags for field-level rules; cross-field variant rules live in Validate
methods invoked by the dispatcher after decoding.
*/
package protocol

import "errors"

// Client-to-server message types.
const (
	TypePing           = "ping"
	TypeMessage        = "message"
	TypeSync           = "sync"
	TypeKick           = "kick"
	TypeClearChat      = "clearChat"
	TypeUpdateRoom     = "updateRoom"
	TypeKickAll        = "kickAll"
	TypeDestroyRoom    = "destroyRoom"
	TypePromote        = "promote"
	TypeQueryPlayback  = "queryPlayback"
	TypeUpdatePlaylist = "updatePlaylist"
	TypePlaybackStats  = "playbackStats"
	TypeStruggle       = "struggle"
)

// Server-to-client message types.
const (
	TypeRoomHello      = "roomHello"
	TypeRoomUpdated    = "roomUpdated"
	TypePong           = "pong"
	TypeSSync          = "ssync"
	TypeChatMessage    = "chatMessage"
	TypeChatCleared    = "chatCleared"
	TypeUserJoined     = "userJoined"
	TypeUserLeft       = "userLeft"
	TypeUserState      = "userState"
	TypePlaybackQuery  = "playbackQuery"
	TypePlaybackReport = "playbackReport"
	TypeUserStruggle   = "userStruggle"
	TypeError          = "error"
)

// MaxChatTextLength bounds the text of a single chat message.
const MaxChatTextLength = 250

// MinMediaTokenLength is the shortest plausible signed media token. Anything
// below it is rejected before the signature is even checked.
const MinMediaTokenLength = 8

// MessageBody is the body of a "message" client frame. At least one of Text
// and Recommendation must be present.
type MessageBody struct {
	Text           string `json:"text,omitempty" validate:"omitempty,max=250"`
	Recommendation string `json:"recommendation,omitempty" validate:"omitempty,min=8"`
}

// Validate enforces the variant rule the struct tags cannot express.
func (b *MessageBody) Validate() error {
	if b.Text == "" && b.Recommendation == "" {
		return errors.New("message requires text or a recommendation")
	}
	return nil
}

// TargetBody is the body of client frames referencing another member
// (kick, promote, queryPlayback).
type TargetBody struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

// UpdateRoomBody is the body of an "updateRoom" client frame. Absent fields
// are left unchanged.
type UpdateRoomBody struct {
	Name *string `json:"name,omitempty"`
}

// UpdatePlaylistBody is the body of an "updatePlaylist" client frame: the
// full desired playlist as an ordered list of opaque media tokens.
type UpdatePlaylistBody []string

// Validate rejects entries too short to be signed tokens.
func (b UpdatePlaylistBody) Validate() error {
	for _, token := range b {
		if len(token) < MinMediaTokenLength {
			return errors.New("playlist entry is not a valid media token")
		}
	}
	return nil
}

// PongBody is the body of a "pong" server reply.
type PongBody struct {
	Timestamp int64 `json:"timestamp"`
}

// UserRefBody references a single member in server broadcasts
// (userLeft, userStruggle).
type UserRefBody struct {
	UserID string `json:"userId"`
}

// UserStateBody announces a presence transition for a member.
type UserStateBody struct {
	UserID    string        `json:"userId"`
	Timestamp int64         `json:"timestamp"`
	State     WireUserState `json:"state"`
}

// PlaybackReportBody forwards one member's playback statistics to the room.
type PlaybackReportBody struct {
	UserID string        `json:"userId"`
	Stats  PlaybackStats `json:"stats"`
}
