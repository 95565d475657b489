package protocol

// WireUserState is the presence value exposed on the wire. The internal
// distinction between new and reconnecting users collapses to "disconnected".
type WireUserState string

const (
	WireUserPresent      WireUserState = "present"
	WireUserDisconnected WireUserState = "disconnected"
)

// WireUser is the public view of a room member.
type WireUser struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	GravatarHash string        `json:"gravatarHash"`
	State        WireUserState `json:"state"`
	LastChange   int64         `json:"lastStateChange"`
}

// RoomInfo is the identifying metadata of a room.
type RoomInfo struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// WireRoom is the full public snapshot of a room, sent in roomHello.
type WireRoom struct {
	Room     RoomInfo      `json:"room"`
	OwnerID  string        `json:"ownerId"`
	Users    []WireUser    `json:"users"`
	Chat     []ChatMessage `json:"chat"`
	Sync     SyncState     `json:"sync"`
	Playlist []string      `json:"playlist"`
}

// RoomHelloBody is the WireRoom snapshot plus the receiver's own identity.
type RoomHelloBody struct {
	WireRoom
	You WireUser `json:"you"`
}

// RoomUpdatedBody is a partial room snapshot; nil fields are unchanged.
type RoomUpdatedBody struct {
	Room     *RoomInfo  `json:"room,omitempty"`
	OwnerID  *string    `json:"ownerId,omitempty"`
	Playlist *[]string  `json:"playlist,omitempty"`
	Sync     *SyncState `json:"sync,omitempty"`
}

// Chat message variants.
const (
	ChatUser   = "user"
	ChatSystem = "system"
)

// ChatMessage is one entry of a room's chat history, immutable once
// appended. The user variant carries the author and optionally a validated
// media recommendation; the system variant only carries text.
type ChatMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	UserID         string `json:"userId,omitempty"`
	Text           string `json:"text,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}
