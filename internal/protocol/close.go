package protocol

// Application WebSocket close codes (4000-4999 range). Each carries a short
// machine-readable reason string in the close frame.
const (
	// CloseLeave is sent by a client intentionally leaving the room.
	CloseLeave = 4000

	// CloseKicked is sent when the owner removes a member.
	CloseKicked = 4001

	// CloseRoomDestroyed is sent to every member when the room is torn down.
	CloseRoomDestroyed = 4002

	// CloseConnectedElsewhere is sent to a stale connection superseded by a
	// reconnect on the same session.
	CloseConnectedElsewhere = 4003
)

// Reason strings paired with the close codes above.
const (
	ReasonLeave              = "leave"
	ReasonKicked             = "kicked"
	ReasonRoomDestroyed      = "roomDestroyed"
	ReasonConnectedElsewhere = "connectedElsewhere"
)
