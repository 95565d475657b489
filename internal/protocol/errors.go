package protocol

// Wire error types, sent as the "type" field of an error message. Clients
// match on these rather than on the human-readable message.
const (
	ErrBinaryData         = "binaryData"
	ErrMalformedMsg       = "malformedMsg"
	ErrNobodyCared        = "nobodyCared"
	ErrServerError        = "serverError"
	ErrUnauthorized       = "unauthorized"
	ErrRateLimit          = "ratelimit"
	ErrBadSync            = "badSync"
	ErrInvalidMedia       = "invalidMedia"
	ErrUserNotFound       = "userNotFound"
	ErrBadRoomUpdate      = "badRoomUpdate"
	ErrPlaylistDuplicates = "playlistDuplicates"
	ErrSelfTarget         = "selfTarget"
)

// WireError is the body of an "error" server message.
type WireError struct {
	// Cause is the client message type that triggered the error, when known.
	Cause string `json:"cause,omitempty"`

	Type    string `json:"type"`
	Message string `json:"message"`

	// TimeoutSeconds accompanies ratelimit errors: how long to back off.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}
