/*
Package errs provides custom error types and application-level error code
constants for the HTTP surface.

These codes identify specific business or system errors both inside the
server and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room Business Logic Errors
const (
	// ErrRoomSlugInvalid indicates a slug outside the allowed charset/length.
	ErrRoomSlugInvalid = 2101

	// ErrRoomSlugExists indicates that the requested slug is already taken.
	ErrRoomSlugExists = 2102

	// ErrRoomNotFound indicates that no room exists under the given slug.
	ErrRoomNotFound = 2103

	// ErrRoomNameInvalid indicates an empty or overlong room name.
	ErrRoomNameInvalid = 2104
)

// 3xxx: User and Session Errors
const (
	// ErrDisplayNameInvalid indicates an empty or overlong display name.
	ErrDisplayNameInvalid = 3001

	// ErrGravatarHashInvalid indicates a malformed gravatar hash.
	ErrGravatarHashInvalid = 3002

	// ErrSessionInvalid indicates a missing or unknown session token.
	ErrSessionInvalid = 3003
)

// 4xxx: Media Errors
const (
	// ErrMediaInvalid indicates that a media source failed attestation.
	ErrMediaInvalid = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
