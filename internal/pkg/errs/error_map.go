/*
Package errs provides custom error types and application-level error code
constants for the HTTP surface.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct for every application error
// code. The key is the error code, the value carries the user message and
// HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Business Logic Errors
	ErrRoomSlugInvalid: {Code: ErrRoomSlugInvalid, Message: "Invalid room slug.", Status: http.StatusBadRequest},
	ErrRoomSlugExists:  {Code: ErrRoomSlugExists, Message: "Room already exists.", Status: http.StatusConflict},
	ErrRoomNotFound:    {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomNameInvalid: {Code: ErrRoomNameInvalid, Message: "Room name must be between 1 and 64 characters.", Status: http.StatusBadRequest},

	// 3xxx: User and Session Errors
	ErrDisplayNameInvalid:  {Code: ErrDisplayNameInvalid, Message: "Display name must be between 1 and 64 characters.", Status: http.StatusBadRequest},
	ErrGravatarHashInvalid: {Code: ErrGravatarHashInvalid, Message: "Invalid gravatar hash.", Status: http.StatusBadRequest},
	ErrSessionInvalid:      {Code: ErrSessionInvalid, Message: "Invalid session token.", Status: http.StatusUnauthorized},

	// 4xxx: Media Errors
	ErrMediaInvalid: {Code: ErrMediaInvalid, Message: "Media source failed validation: %s", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
