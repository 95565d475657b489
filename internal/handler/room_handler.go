/*
Package handler provides HTTP handler functions for room creation, joining,
and metadata lookups.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"syncroom/internal/pkg/errs"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/pkg/randx"
	"syncroom/internal/pkg/req"
	"syncroom/internal/pkg/resp"
)

type CreateRoomInput struct {
	RoomName string `json:"roomName"`
	RoomSlug string `json:"roomSlug"`
	// DisplayName is the creator's name inside the room.
	DisplayName string `json:"displayName"`
	// GravatarHash is optional; when present it must be a sha256 hex digest.
	GravatarHash string `json:"gravatarHash,omitempty"`
}

type JoinRoomInput struct {
	RoomSlug     string `json:"roomSlug"`
	DisplayName  string `json:"displayName"`
	GravatarHash string `json:"gravatarHash,omitempty"`
}

// HandleCanCreate reports whether a slug is syntactically valid and unclaimed.
func HandleCanCreate(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		if customErr := deps.Hub.CheckSlug(slug); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"slug": slug})
	}
}

// HandleCreateRoom creates an HTTP HandlerFunc to process room creation requests.
// The creator becomes the room owner and receives a session token for the
// WebSocket upgrade.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateRoomInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, createErr := deps.Hub.CreateRoom(
			input.RoomSlug, input.RoomName, input.DisplayName, input.GravatarHash)
		if createErr != nil {
			resp.RespondError(w, r, createErr)
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}

// HandleJoinRoom processes the request to join an existing room.
func HandleJoinRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input JoinRoomInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !randx.IsValidSlug(input.RoomSlug) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		result, joinErr := deps.Hub.JoinRoom(input.RoomSlug, input.DisplayName, input.GravatarHash)
		if joinErr != nil {
			resp.RespondError(w, r, joinErr)
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}

// HandleRoomInfo returns the public metadata of a room without joining it.
func HandleRoomInfo(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		if !randx.IsValidSlug(slug) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		info, infoErr := deps.Hub.RoomInfo(slug)
		if infoErr != nil {
			logx.Info("Room info requested for unknown room.", "room_slug", slug)
			resp.RespondError(w, r, infoErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"name": info.Name})
	}
}
