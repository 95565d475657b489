/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains the HandleWebSocket function, which is responsible for resolving
the session token, upgrading the HTTP connection to WebSocket, and handing the
socket to the hub for the connection lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"syncroom/internal/pkg/errs"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			logx.Warn("WebSocket request rejected: Missing session token")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		user := deps.Hub.ResolveSession(token)
		if user == nil {
			logx.Warn("WebSocket request rejected: Unknown session token")
			resp.RespondError(w, r, errs.NewError(errs.ErrSessionInvalid))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established",
			"user_id", user.ID, "room_slug", user.Room.Slug)

		deps.Hub.Attach(conn, user)
	}
}
