/*
Package handler provides the HTTP handlers and routing setup for the room server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"syncroom/internal/pkg/limiter"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/pkg/resp"
)

const (
	CreateRate  = 0.05
	CreateBurst = 2
	JoinRate    = 0.2
	JoinBurst   = 5
	MediaRate   = 0.5
	MediaBurst  = 3
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware before wiring the room, media, and WebSocket handlers.
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	joinLimiter := limiter.NewIPRateLimiter(rate.Limit(JoinRate), JoinBurst)
	mediaLimiter := limiter.NewIPRateLimiter(rate.Limit(MediaRate), MediaBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Sync Room Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/room", func(room chi.Router) {
		room.Post("/canCreate/{slug}", HandleCanCreate(deps))

		rateLimitedCreateHandler := createLimiter.Middleware(HandleCreateRoom(deps))
		room.Post("/create", http.HandlerFunc(rateLimitedCreateHandler.ServeHTTP))

		rateLimitedJoinHandler := joinLimiter.Middleware(HandleJoinRoom(deps))
		room.Post("/join", http.HandlerFunc(rateLimitedJoinHandler.ServeHTTP))

		room.Post("/{slug}/info", HandleRoomInfo(deps))
	})

	rateLimitedMediaHandler := mediaLimiter.Middleware(HandleMediaCheck(deps))
	r.Post("/media/check", http.HandlerFunc(rateLimitedMediaHandler.ServeHTTP))

	r.Get("/session/connect/{token}", HandleWebSocket(wsUpgrader, deps))

	return r
}
