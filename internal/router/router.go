package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	httphandler "broadcast-service/internal/handler/http"
	wshandler "broadcast-service/internal/handler/ws"
	"broadcast-service/internal/middleware"
	"broadcast-service/internal/response"
)

// SetupRoutes configures the HTTP surface: the internal trigger API for
// the main application and the WebSocket edge for end clients.
func SetupRoutes(
	r chi.Router,
	h *httphandler.BroadcastHandler,
	wsHandler *wshandler.WSHandler,
	auth *middleware.Auth,
	rdb *redis.Client,
	healthCheck func() error,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(middleware.RateLimiter(rdb, 300, time.Minute, 10*time.Minute, "broadcast"))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := healthCheck(); err != nil {
			response.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Trigger endpoints: one per domain mutation the main app reports.
	r.Route("/api/v1/broadcast", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require("app"))

			r.Post("/message-sent", h.MessageSent)
			r.Post("/group-message-sent", h.GroupMessageSent)
			r.Post("/chat-created", h.ChatCreated)
			r.Post("/chat-group-created", h.ChatGroupCreated)
			r.Post("/chat-list-updated", h.ChatListUpdated)
			r.Post("/reservation-created", h.ReservationCreated)
			r.Post("/reservation-updated", h.ReservationUpdated)
			r.Post("/favorite-toggled", h.FavoriteToggled)
			r.Post("/notification-sent", h.NotificationSent)
		})

		// WebSocket endpoint for guests and casts.
		r.Get("/ws", wsHandler.HandleSubscribe)
	})
	return r
}
