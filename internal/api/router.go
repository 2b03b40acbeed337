package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new chi router with all chat endpoints
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()

	// middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// read only cors
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// health check
	r.Get("/health", handler.Health)

	// api v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handler.Status)

		// classified chats
		r.Get("/chats", handler.ListChats)
		r.Get("/channels", handler.ListChannels)
		r.Get("/groups", handler.ListGroups)
		r.Get("/forums", handler.ListForums)
		r.Get("/forums/{chatID}/topics", handler.ListForumTopics)

		// history
		r.Get("/chats/{chatID}/messages", handler.ListMessages)
	})

	return r
}
