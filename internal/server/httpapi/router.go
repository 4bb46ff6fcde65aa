// Package httpapi provides HTTP routing and handlers for the tripsync
// sync API.
//
// Routes:
//
//	POST   /api/auth/register                      → create an account, returns a token
//	POST   /api/auth/login                         → authenticate, returns a token
//	GET    /api/health                             → liveness probe, no auth
//	POST   /api/sync/{userID}/{deviceID}/{dataType} → upsert one device's payload
//	GET    /api/sync/{userID}/{deviceID}/{dataType} → all device records for the data type
//	DELETE /api/sync/{userID}/{deviceID}/{dataType} → remove one device's record
//	GET    /api/sync/{userID}/bulk/all             → every data type's envelope
//	DELETE /api/sync/{userID}/bulk/all             → wipe the user's data
//
// All /api/sync routes require a Bearer token whose user claim matches the
// {userID} path segment.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the public auth endpoints and the token-protected sync
// endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/sync/{userID}", func(r chi.Router) {
			r.Use(h.RequireToken)

			r.Get("/bulk/all", h.GetAll)
			r.Delete("/bulk/all", h.DeleteAll)

			r.Post("/{deviceID}/{dataType}", h.Save)
			r.Get("/{deviceID}/{dataType}", h.Get)
			r.Delete("/{deviceID}/{dataType}", h.Delete)
		})
	})

	return r
}
