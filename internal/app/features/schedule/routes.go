// internal/app/features/schedule/routes.go
package schedule

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the registration window endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTeam)
		r.Get("/", h.ServeGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Put("/", h.ServeSave)
	})

	return r
}
