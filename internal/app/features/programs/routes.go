// internal/app/features/programs/routes.go
package programs

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the program catalog endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTeam)
		r.Get("/", h.ServeList)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/", h.ServeSave)
		r.Delete("/{id}", h.ServeDelete)
	})

	return r
}
