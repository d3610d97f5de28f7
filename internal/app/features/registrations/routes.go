// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the registration endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTeam)
		r.Get("/", h.ServeList)
		r.Post("/", h.ServeCreate)
		r.Delete("/{id}", h.ServeDelete)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Delete("/program/{programID}", h.ServeDeleteByProgram)
	})

	return r
}
