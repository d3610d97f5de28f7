// internal/app/features/replacements/routes.go
package replacements

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the replacement request endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireTeam)
		r.Get("/", h.ServeList)
		r.Post("/", h.ServeCreate)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/{id}/approve", h.ServeApprove)
		r.Post("/{id}/reject", h.ServeReject)
	})

	return r
}
