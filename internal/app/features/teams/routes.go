// internal/app/features/teams/routes.go
package teams

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the admin team registry.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeSave)
	r.Delete("/{id}", h.ServeDelete)

	return r
}
