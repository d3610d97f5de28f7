// internal/app/features/students/routes.go
package students

import (
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the student roster endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireTeam)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeUpsert)
	r.Delete("/{id}", h.ServeDelete)

	return r
}
