// internal/app/features/signin/routes.go
package signin

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the sign-in endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeRequestLink)   // mounted under /signin
	r.Get("/callback", h.ServeCallback)
	return r
}
