// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jkarimi/wacrm-backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Batch     *BatchHandler
	Customer  *CustomerHandler
	Template  *TemplateHandler
	Dashboard *DashboardHandler
}

// NewRouter assembles the HTTP surface. Everything except auth and the health
// probe sits behind the bearer-token middleware.
func NewRouter(h Handlers, auth *service.AuthService) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/auth/register", h.Auth.Register)
	r.Post("/auth/login", h.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))

		r.Post("/batches/estimate", h.Batch.Estimate)
		r.Post("/batches/create", h.Batch.Create)
		r.Get("/batches/list", h.Batch.List)
		r.Post("/batches/{id}/reschedule", h.Batch.Reschedule)
		r.Get("/batches/{id}/messages", h.Batch.Messages)

		r.Post("/customers/upload", h.Customer.Upload)
		r.Get("/customers/list", h.Customer.List)
		r.Delete("/customers/clear", h.Customer.Clear)

		r.Post("/templates/create", h.Template.Create)
		r.Get("/templates/list", h.Template.List)
		r.Get("/templates/{id}", h.Template.Get)
		r.Delete("/templates/{id}", h.Template.Delete)

		r.Get("/dashboard/stats", h.Dashboard.Stats)
	})

	return r
}
