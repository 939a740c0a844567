package router

import (
	"net/http"

	"commission-tracker/internal/http-server/handler/auth"
	"commission-tracker/internal/http-server/handler/commission"
	"commission-tracker/internal/http-server/handler/file"
	"commission-tracker/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CommissionHandler *commission.CommissionHandler
	FileHandler       *file.FileHandler
	AuthHandler       *auth.AuthHandler
	RequireSession    func(http.Handler) http.Handler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", h.CommissionHandler.ListCommissions)
			r.Get("/{id}", h.CommissionHandler.GetCommission)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireSession)
				r.Post("/", h.CommissionHandler.CreateCommission)
				r.Put("/{id}", h.CommissionHandler.CompleteCommission)
				r.Patch("/{id}", h.CommissionHandler.UpdateCommission)
				r.Delete("/{id}", h.CommissionHandler.DeleteCommission)
			})
		})

		r.Get("/files/{key}", h.FileHandler.GetFile)

		r.Post("/auth", h.AuthHandler.Login)
		r.Delete("/auth", h.AuthHandler.Logout)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
