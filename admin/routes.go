package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts the admin API under /admin on mux.
func RegisterRoutes(mux *http.ServeMux, handlers *AdminHandlers, secret string) {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(secret))

	r.Post("/classify", handlers.handleClassify)
	r.Post("/canonical", handlers.handleCanonical)
	r.Get("/backends", handlers.handleBackends)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/stats", handlers.handleCacheStats)
	})

	mux.Handle("/admin", http.RedirectHandler("/admin/", http.StatusMovedPermanently))
	mux.Handle("/admin/", http.StripPrefix("/admin", r))

	log.Info().Bool("auth", secret != "").Msg("Admin endpoints enabled at /admin/*")
}
