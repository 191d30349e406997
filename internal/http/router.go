package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taxright/taxright/internal/http/invoice"
)

func New(invoicesV1 *invoice.Handler, jwtSecret string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(jwtSecret))

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("multipart/form-data", "application/json"))
			invoicesV1.Routes(r)
		})
	})

	return router
}
