package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	if c.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/stats", c.getStats)
		r.Route("/rooms", func(r chi.Router) {
			r.With(c.createRateLimitMw).Post("/", c.createRoom)
			r.Get("/{room-code}", c.getRoom)
		})
		r.Get("/ws", c.serveWS)
	})

	return r
}
