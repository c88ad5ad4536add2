// Package handler exposes the service request API over HTTP.
package handler

import (
	"net/http"

	"github.com/servicedesk/backend/internal/repository"
)

// Handler carries the dependencies shared by the infrastructure routes
// (health, CORS).
type Handler struct {
	db          repository.DB
	frontendURL string
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{db: db, frontendURL: frontendURL}
}

// CORS allows the dashboard origin to call the API with a bearer token.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", h.frontendURL)
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		hdr.Set("Access-Control-Allow-Credentials", "true")
		hdr.Set("Access-Control-Max-Age", "600")
		hdr.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
