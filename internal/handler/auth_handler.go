package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/servicedesk/backend/internal/service"
)

// AuthHandler handles the admin credential exchange.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		slog.Warn("admin login rejected", "remote_addr", r.RemoteAddr)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("admin login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
