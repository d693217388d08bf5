package handlers

import (
	"errors"
	"net/http"
	"time"

	"studyquest/internal/security"
	"studyquest/internal/service"
)

// AuthHandler implements the parent-gate login.
type AuthHandler struct {
	authService     *service.AuthService
	sessionDuration time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, sessionDuration time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, sessionDuration: sessionDuration}
}

// Login checks the parent password and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			respondWithError(w, http.StatusUnauthorized, "Wrong password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Login failed", "Error during parent login", err)
		return
	}

	expires := time.Now().Add(h.sessionDuration)
	http.SetCookie(w, security.CreateSessionCookie(r, security.ParentSessionCookie, token, expires))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout clears the parent session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.ParentSessionCookie))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
