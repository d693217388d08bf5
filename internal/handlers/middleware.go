package handlers

import (
	"log"
	"net/http"
	"time"

	"studyquest/internal/security"
	"studyquest/internal/service"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	loginLimiter *security.LoginLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService) *Middleware {
	return &Middleware{
		authService:  authService,
		loginLimiter: security.NewLoginLimiter(10, time.Minute),
	}
}

// RequireParent guards the administrative endpoints behind the parent gate.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.ParentSessionCookie)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Parent login required", "", nil)
			return
		}

		if err := m.authService.ValidateToken(cookie.Value); err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.ParentSessionCookie))
			respondWithError(w, http.StatusUnauthorized, "Parent login required", "", nil)
			return
		}

		next(w, r)
	}
}

// RateLimit throttles an endpoint per client IP.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.loginLimiter.Allow(security.ClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many attempts, try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging logs every request with its duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
