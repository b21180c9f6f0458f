package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"calmhub/internal/models"
	"calmhub/internal/security"
	"calmhub/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const AccountContextKey ContextKey = "account"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	csrf         *security.CSRFGenerator
	loginLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrfSecret string) *Middleware {
	return &Middleware{
		authService:  authService,
		csrf:         security.NewCSRFGenerator(csrfSecret),
		loginLimiter: security.NewRateLimiter(10, time.Minute),
	}
}

// RequireAuth is middleware that requires a valid session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		account, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next(w, r.WithContext(ctx))
	}
}

// RequireGrownup requires a valid session belonging to a teacher or parent
func (m *Middleware) RequireGrownup(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccountFromContext(r.Context())
		if account == nil || !account.Role.IsGrownup() {
			http.Redirect(w, r, "/learner/dashboard", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// RequireLearner requires a valid session belonging to a learner
func (m *Middleware) RequireLearner(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccountFromContext(r.Context())
		if account == nil || account.Role != models.RoleLearner {
			http.Redirect(w, r, "/grownup/dashboard", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// CSRFProtect validates the CSRF token on state-changing requests
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
			return
		}

		token := r.FormValue("csrf_token")
		if !m.csrf.ValidateToken(cookie.Value, token) {
			log.Printf("CSRF validation failed for %s %s", r.Method, r.URL.Path)
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next(w, r)
	}
}

// RateLimit limits request rates per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.loginLimiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			http.Error(w, "Too many requests, please try again later", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// GetCSRFToken returns the CSRF token for a session
func (m *Middleware) GetCSRFToken(sessionID string) (string, error) {
	return m.csrf.GenerateToken(sessionID)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetAccountFromContext retrieves the account from the request context
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}
