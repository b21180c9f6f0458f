package handlers

import (
	"html/template"
	"log"
	"net/http"

	"calmhub/internal/models"
	"calmhub/internal/security"
	"calmhub/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	templates            *template.Template
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// redirectForRole returns the dashboard path for an account's role
func redirectForRole(account *models.Account) string {
	if account.Role == models.RoleLearner {
		return "/learner/dashboard"
	}
	return "/grownup/dashboard"
}

// Home redirects to the proper dashboard, or login when signed out
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if account, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, redirectForRole(account), http.StatusSeeOther)
			return
		}
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	// Check if already logged in
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if account, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, redirectForRole(account), http.StatusSeeOther)
			return
		}
	}

	data := map[string]interface{}{
		"Title":          "Login - Calm Learning Hub",
		"OAuthProviders": h.oauthProviderViews(r),
	}

	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		log.Printf("Error rendering login template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	session, account, err := h.authService.Login(email, password)
	if err != nil {
		message := "Invalid email or password"
		if err == service.ErrNoSuchAccount {
			message = "No account found for that email"
		}
		data := map[string]interface{}{
			"Title":          "Login - Calm Learning Hub",
			"Error":          message,
			"Email":          email,
			"OAuthProviders": h.oauthProviderViews(r),
		}
		if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
			log.Printf("Error rendering login template: %v", err)
			http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		}
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, redirectForRole(account), http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	// Check if already logged in
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if account, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, redirectForRole(account), http.StatusSeeOther)
			return
		}
	}

	data := map[string]interface{}{
		"Title":          "Register - Calm Learning Hub",
		"Role":           r.URL.Query().Get("role"),
		"OAuthProviders": h.oauthProviderViews(r),
	}

	if err := h.templates.ExecuteTemplate(w, "register.tmpl", data); err != nil {
		log.Printf("Error rendering register template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	passwordRepeat := r.FormValue("password_repeat")
	role := models.Role(r.FormValue("role"))

	_, err := h.authService.Register(name, email, password, passwordRepeat, role)
	if err != nil {
		data := map[string]interface{}{
			"Title":          "Register - Calm Learning Hub",
			"Error":          err.Error(),
			"Name":           name,
			"Email":          email,
			"Role":           string(role),
			"OAuthProviders": h.oauthProviderViews(r),
		}
		if err := h.templates.ExecuteTemplate(w, "register.tmpl", data); err != nil {
			log.Printf("Error rendering register template: %v", err)
			http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		}
		return
	}

	// Auto-login after registration
	session, account, err := h.authService.Login(email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, redirectForRole(account), http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		_ = h.authService.Logout(cookie.Value)
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
