package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"calmhub/internal/models"
	"calmhub/internal/service"
)

// GrownupHandler handles teacher and parent HTTP requests
type GrownupHandler struct {
	rosterService   *service.RosterService
	lessonService   *service.LessonService
	progressService *service.ProgressService
	helpService     *service.HelpService
	middleware      *Middleware
	templates       *template.Template
}

// NewGrownupHandler creates a new grown-up handler
func NewGrownupHandler(rosterService *service.RosterService, lessonService *service.LessonService, progressService *service.ProgressService, helpService *service.HelpService, middleware *Middleware, templates *template.Template) *GrownupHandler {
	return &GrownupHandler{
		rosterService:   rosterService,
		lessonService:   lessonService,
		progressService: progressService,
		helpService:     helpService,
		middleware:      middleware,
		templates:       templates,
	}
}

// Dashboard renders the grown-up dashboard
func (h *GrownupHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	learners, err := h.rosterService.Learners(account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting learners", err)
		return
	}

	requests, err := h.helpService.ListForGrownup(account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting help requests", err)
		return
	}

	data := GrownupDashboardViewData{
		Title:     "Dashboard - Calm Learning Hub",
		Account:   account,
		Learners:  learners,
		Requests:  requests,
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering dashboard template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowLearners renders the learner roster with search results
func (h *GrownupHandler) ShowLearners(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	learners, err := h.rosterService.Learners(account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting learners", err)
		return
	}

	query := r.URL.Query().Get("q")
	var results []models.Account
	if query != "" {
		results, err = h.rosterService.SearchLearners(query)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error searching learners", err)
			return
		}
	}

	data := LearnersViewData{
		Title:     "My Learners - Calm Learning Hub",
		Account:   account,
		Learners:  learners,
		Results:   results,
		Query:     query,
		Success:   r.URL.Query().Get("linked"),
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "learners.tmpl", data); err != nil {
		log.Printf("Error rendering learners template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// LinkLearner connects a learner account to the signed-in grown-up
func (h *GrownupHandler) LinkLearner(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	learnerID, err := strconv.ParseInt(r.FormValue("learner_id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.rosterService.Link(account, learnerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error linking learner", err)
		return
	}

	http.Redirect(w, r, "/grownup/learners?linked=1", http.StatusSeeOther)
}

// ShowComposer renders the lesson composer form
func (h *GrownupHandler) ShowComposer(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	learners, err := h.rosterService.Learners(account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting learners", err)
		return
	}

	data := ComposerViewData{
		Title:     "New Lesson - Calm Learning Hub",
		Account:   account,
		Learners:  learners,
		Draft:     models.LessonDraft{Mode: "chapter"},
		UseAI:     true,
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "composer.tmpl", data); err != nil {
		log.Printf("Error rendering composer template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// GenerateLesson builds a simplified draft and renders the preview
func (h *GrownupHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	mode := r.FormValue("mode")
	originalText := r.FormValue("original_text")
	useAI := r.FormValue("use_ai") == "on"

	learners, err := h.rosterService.Learners(account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting learners", err)
		return
	}

	draft := h.lessonService.BuildDraft(r.Context(), title, mode, originalText, useAI)

	data := ComposerViewData{
		Title:     "New Lesson - Calm Learning Hub",
		Account:   account,
		Learners:  learners,
		Draft:     draft,
		UseAI:     useAI,
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "composer.tmpl", data); err != nil {
		log.Printf("Error rendering composer template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// SaveLesson persists a previewed draft and assigns it to the chosen learners
func (h *GrownupHandler) SaveLesson(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	draft := models.LessonDraft{
		Title:          r.FormValue("title"),
		Mode:           r.FormValue("mode"),
		OriginalText:   r.FormValue("original_text"),
		SimplifiedText: r.FormValue("simplified_text"),
		ImageB64:       r.FormValue("image_b64"),
	}

	lesson, err := h.lessonService.Save(account, draft)
	if err != nil {
		learners, lerr := h.rosterService.Learners(account)
		if lerr != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting learners", lerr)
			return
		}
		data := ComposerViewData{
			Title:     "New Lesson - Calm Learning Hub",
			Account:   account,
			Learners:  learners,
			Draft:     draft,
			Error:     err.Error(),
			CSRFToken: h.getCSRFToken(r),
		}
		if err := h.templates.ExecuteTemplate(w, "composer.tmpl", data); err != nil {
			log.Printf("Error rendering composer template: %v", err)
			http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		}
		return
	}

	var learnerIDs []int64
	for _, raw := range r.Form["learner_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		learnerIDs = append(learnerIDs, id)
	}

	if err := h.progressService.AssignToAll(lesson.ID, learnerIDs); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error assigning lesson", err)
		return
	}

	http.Redirect(w, r, "/grownup/progress", http.StatusSeeOther)
}

// ShowProgress renders the per-learner progress table
func (h *GrownupHandler) ShowProgress(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rows, err := h.progressService.ListForGrownup(account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting progress", err)
		return
	}

	data := ProgressViewData{
		Title:   "Progress - Calm Learning Hub",
		Account: account,
		Rows:    rows,
	}

	if err := h.templates.ExecuteTemplate(w, "progress.tmpl", data); err != nil {
		log.Printf("Error rendering progress template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowHelpRequests renders the help-request mailbox
func (h *GrownupHandler) ShowHelpRequests(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	requests, err := h.helpService.ListForGrownup(account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting help requests", err)
		return
	}

	data := HelpRequestsViewData{
		Title:     "Help Requests - Calm Learning Hub",
		Account:   account,
		Requests:  requests,
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "help_requests.tmpl", data); err != nil {
		log.Printf("Error rendering help requests template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ResolveHelpRequest marks a help request as resolved
func (h *GrownupHandler) ResolveHelpRequest(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.helpService.Resolve(requestID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error resolving help request", err)
		return
	}

	http.Redirect(w, r, "/grownup/help", http.StatusSeeOther)
}

// getCSRFToken is a helper to get CSRF token from session
func (h *GrownupHandler) getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := h.middleware.GetCSRFToken(cookie.Value)
	return token
}
