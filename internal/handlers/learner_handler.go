package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"calmhub/internal/models"
	"calmhub/internal/service"
)

// LearnerHandler handles learner HTTP requests
type LearnerHandler struct {
	progressService *service.ProgressService
	rosterService   *service.RosterService
	helpService     *service.HelpService
	middleware      *Middleware
	templates       *template.Template
}

// NewLearnerHandler creates a new learner handler
func NewLearnerHandler(progressService *service.ProgressService, rosterService *service.RosterService, helpService *service.HelpService, middleware *Middleware, templates *template.Template) *LearnerHandler {
	return &LearnerHandler{
		progressService: progressService,
		rosterService:   rosterService,
		helpService:     helpService,
		middleware:      middleware,
		templates:       templates,
	}
}

// Dashboard renders the learner's assignment list
func (h *LearnerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	assignments, err := h.progressService.ListForLearner(account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting assignments", err)
		return
	}

	data := LearnerDashboardViewData{
		Title:       "My Lessons - Calm Learning Hub",
		Account:     account,
		Assignments: assignments,
	}

	if err := h.templates.ExecuteTemplate(w, "learner_dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering learner dashboard template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowLesson renders the step viewer for one assignment
func (h *LearnerHandler) ShowLesson(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	assignmentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	item, err := h.progressService.GetForLearner(assignmentID, account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting assignment", err)
		return
	}
	if item == nil {
		http.Redirect(w, r, "/learner/dashboard", http.StatusSeeOther)
		return
	}

	data := LessonViewerViewData{
		Title:      item.Title + " - Calm Learning Hub",
		Account:    account,
		Item:       item,
		Steps:      models.Steps(item.SimplifiedText),
		Step:       item.CurrentStep(),
		TotalSteps: item.TotalSteps(),
		CSRFToken:  h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "lesson_viewer.tmpl", data); err != nil {
		log.Printf("Error rendering lesson viewer template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// AdvanceStep moves the learner one step forward or backward
func (h *LearnerHandler) AdvanceStep(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	assignmentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	// Ownership check before touching progress
	item, err := h.progressService.GetForLearner(assignmentID, account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting assignment", err)
		return
	}
	if item == nil {
		http.Redirect(w, r, "/learner/dashboard", http.StatusSeeOther)
		return
	}

	direction := models.StepForward
	if r.FormValue("direction") == "backward" {
		direction = models.StepBackward
	}

	if err := h.progressService.Advance(assignmentID, direction); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error advancing step", err)
		return
	}

	http.Redirect(w, r, "/learner/assignments/"+strconv.FormatInt(assignmentID, 10), http.StatusSeeOther)
}

// CompleteLesson marks an assignment as finished
func (h *LearnerHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	assignmentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	item, err := h.progressService.GetForLearner(assignmentID, account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting assignment", err)
		return
	}
	if item == nil {
		http.Redirect(w, r, "/learner/dashboard", http.StatusSeeOther)
		return
	}

	if err := h.progressService.Complete(assignmentID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error completing lesson", err)
		return
	}

	http.Redirect(w, r, "/learner/dashboard", http.StatusSeeOther)
}

// ShowHelpForm renders the help request form
func (h *LearnerHandler) ShowHelpForm(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	grownups, err := h.rosterService.GrownupsForLearner(account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting grown-ups", err)
		return
	}

	success := ""
	if r.URL.Query().Get("sent") == "1" {
		success = "Your message was sent"
	}

	data := HelpFormViewData{
		Title:     "Ask for Help - Calm Learning Hub",
		Account:   account,
		Grownups:  grownups,
		Success:   success,
		CSRFToken: h.getCSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "help_form.tmpl", data); err != nil {
		log.Printf("Error rendering help form template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// SubmitHelp sends a help request to a linked grown-up
func (h *LearnerHandler) SubmitHelp(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	if account == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	toUserID, err := strconv.ParseInt(r.FormValue("to_user_id"), 10, 64)
	if err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}
	message := r.FormValue("message")

	if _, err := h.helpService.Submit(r.Context(), account, toUserID, message); err != nil {
		grownups, gerr := h.rosterService.GrownupsForLearner(account.ID)
		if gerr != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting grown-ups", gerr)
			return
		}
		data := HelpFormViewData{
			Title:     "Ask for Help - Calm Learning Hub",
			Account:   account,
			Grownups:  grownups,
			Error:     err.Error(),
			CSRFToken: h.getCSRFToken(r),
		}
		if err := h.templates.ExecuteTemplate(w, "help_form.tmpl", data); err != nil {
			log.Printf("Error rendering help form template: %v", err)
			http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/learner/help?sent=1", http.StatusSeeOther)
}

// getCSRFToken is a helper to get CSRF token from session
func (h *LearnerHandler) getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := h.middleware.GetCSRFToken(cookie.Value)
	return token
}
