package handlers

import (
	"calmhub/internal/models"
)

type GrownupDashboardViewData struct {
	Title     string
	Account   *models.Account
	Learners  []models.Account
	Requests  []models.HelpRequestWithSender
	CSRFToken string
}

type LearnersViewData struct {
	Title     string
	Account   *models.Account
	Learners  []models.Account
	Results   []models.Account
	Query     string
	Error     string
	Success   string
	CSRFToken string
}

type ComposerViewData struct {
	Title     string
	Account   *models.Account
	Learners  []models.Account
	Draft     models.LessonDraft
	UseAI     bool
	Error     string
	CSRFToken string
}

type ProgressViewData struct {
	Title   string
	Account *models.Account
	Rows    []models.ProgressRow
}

type HelpRequestsViewData struct {
	Title     string
	Account   *models.Account
	Requests  []models.HelpRequestWithSender
	CSRFToken string
}

type LearnerDashboardViewData struct {
	Title       string
	Account     *models.Account
	Assignments []models.AssignmentWithLesson
}

type LessonViewerViewData struct {
	Title      string
	Account    *models.Account
	Item       *models.AssignmentWithLesson
	Steps      []string
	Step       int
	TotalSteps int
	CSRFToken  string
}

type HelpFormViewData struct {
	Title     string
	Account   *models.Account
	Grownups  []models.Account
	Error     string
	Success   string
	CSRFToken string
}
