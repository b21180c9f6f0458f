package service

import (
	"fmt"
	"time"

	"calmhub/internal/models"
	"calmhub/internal/repository"
)

// ProgressService owns the lifecycle of a learner's progress through
// assigned lessons: assign, step navigation, completion, and the read views
// on both sides of the relationship. The step count is never stored; every
// operation recomputes it from the lesson's simplified text and clamps the
// stored step into range at the read boundary.
type ProgressService struct {
	assignmentRepo   *repository.AssignmentRepository
	relationshipRepo *repository.RelationshipRepository
}

// NewProgressService creates a new progress service
func NewProgressService(assignmentRepo *repository.AssignmentRepository, relationshipRepo *repository.RelationshipRepository) *ProgressService {
	return &ProgressService{
		assignmentRepo:   assignmentRepo,
		relationshipRepo: relationshipRepo,
	}
}

// Assign creates a fresh assignment of a lesson to a learner at step zero.
// Duplicate assignments are permitted and become independent progress tracks.
func (s *ProgressService) Assign(lessonID, learnerID int64) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.Create(lessonID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign lesson: %w", err)
	}
	return assignment, nil
}

// AssignToAll assigns one lesson to each of the given learners. Each insert
// is its own commit; a failure partway leaves earlier assignments in place.
func (s *ProgressService) AssignToAll(lessonID int64, learnerIDs []int64) error {
	for _, learnerID := range learnerIDs {
		if _, err := s.assignmentRepo.Create(lessonID, learnerID); err != nil {
			return fmt.Errorf("failed to assign lesson to learner %d: %w", learnerID, err)
		}
	}
	return nil
}

// Advance moves an assignment one step forward or backward. Requests past
// either end are silently ignored. Status is never touched here.
func (s *ProgressService) Advance(assignmentID int64, direction models.Direction) error {
	item, err := s.assignmentRepo.GetWithLesson(assignmentID)
	if err != nil {
		return fmt.Errorf("failed to load assignment: %w", err)
	}
	if item == nil {
		return nil
	}

	total := item.TotalSteps()
	current := models.ClampStep(item.Assignment.ProgressStep, total)
	next := models.NextStep(current, direction, total)
	if next == item.Assignment.ProgressStep {
		return nil
	}

	if err := s.assignmentRepo.UpdateProgress(assignmentID, next); err != nil {
		return fmt.Errorf("failed to advance assignment: %w", err)
	}
	return nil
}

// Complete marks an assignment finished: status flips to completed, the
// progress step snaps to the last step regardless of position, and the
// completion time is stamped in UTC. Completing an already-completed
// assignment is a no-op; the transition never reverses.
func (s *ProgressService) Complete(assignmentID int64) error {
	item, err := s.assignmentRepo.GetWithLesson(assignmentID)
	if err != nil {
		return fmt.Errorf("failed to load assignment: %w", err)
	}
	if item == nil || item.Assignment.IsCompleted() {
		return nil
	}

	finalStep := 0
	if total := item.TotalSteps(); total > 0 {
		finalStep = total - 1
	}

	if err := s.assignmentRepo.Complete(assignmentID, finalStep, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to complete assignment: %w", err)
	}
	return nil
}

// ListForLearner retrieves a learner's assignments newest first, each joined
// with its lesson and owner details. Stored steps are reinterpreted against
// the current step count by the view helpers on each item.
func (s *ProgressService) ListForLearner(learnerID int64) ([]models.AssignmentWithLesson, error) {
	items, err := s.assignmentRepo.ListForLearner(learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return items, nil
}

// ListForGrownup retrieves progress rows for every learner linked to the
// grown-up, newest first
func (s *ProgressService) ListForGrownup(grownup *models.Account) ([]models.ProgressRow, error) {
	kind := models.RelationKindForRole(grownup.Role)
	learners, err := s.relationshipRepo.LearnersFor(grownup.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get learners: %w", err)
	}

	ids := make([]int64, len(learners))
	for i, l := range learners {
		ids[i] = l.ID
	}

	rows, err := s.assignmentRepo.ListProgressForLearners(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return rows, nil
}

// GetForLearner loads one assignment with its lesson, returning nil unless
// it exists and belongs to the learner
func (s *ProgressService) GetForLearner(assignmentID, learnerID int64) (*models.AssignmentWithLesson, error) {
	item, err := s.assignmentRepo.GetWithLesson(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if item == nil || item.Assignment.LearnerID != learnerID {
		return nil, nil
	}
	return item, nil
}
