package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"calmhub/internal/database"
	"calmhub/internal/models"
)

// AssignmentRepository handles database operations for lesson assignments
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a fresh assignment at step zero. Duplicate (lesson, learner)
// pairs are allowed and track progress independently.
func (r *AssignmentRepository) Create(lessonID, learnerID int64) (*models.Assignment, error) {
	query := `
		INSERT INTO lesson_assignments (lesson_id, learner_id, status, progress_step, completed_at)
		VALUES (?, ?, ?, 0, NULL)
	`
	id, err := r.db.ExecReturningID(query, lessonID, learnerID, string(models.StatusAssigned))
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return &models.Assignment{
		ID:           id,
		LessonID:     lessonID,
		LearnerID:    learnerID,
		Status:       models.StatusAssigned,
		ProgressStep: 0,
	}, nil
}

// GetWithLesson retrieves an assignment joined with its lesson and owner, or
// nil when none exists
func (r *AssignmentRepository) GetWithLesson(assignmentID int64) (*models.AssignmentWithLesson, error) {
	query := `
		SELECT la.id, la.lesson_id, la.learner_id, la.status, la.progress_step, la.completed_at,
		       l.title, l.simplified_text, l.image_b64, a.name, l.owner_role
		FROM lesson_assignments la
		JOIN lessons l ON la.lesson_id = l.id
		JOIN accounts a ON l.owner_id = a.id
		WHERE la.id = ?
	`
	item, err := scanAssignmentWithLesson(r.db.QueryRow(query, assignmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return item, nil
}

// UpdateProgress persists a new progress step without touching status
func (r *AssignmentRepository) UpdateProgress(assignmentID int64, step int) error {
	query := "UPDATE lesson_assignments SET progress_step = ? WHERE id = ?"
	if _, err := r.db.Exec(query, step, assignmentID); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// Complete marks an assignment completed, snapping the step and stamping the
// completion time
func (r *AssignmentRepository) Complete(assignmentID int64, finalStep int, completedAt time.Time) error {
	query := `
		UPDATE lesson_assignments
		SET status = ?, progress_step = ?, completed_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, string(models.StatusCompleted), finalStep, completedAt, assignmentID); err != nil {
		return fmt.Errorf("failed to complete assignment: %w", err)
	}
	return nil
}

// ListForLearner retrieves a learner's assignments with lesson and owner
// details, newest first
func (r *AssignmentRepository) ListForLearner(learnerID int64) ([]models.AssignmentWithLesson, error) {
	query := `
		SELECT la.id, la.lesson_id, la.learner_id, la.status, la.progress_step, la.completed_at,
		       l.title, l.simplified_text, l.image_b64, a.name, l.owner_role
		FROM lesson_assignments la
		JOIN lessons l ON la.lesson_id = l.id
		JOIN accounts a ON l.owner_id = a.id
		WHERE la.learner_id = ?
		ORDER BY la.id DESC
	`
	rows, err := r.db.Query(query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var items []models.AssignmentWithLesson
	for rows.Next() {
		item, err := scanAssignmentWithLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListProgressForLearners retrieves progress rows for a set of learners,
// newest first. An empty learner set yields no rows.
func (r *AssignmentRepository) ListProgressForLearners(learnerIDs []int64) ([]models.ProgressRow, error) {
	if len(learnerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(learnerIDs)), ",")
	query := fmt.Sprintf(`
		SELECT la.id, a.name, l.title, la.status, la.progress_step, la.completed_at
		FROM lesson_assignments la
		JOIN lessons l ON la.lesson_id = l.id
		JOIN accounts a ON la.learner_id = a.id
		WHERE la.learner_id IN (%s)
		ORDER BY la.id DESC
	`, placeholders)

	args := make([]interface{}, len(learnerIDs))
	for i, id := range learnerIDs {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var items []models.ProgressRow
	for rows.Next() {
		var row models.ProgressRow
		var status string
		var completedAt sql.NullTime
		if err := rows.Scan(&row.AssignmentID, &row.LearnerName, &row.LessonTitle, &status, &row.ProgressStep, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		row.Status = models.AssignmentStatus(status)
		if completedAt.Valid {
			row.CompletedAt = &completedAt.Time
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignmentWithLesson(row rowScanner) (*models.AssignmentWithLesson, error) {
	item := &models.AssignmentWithLesson{}
	var status, ownerRole string
	var completedAt sql.NullTime
	var imageB64 sql.NullString

	err := row.Scan(
		&item.Assignment.ID,
		&item.Assignment.LessonID,
		&item.Assignment.LearnerID,
		&status,
		&item.Assignment.ProgressStep,
		&completedAt,
		&item.Title,
		&item.SimplifiedText,
		&imageB64,
		&item.OwnerName,
		&ownerRole,
	)
	if err != nil {
		return nil, err
	}

	item.Assignment.Status = models.AssignmentStatus(status)
	if completedAt.Valid {
		item.Assignment.CompletedAt = &completedAt.Time
	}
	item.ImageB64 = imageB64.String
	item.OwnerRole = models.Role(ownerRole)
	return item, nil
}
