package repository

import (
	"database/sql"
	"fmt"
	"time"

	"calmhub/internal/database"
	"calmhub/internal/models"
)

// LessonRepository handles database operations for lessons
type LessonRepository struct {
	db *database.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *database.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create persists a new lesson. Lessons are immutable after this point.
func (r *LessonRepository) Create(ownerID int64, ownerRole models.Role, title, originalText, simplifiedText, imageB64 string) (*models.Lesson, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO lessons (owner_id, owner_role, title, original_text, simplified_text, image_b64, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, ownerID, string(ownerRole), title, originalText, simplifiedText, imageB64, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	return &models.Lesson{
		ID:             id,
		OwnerID:        ownerID,
		OwnerRole:      ownerRole,
		Title:          title,
		OriginalText:   originalText,
		SimplifiedText: simplifiedText,
		ImageB64:       imageB64,
		CreatedAt:      now,
	}, nil
}

// GetByID retrieves a lesson by ID, or nil when none exists
func (r *LessonRepository) GetByID(id int64) (*models.Lesson, error) {
	query := `
		SELECT id, owner_id, owner_role, title, original_text, simplified_text, image_b64, created_at
		FROM lessons WHERE id = ?
	`
	lesson := &models.Lesson{}
	var ownerRole string
	err := r.db.QueryRow(query, id).Scan(
		&lesson.ID,
		&lesson.OwnerID,
		&ownerRole,
		&lesson.Title,
		&lesson.OriginalText,
		&lesson.SimplifiedText,
		&lesson.ImageB64,
		&lesson.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	lesson.OwnerRole = models.Role(ownerRole)
	return lesson, nil
}
