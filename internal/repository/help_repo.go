package repository

import (
	"fmt"
	"time"

	"calmhub/internal/database"
	"calmhub/internal/models"
)

// HelpRequestRepository handles database operations for help requests
type HelpRequestRepository struct {
	db *database.DB
}

// NewHelpRequestRepository creates a new help request repository
func NewHelpRequestRepository(db *database.DB) *HelpRequestRepository {
	return &HelpRequestRepository{db: db}
}

// Create inserts a new unresolved help request
func (r *HelpRequestRepository) Create(learnerID, toUserID int64, message string) (*models.HelpRequest, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO help_requests (learner_id, to_user_id, message, created_at, resolved)
		VALUES (?, ?, ?, ?, 0)
	`
	id, err := r.db.ExecReturningID(query, learnerID, toUserID, message, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create help request: %w", err)
	}

	return &models.HelpRequest{
		ID:        id,
		LearnerID: learnerID,
		ToUserID:  toUserID,
		Message:   message,
		CreatedAt: now,
		Resolved:  false,
	}, nil
}

// Resolve flips a request to resolved. Resolving an already-resolved request
// is a no-op.
func (r *HelpRequestRepository) Resolve(requestID int64) error {
	query := "UPDATE help_requests SET resolved = 1 WHERE id = ?"
	if _, err := r.db.Exec(query, requestID); err != nil {
		return fmt.Errorf("failed to resolve help request: %w", err)
	}
	return nil
}

// ListForGrownup retrieves all requests addressed to a grown-up, newest
// first, each with the requester's name
func (r *HelpRequestRepository) ListForGrownup(grownupID int64) ([]models.HelpRequestWithSender, error) {
	query := `
		SELECT hr.id, hr.learner_id, hr.to_user_id, hr.message, hr.created_at, hr.resolved, a.name
		FROM help_requests hr
		JOIN accounts a ON hr.learner_id = a.id
		WHERE hr.to_user_id = ?
		ORDER BY hr.created_at DESC
	`
	rows, err := r.db.Query(query, grownupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query help requests: %w", err)
	}
	defer rows.Close()

	var requests []models.HelpRequestWithSender
	for rows.Next() {
		var req models.HelpRequestWithSender
		if err := rows.Scan(
			&req.ID,
			&req.LearnerID,
			&req.ToUserID,
			&req.Message,
			&req.CreatedAt,
			&req.Resolved,
			&req.LearnerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan help request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
