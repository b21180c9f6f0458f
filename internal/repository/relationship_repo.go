package repository

import (
	"database/sql"
	"fmt"

	"calmhub/internal/database"
	"calmhub/internal/models"
)

// RelationshipRepository handles the grown-up to learner relationship graph.
// Edges live in two tables, one per kind; inserts are append-only and never
// deduplicated, so reads that show one row per party use DISTINCT.
type RelationshipRepository struct {
	db *database.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *database.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

func edgeTable(kind models.RelationKind) (table, grownupCol string) {
	if kind == models.RelationParent {
		return "parent_children", "parent_id"
	}
	return "teacher_learners", "teacher_id"
}

// Link appends a relationship edge. Duplicate edges are allowed.
func (r *RelationshipRepository) Link(grownupID, learnerID int64, kind models.RelationKind) error {
	table, col := edgeTable(kind)
	query := fmt.Sprintf("INSERT INTO %s (%s, learner_id) VALUES (?, ?)", table, col)
	if _, err := r.db.Exec(query, grownupID, learnerID); err != nil {
		return fmt.Errorf("failed to link learner: %w", err)
	}
	return nil
}

// LearnersFor retrieves the learners linked to a grown-up, ordered by name
func (r *RelationshipRepository) LearnersFor(grownupID int64, kind models.RelationKind) ([]models.Account, error) {
	table, col := edgeTable(kind)
	query := fmt.Sprintf(`
		SELECT DISTINCT a.id, a.name, a.email, a.role
		FROM accounts a
		JOIN %s e ON a.id = e.learner_id
		WHERE e.%s = ?
		ORDER BY a.name
	`, table, col)

	rows, err := r.db.Query(query, grownupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GrownupsForLearner retrieves the distinct grown-ups linked to a learner via
// either edge kind. The display label comes from the account's own role.
func (r *RelationshipRepository) GrownupsForLearner(learnerID int64) ([]models.Account, error) {
	query := `
		SELECT DISTINCT a.id, a.name, a.email, a.role
		FROM accounts a
		LEFT JOIN teacher_learners tl ON (a.id = tl.teacher_id AND tl.learner_id = ?)
		LEFT JOIN parent_children pc ON (a.id = pc.parent_id AND pc.learner_id = ?)
		WHERE tl.learner_id IS NOT NULL OR pc.learner_id IS NOT NULL
		ORDER BY a.name
	`
	rows, err := r.db.Query(query, learnerID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grown-ups: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// SearchLearners finds learner accounts matching a name or email fragment
func (r *RelationshipRepository) SearchLearners(query string) ([]models.Account, error) {
	like := "%" + query + "%"
	sqlQuery := `
		SELECT id, name, email, role
		FROM accounts
		WHERE role = 'learner' AND (name LIKE ? OR email LIKE ?)
		ORDER BY name
	`
	rows, err := r.db.Query(sqlQuery, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search learners: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// collectAccounts scans (id, name, email, role) rows into account summaries
func collectAccounts(rows *sql.Rows) ([]models.Account, error) {
	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		var role string
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &role); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Role = models.Role(role)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
