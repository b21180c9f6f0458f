package service

import (
	"fmt"
	"strings"

	"calmhub/internal/models"
	"calmhub/internal/repository"
)

// RosterService manages the relationship graph between grown-ups and
// learners. One service covers both teachers and parents; the grown-up's
// role picks the edge kind.
type RosterService struct {
	relationshipRepo *repository.RelationshipRepository
}

// NewRosterService creates a new roster service
func NewRosterService(relationshipRepo *repository.RelationshipRepository) *RosterService {
	return &RosterService{relationshipRepo: relationshipRepo}
}

// SearchLearners finds learner accounts by name or email fragment. A blank
// query yields no results rather than the whole roster.
func (s *RosterService) SearchLearners(query string) ([]models.Account, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	learners, err := s.relationshipRepo.SearchLearners(query)
	if err != nil {
		return nil, fmt.Errorf("failed to search learners: %w", err)
	}
	return learners, nil
}

// Link appends a relationship edge from a grown-up to a learner. Linking the
// same learner twice is allowed; roster reads deduplicate.
func (s *RosterService) Link(grownup *models.Account, learnerID int64) error {
	kind := models.RelationKindForRole(grownup.Role)
	if err := s.relationshipRepo.Link(grownup.ID, learnerID, kind); err != nil {
		return fmt.Errorf("failed to link learner: %w", err)
	}
	return nil
}

// Learners retrieves the grown-up's linked learners, ordered by name
func (s *RosterService) Learners(grownup *models.Account) ([]models.Account, error) {
	kind := models.RelationKindForRole(grownup.Role)
	learners, err := s.relationshipRepo.LearnersFor(grownup.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get learners: %w", err)
	}
	return learners, nil
}

// GrownupsForLearner retrieves the distinct grown-ups linked to a learner,
// labeled with their account role
func (s *RosterService) GrownupsForLearner(learnerID int64) ([]models.Account, error) {
	grownups, err := s.relationshipRepo.GrownupsForLearner(learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grown-ups: %w", err)
	}
	return grownups, nil
}
