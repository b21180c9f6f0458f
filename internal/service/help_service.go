package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"calmhub/internal/models"
	"calmhub/internal/repository"
	"calmhub/internal/validation"
)

// HelpService is the mailbox between learners and their linked grown-ups
type HelpService struct {
	helpRepo     *repository.HelpRequestRepository
	accountRepo  *repository.AccountRepository
	emailService *EmailService
}

// NewHelpService creates a new help service
func NewHelpService(helpRepo *repository.HelpRequestRepository, accountRepo *repository.AccountRepository, emailService *EmailService) *HelpService {
	return &HelpService{
		helpRepo:     helpRepo,
		accountRepo:  accountRepo,
		emailService: emailService,
	}
}

// Submit records a help request from a learner to a grown-up. Empty or
// whitespace-only messages are rejected with a validation error and nothing
// is stored. A notification email to the grown-up is best-effort.
func (s *HelpService) Submit(ctx context.Context, learner *models.Account, toUserID int64, message string) (*models.HelpRequest, error) {
	if err := validation.ValidateMessage(message); err != nil {
		return nil, err
	}

	request, err := s.helpRepo.Create(learner.ID, toUserID, strings.TrimSpace(message))
	if err != nil {
		return nil, fmt.Errorf("failed to submit help request: %w", err)
	}

	s.notify(ctx, learner, toUserID, request.Message)

	return request, nil
}

// Resolve flips a request to resolved. Repeat calls are harmless.
func (s *HelpService) Resolve(requestID int64) error {
	if err := s.helpRepo.Resolve(requestID); err != nil {
		return fmt.Errorf("failed to resolve help request: %w", err)
	}
	return nil
}

// ListForGrownup retrieves a grown-up's help requests, newest first
func (s *HelpService) ListForGrownup(grownupID int64) ([]models.HelpRequestWithSender, error) {
	requests, err := s.helpRepo.ListForGrownup(grownupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	return requests, nil
}

// notify sends a best-effort email to the addressed grown-up. Failures are
// logged and never surfaced to the learner.
func (s *HelpService) notify(ctx context.Context, learner *models.Account, toUserID int64, message string) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}

	grownup, err := s.accountRepo.GetByID(toUserID)
	if err != nil || grownup == nil {
		log.Printf("Skipping help request notification: recipient %d not found", toUserID)
		return
	}

	if err := s.emailService.SendHelpRequestEmail(ctx, grownup.Email, grownup.Name, learner.Name, message); err != nil {
		log.Printf("Failed to send help request notification: %v", err)
	}
}
