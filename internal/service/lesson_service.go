package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"calmhub/internal/models"
	"calmhub/internal/repository"
	"calmhub/internal/simplifier"
)

var ErrIncompleteLesson = errors.New("please provide title, text, and generated lesson")

// LessonService owns the two-phase lesson workflow: building an unpersisted
// draft (optionally AI-simplified and illustrated), then saving it. Save is
// the only writer to the lesson store.
type LessonService struct {
	lessonRepo *repository.LessonRepository
	client     *simplifier.Client
}

// NewLessonService creates a new lesson service
func NewLessonService(lessonRepo *repository.LessonRepository, client *simplifier.Client) *LessonService {
	return &LessonService{
		lessonRepo: lessonRepo,
		client:     client,
	}
}

// BuildDraft produces an unpersisted draft from the raw text. With useAI the
// simplified text and illustration come from the remote service, degrading
// to the local sentence splitter and no illustration when a call fails.
func (s *LessonService) BuildDraft(ctx context.Context, title, mode, originalText string, useAI bool) models.LessonDraft {
	draft := models.LessonDraft{
		Title:        title,
		Mode:         mode,
		OriginalText: originalText,
	}

	if !useAI || !s.client.Enabled() {
		draft.SimplifiedText = simplifier.LocalSimplify(originalText)
		return draft
	}

	simplified, err := s.client.Simplify(ctx, originalText, mode)
	if err != nil {
		log.Printf("AI text generation error: %v", err)
		simplified = simplifier.LocalSimplify(originalText)
	}
	draft.SimplifiedText = simplified

	imageTitle := title
	if strings.TrimSpace(imageTitle) == "" {
		imageTitle = "Lesson"
	}
	imageB64, err := s.client.Illustrate(ctx, imageTitle)
	if err != nil {
		log.Printf("AI image generation error: %v", err)
		imageB64 = ""
	}
	draft.ImageB64 = imageB64

	return draft
}

// Save persists a draft as an immutable lesson owned by the grown-up
func (s *LessonService) Save(owner *models.Account, draft models.LessonDraft) (*models.Lesson, error) {
	if strings.TrimSpace(draft.Title) == "" ||
		strings.TrimSpace(draft.OriginalText) == "" ||
		strings.TrimSpace(draft.SimplifiedText) == "" {
		return nil, ErrIncompleteLesson
	}

	lesson, err := s.lessonRepo.Create(owner.ID, owner.Role, draft.Title, draft.OriginalText, draft.SimplifiedText, draft.ImageB64)
	if err != nil {
		return nil, fmt.Errorf("failed to save lesson: %w", err)
	}
	return lesson, nil
}
