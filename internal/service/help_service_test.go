package service

import (
	"context"
	"testing"

	"calmhub/internal/models"
	"calmhub/internal/validation"
)

func TestSubmitHelpRequest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	teacher := env.registerAccount(t, "Ms Finch", "finch@example.com", models.RoleTeacher)
	learner := env.registerAccount(t, "Sam", "sam@example.com", models.RoleLearner)

	request, err := env.help.Submit(context.Background(), learner, teacher.ID, "  I am stuck on step 2.  ")
	if err != nil {
		t.Fatalf("failed to submit help request: %v", err)
	}
	if request.Message != "I am stuck on step 2." {
		t.Errorf("expected trimmed message, got %q", request.Message)
	}
	if request.Resolved {
		t.Error("expected new request to be unresolved")
	}

	requests, err := env.help.ListForGrownup(teacher.ID)
	if err != nil {
		t.Fatalf("failed to list help requests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 help request, got %d", len(requests))
	}
	if requests[0].LearnerName != "Sam" {
		t.Errorf("expected sender name Sam, got %q", requests[0].LearnerName)
	}
}

func TestSubmitHelpRequestEmptyMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	teacher := env.registerAccount(t, "Ms Finch", "finch@example.com", models.RoleTeacher)
	learner := env.registerAccount(t, "Sam", "sam@example.com", models.RoleLearner)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := env.help.Submit(context.Background(), learner, teacher.ID, message)
		if err == nil {
			t.Errorf("expected error for message %q", message)
			continue
		}
		if _, ok := err.(validation.ValidationError); !ok {
			t.Errorf("expected ValidationError for message %q, got %T", message, err)
		}
	}

	requests, err := env.help.ListForGrownup(teacher.ID)
	if err != nil {
		t.Fatalf("failed to list help requests: %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("expected no stored requests, got %d", len(requests))
	}
}

func TestResolveHelpRequestIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	teacher := env.registerAccount(t, "Ms Finch", "finch@example.com", models.RoleTeacher)
	learner := env.registerAccount(t, "Sam", "sam@example.com", models.RoleLearner)

	request, err := env.help.Submit(context.Background(), learner, teacher.ID, "Help please")
	if err != nil {
		t.Fatalf("failed to submit help request: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := env.help.Resolve(request.ID); err != nil {
			t.Fatalf("resolve %d failed: %v", i, err)
		}
	}

	requests, err := env.help.ListForGrownup(teacher.ID)
	if err != nil {
		t.Fatalf("failed to list help requests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 help request, got %d", len(requests))
	}
	if !requests[0].Resolved {
		t.Error("expected request to be resolved")
	}
}
