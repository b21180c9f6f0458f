package models

import "time"

// AssignmentStatus is the lifecycle state of an assignment
type AssignmentStatus string

const (
	StatusAssigned  AssignmentStatus = "assigned"
	StatusCompleted AssignmentStatus = "completed"
)

// Direction is a step navigation request from the learner
type Direction string

const (
	StepForward  Direction = "forward"
	StepBackward Direction = "backward"
)

// Assignment binds a lesson to a learner with independent progress state.
// The same lesson may be assigned to a learner more than once; each row is
// its own progress track.
type Assignment struct {
	ID           int64
	LessonID     int64
	LearnerID    int64
	Status       AssignmentStatus
	ProgressStep int
	CompletedAt  *time.Time
}

// AssignmentWithLesson joins an assignment with its lesson and owner details
// for the learner's view
type AssignmentWithLesson struct {
	Assignment     Assignment
	Title          string
	SimplifiedText string
	ImageB64       string
	OwnerName      string
	OwnerRole      Role
}

// ProgressRow is one line of the grown-up's progress view
type ProgressRow struct {
	AssignmentID int64
	LearnerName  string
	LessonTitle  string
	Status       AssignmentStatus
	ProgressStep int
	CompletedAt  *time.Time
}

// ClampStep reinterprets a stored progress step against the current step
// count, forcing it into [0, totalSteps-1]. Stored steps may legally be out
// of range relative to the text they are read against; reads defend rather
// than error.
func ClampStep(step, totalSteps int) int {
	if step < 0 {
		return 0
	}
	if step >= totalSteps {
		if totalSteps == 0 {
			return 0
		}
		return totalSteps - 1
	}
	return step
}

// NextStep applies a navigation request to a clamped current step. Requests
// past either end are silent no-ops: the current step is returned unchanged.
func NextStep(current int, direction Direction, totalSteps int) int {
	switch direction {
	case StepForward:
		if current < totalSteps-1 {
			return current + 1
		}
	case StepBackward:
		if current > 0 {
			return current - 1
		}
	}
	return current
}

// TotalSteps recomputes the step count for the joined lesson text
func (a *AssignmentWithLesson) TotalSteps() int {
	return CountSteps(a.SimplifiedText)
}

// CurrentStep returns the clamped step index for display
func (a *AssignmentWithLesson) CurrentStep() int {
	return ClampStep(a.Assignment.ProgressStep, a.TotalSteps())
}

// CurrentStepText returns the text of the step the learner is on
func (a *AssignmentWithLesson) CurrentStepText() string {
	steps := Steps(a.SimplifiedText)
	if len(steps) == 0 {
		return ""
	}
	return steps[ClampStep(a.Assignment.ProgressStep, len(steps))]
}

// IsCompleted reports whether the assignment has been completed
func (a *Assignment) IsCompleted() bool {
	return a.Status == StatusCompleted
}
