package models

import (
	"strings"
	"time"
)

// Lesson represents an authored lesson. Lessons are immutable after creation.
type Lesson struct {
	ID             int64
	OwnerID        int64
	OwnerRole      Role
	Title          string
	OriginalText   string
	SimplifiedText string
	ImageB64       string
	CreatedAt      time.Time
}

// LessonDraft is an unpersisted lesson held by the composer form between
// generation and save. Saving is the only write to the lesson store.
type LessonDraft struct {
	Title          string
	Mode           string
	OriginalText   string
	SimplifiedText string
	ImageB64       string
}

// Steps splits simplified lesson text into its step sequence: one step per
// non-empty line. The step count is never stored; it is recomputed from the
// text wherever progress is interpreted.
func Steps(simplified string) []string {
	var steps []string
	for _, line := range strings.Split(simplified, "\n") {
		if strings.TrimSpace(line) != "" {
			steps = append(steps, strings.TrimSpace(line))
		}
	}
	return steps
}

// CountSteps returns the number of steps in simplified lesson text
func CountSteps(simplified string) int {
	return len(Steps(simplified))
}
