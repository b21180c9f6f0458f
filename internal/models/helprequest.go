package models

import "time"

// HelpRequest is a message from a learner to a linked grown-up
type HelpRequest struct {
	ID        int64
	LearnerID int64
	ToUserID  int64
	Message   string
	CreatedAt time.Time
	Resolved  bool
}

// HelpRequestWithSender joins a help request with the requester's name for
// the grown-up's inbox view
type HelpRequestWithSender struct {
	HelpRequest
	LearnerName string
}
