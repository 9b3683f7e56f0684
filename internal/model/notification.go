package model

// Recipient is a follower to notify. It is resolved fresh for every dispatch.
type Recipient struct {
	UserID      string
	DisplayName string
	PushToken   string
}

// PushMessage is the payload handed to a Notifier.
type PushMessage struct {
	Token  string `json:"to"`
	Sender string `json:"title"`
	Body   string `json:"body"`
}

// Outcome of a single notification attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailure Outcome = "failure"
)

// NotificationAttempt records what happened for one recipient. It is never persisted.
type NotificationAttempt struct {
	Recipient Recipient
	Message   string
	Outcome   Outcome
	Reason    string
}
