package events

import "time"

// Event types
const (
	AccountCreated   = "account.created"
	AccountActivated = "account.activated"
	AccountDeleted   = "account.deleted"

	CleanupRequested = "account.cleanup.requested"
)

// Stream names
const (
	AccountEventsStream = "account.events"
	CleanupStream       = "account.cleanup"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountCreatedEvent struct {
	AuthenticationID string `json:"authenticationId"`
	Email            string `json:"email"`
}

type AccountActivatedEvent struct {
	AuthenticationID string `json:"authenticationId"`
}

type AccountDeletedEvent struct {
	AuthenticationID string `json:"authenticationId"`
	Email            string `json:"email"`
}

// CleanupRequestedEvent asks the service to remove an abandoned signup.
// Consumed from the cleanup stream; the command service still enforces the
// inactive-and-expired guard before deleting anything.
type CleanupRequestedEvent struct {
	Email string `json:"email"`
}
