package events

import (
	"time"

	"github.com/spec-kit/user-management/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated EventType = "user_created"
	EventUserUpdated EventType = "user_updated"
	EventUserDeleted EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Status   domain.UserStatus `json:"status"`
	Role     domain.UserRole   `json:"role"`
}

// UserUpdatedPayload payload.
type UserUpdatedPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PasswordChanged bool   `json:"password_changed"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Username string `json:"username"`
}
