package identity

import (
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserCreatedEvent is raised when a new user is registered
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return "UserCreated"
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("UserCreated", "User", u.ID, u.AccountID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}
