// Package events defines the user mutation event envelope and an optional
// Redis Streams mirror for external consumers.
package events

import (
	"time"

	"github.com/livedesk/user-service/internal/models"
)

// Event types
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEventsStream is the Redis stream the mirror publishes to.
const UserEventsStream = "user.events"

// UserEvent is a transient notification produced exactly once per successful
// mutation. User carries the full post-mutation snapshot (for deletes, the
// snapshot as it existed immediately before removal).
type UserEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	User      models.User `json:"user"`
}

func NewUserEvent(eventType string, user models.User) UserEvent {
	return UserEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		User:      user,
	}
}
