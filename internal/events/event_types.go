package events

import (
	"time"

	"github.com/spec-kit/fluxboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFluxStateChanged EventType = "flux_state_changed"
	EventFluxAssigned     EventType = "flux_assigned"
)

// Actor identifies who triggered the change.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a flux change confirmed by the store.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	FluxID    string      `json:"flux_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// FluxStateChangedPayload payload.
type FluxStateChangedPayload struct {
	NewState string `json:"new_state"`
}

// FluxAssignedPayload payload.
type FluxAssignedPayload struct {
	AssigneeID    string `json:"assignee_id"`
	AssigneeEmail string `json:"assignee_email"`
}
