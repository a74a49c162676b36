package domain

import "fmt"

// Event lifecycle event applied to a booking
type Event string

const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
	EventNoShow   Event = "no_show"
)

// ParseEvent converts a wire value into an Event
func ParseEvent(s string) (Event, error) {
	switch e := Event(s); e {
	case EventAccept, EventReject, EventCancel, EventComplete, EventNoShow:
		return e, nil
	default:
		return "", NewValidationError("event", fmt.Sprintf("unknown event %q", s))
	}
}

// Role of the caller as reported by the identity service
type Role string

const (
	RoleClient   Role = "client"
	RoleAttorney Role = "attorney"
	RoleSystem   Role = "system"
)

// ParseRole converts an identity-service role into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleAttorney:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrForbidden, s)
	}
}

// Actor caller on whose behalf an operation runs
type Actor struct {
	UserID string
	Role   Role
}

// SystemActor actor used by background workers
var SystemActor = Actor{UserID: "system", Role: RoleSystem}

func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}
