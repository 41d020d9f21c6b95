package domain

import (
	"context"
	"time"
)

// Activity types recorded in the system-wide activity log.
const (
	ActivityCheckIn               = "CHECK_IN"
	ActivityCheckInUndo           = "CHECK_IN_UNDO"
	ActivityRegistrationCreated   = "REGISTRATION_CREATED"
	ActivityRegistrationConfirmed = "REGISTRATION_CONFIRMED"
	ActivityRegistrationCancelled = "REGISTRATION_CANCELLED"
	ActivityTicketsPurchased      = "TICKETS_PURCHASED"
)

// Activity is one entry in the system-wide activity log, independent of the
// per-registration history. Used for cross-event audit and reporting.
// swagger:model Activity
type Activity struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	ActorID        string    `json:"actor_id"`
	EventID        string    `json:"event_id"`
	RegistrationID *string   `json:"registration_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ActivityRepository defines storage for the activity log. Record is invoked
// after the primary state mutation has committed; callers treat a Record
// failure as a warning, never as a failure of the mutation itself.
type ActivityRepository interface {
	Record(ctx context.Context, a *Activity) error
	ListByEventID(ctx context.Context, eventID string, p PaginationParams) ([]*Activity, int, error)
}
