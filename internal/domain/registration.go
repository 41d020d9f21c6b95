package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

// Actions recorded in a registration's check-in history.
const (
	ActionCheckIn     = "CHECK_IN"
	ActionCheckInUndo = "CHECK_IN_UNDO"
)

// CheckInRecord is one entry in a registration's check-in history.
// Entries are immutable once written.
// swagger:model CheckInRecord
type CheckInRecord struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// RegistrationMetadata is the structured bag persisted with a registration.
// CheckInHistory is append-only: prior entries are never mutated or removed.
// swagger:model RegistrationMetadata
type RegistrationMetadata struct {
	CheckInNotes   string          `json:"check_in_notes,omitempty"`
	UndoReason     string          `json:"undo_reason,omitempty"`
	CheckInHistory []CheckInRecord `json:"check_in_history,omitempty"`
}

// AppendHistory returns metadata with rec appended to the history. A zero-value
// metadata (registration never touched before) is valid input. For a CHECK_IN
// record with notes it updates CheckInNotes, leaving the prior value when notes
// are empty; for a CHECK_IN_UNDO record it sets UndoReason from the record.
func AppendHistory(m RegistrationMetadata, rec CheckInRecord) RegistrationMetadata {
	history := make([]CheckInRecord, 0, len(m.CheckInHistory)+1)
	history = append(history, m.CheckInHistory...)
	history = append(history, rec)
	m.CheckInHistory = history

	switch rec.Action {
	case ActionCheckIn:
		if rec.Notes != "" {
			m.CheckInNotes = rec.Notes
		}
	case ActionCheckInUndo:
		m.UndoReason = rec.Reason
	}
	return m
}

// Registration represents a person's claim on event capacity.
// CheckedIn is true iff CheckedInAt and CheckedInBy are both set.
// swagger:model Registration
type Registration struct {
	ID           string               `json:"id"`
	EventID      string               `json:"event_id"`
	UserID       string               `json:"user_id"`
	Status       RegistrationStatus   `json:"status"`
	Quantity     int                  `json:"quantity"`
	TicketNumber string               `json:"ticket_number,omitempty"`
	CheckedIn    bool                 `json:"checked_in"`
	CheckedInAt  *time.Time           `json:"checked_in_at,omitempty"`
	CheckedInBy  *string              `json:"checked_in_by,omitempty"`
	Metadata     RegistrationMetadata `json:"metadata"`
	Purchases    []*TicketPurchase    `json:"purchases,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// TicketCount returns how many tickets the registration holds: the sum of its
// purchase line quantities, or its plain quantity (minimum 1) when it has no
// purchase rows. Statistics, exports, and per-record reporting must all go
// through this so the numbers cannot diverge.
func (r *Registration) TicketCount() int {
	if len(r.Purchases) > 0 {
		total := 0
		for _, p := range r.Purchases {
			total += p.Quantity
		}
		return total
	}
	if r.Quantity < 1 {
		return 1
	}
	return r.Quantity
}

// RegistrationRepository defines storage operations for registrations.
//
// SetCheckedIn and ClearCheckedIn are conditional writes keyed on the current
// checked_in value; they report whether a row was changed. A false return with
// no error means the registration was absent or already in the target state —
// the caller re-reads to tell the two apart. This is what keeps two concurrent
// check-in calls from both appending history.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	// Confirm transitions PENDING -> CONFIRMED and assigns the ticket number.
	Confirm(ctx context.Context, id, ticketNumber string, at time.Time) (bool, error)
	// Cancel transitions a non-cancelled registration to CANCELLED.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	SetCheckedIn(ctx context.Context, id string, at time.Time, by string, meta RegistrationMetadata) (bool, error)
	ClearCheckedIn(ctx context.Context, id string, at time.Time, meta RegistrationMetadata) (bool, error)
}

// CreateRegistrationParams are the inputs for creating a registration.
type CreateRegistrationParams struct {
	EventID  string
	UserID   string
	Quantity int
	// Confirm creates the registration directly in CONFIRMED state with a
	// ticket number assigned, skipping PENDING.
	Confirm bool
}

// RegistrationService owns the registration lifecycle outside of check-in:
// creation with capacity enforcement, confirmation, cancellation.
type RegistrationService interface {
	Create(ctx context.Context, params CreateRegistrationParams) (*Registration, error)
	Confirm(ctx context.Context, registrationID, actorID string) (*Registration, error)
	Cancel(ctx context.Context, registrationID, actorID, reason string) (*Registration, error)
	Get(ctx context.Context, registrationID, actorID string) (*Registration, error)
}

// CheckInResult is the outcome of a single check-in attempt. AlreadyCheckedIn
// marks the informational no-op path: the registration was checked in before
// this call and nothing was mutated; CheckedInAt carries the original time.
type CheckInResult struct {
	Registration     *Registration `json:"registration"`
	AlreadyCheckedIn bool          `json:"already_checked_in"`
	CheckedInAt      time.Time     `json:"checked_in_at"`
}

// Per-entry outcomes in a bulk check-in result.
const (
	BulkCheckedIn        = "checked_in"
	BulkAlreadyCheckedIn = "already_checked_in"
	BulkFailed           = "failed"
)

// BulkCheckInItem is the individually attributable outcome for one registration ID.
type BulkCheckInItem struct {
	RegistrationID string `json:"registration_id"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

// BulkCheckInSummary counts outcomes across a bulk check-in batch.
type BulkCheckInSummary struct {
	Successful       int `json:"successful"`
	AlreadyCheckedIn int `json:"already_checked_in"`
	Failed           int `json:"failed"`
}

// BulkCheckInResult is the full result of a bulk check-in batch.
type BulkCheckInResult struct {
	Summary BulkCheckInSummary `json:"summary"`
	Results []BulkCheckInItem  `json:"results"`
}

// CheckInService drives the check-in state machine for confirmed registrations.
// All operations require the actor to be the event's organizer or an admin.
type CheckInService interface {
	// CheckIn marks the registration as checked in. Idempotent at the
	// observation level: a second call returns AlreadyCheckedIn with the
	// original timestamp and mutates nothing.
	CheckIn(ctx context.Context, eventID, registrationID, actorID, notes string) (*CheckInResult, error)
	// UndoCheckIn reverts a checked-in registration. Not idempotent: undoing
	// a registration that is not checked in fails with ErrInvalidState.
	UndoCheckIn(ctx context.Context, eventID, registrationID, actorID, reason string) (*Registration, error)
	// BulkCheckIn applies CheckIn to each ID independently; one entry's
	// failure never aborts the rest of the batch.
	BulkCheckIn(ctx context.Context, eventID string, registrationIDs []string, actorID, notes string) (*BulkCheckInResult, error)
}
