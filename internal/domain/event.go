package domain

import (
	"context"
	"time"
)

// Event represents an occasion attendees register for. The check-in core
// reads events but never modifies them; capacity is fixed at creation.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Capacity    int       `json:"capacity"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title string, capacity int, startDate, endDate time.Time, organizerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Capacity:    capacity,
		StartDate:   startDate,
		EndDate:     endDate,
		OrganizerID: organizerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*Event, error)
}
