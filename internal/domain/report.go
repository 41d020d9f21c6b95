package domain

import (
	"context"
	"time"
)

// CheckInStatistics is a point-in-time snapshot of check-in progress for one
// event, computed over its CONFIRMED registrations. Rates are integer
// percentages, 0 when the event has no registrations.
// swagger:model CheckInStatistics
type CheckInStatistics struct {
	TotalRegistrations  int `json:"total_registrations"`
	TotalTickets        int `json:"total_tickets"`
	CheckedInCount      int `json:"checked_in_count"`
	CheckedInTickets    int `json:"checked_in_tickets"`
	NotCheckedInCount   int `json:"not_checked_in_count"`
	NotCheckedInTickets int `json:"not_checked_in_tickets"`
	CheckInRate         int `json:"check_in_rate"`
	TicketCheckInRate   int `json:"ticket_check_in_rate"`
}

// RecentCheckIn is one entry in the live activity feed of latest check-ins.
type RecentCheckIn struct {
	RegistrationID string    `json:"registration_id"`
	AttendeeName   string    `json:"attendee_name"`
	AttendeeEmail  string    `json:"attendee_email"`
	TicketNumber   string    `json:"ticket_number,omitempty"`
	Quantity       int       `json:"quantity"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}

// TimelineBucket is one hour-of-day bucket in the check-in timeline.
// Hour is 0..23; buckets with no check-ins report Count 0.
type TimelineBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// RegistrationWithAttendee pairs a registration with the registrant's identity.
type RegistrationWithAttendee struct {
	Registration *Registration `json:"registration"`
	Attendee     *User         `json:"attendee"`
}

// CheckInData is the full dashboard payload for one event.
type CheckInData struct {
	Event          *Event                      `json:"event"`
	Statistics     CheckInStatistics           `json:"statistics"`
	Timeline       []TimelineBucket            `json:"timeline"`
	RecentCheckIns []RecentCheckIn             `json:"recent_check_ins"`
	Registrations  []*RegistrationWithAttendee `json:"registrations"`
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ExportRow is one flattened registration line in an export. CSV and JSON
// exports carry exactly these fields.
type ExportRow struct {
	RegistrationID string `json:"registration_id"`
	AttendeeName   string `json:"attendee_name"`
	AttendeeEmail  string `json:"attendee_email"`
	TicketNumber   string `json:"ticket_number"`
	Status         string `json:"status"`
	CheckedIn      bool   `json:"checked_in"`
	CheckedInAt    string `json:"checked_in_at"`
	Quantity       int    `json:"quantity"`
}

// ReportService produces check-in dashboards and exports for an event.
// All operations require the actor to be the event's organizer or an admin.
type ReportService interface {
	GetCheckInData(ctx context.Context, eventID, actorID string) (*CheckInData, error)
	// Export returns the encoded body and its content type.
	Export(ctx context.Context, eventID, actorID string, format ExportFormat) ([]byte, string, error)
	// ListActivity returns the event's activity log page plus the total count.
	ListActivity(ctx context.Context, eventID, actorID string, p PaginationParams) ([]*Activity, int, error)
}
