package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"doorlist/internal/domain"
)

const (
	recentCheckInsLimit = 10
	timelineWindow      = 7 * 24 * time.Hour
)

type reportService struct {
	eventRepo    domain.EventRepository
	regRepo      domain.RegistrationRepository
	userRepo     domain.UserRepository
	roleRepo     domain.RoleRepository
	activityRepo domain.ActivityRepository
	clock        domain.Clock
}

// NewReportService creates a ReportService with the given repositories.
func NewReportService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	activityRepo domain.ActivityRepository,
	clock domain.Clock,
) domain.ReportService {
	return &reportService{
		eventRepo:    eventRepo,
		regRepo:      regRepo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		activityRepo: activityRepo,
		clock:        clock,
	}
}

func (s *reportService) GetCheckInData(ctx context.Context, eventID, actorID string) (*domain.CheckInData, error) {
	event, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}

	// One read of the registration set feeds statistics, timeline, recent
	// feed, and listing, so all views agree with each other.
	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	attendees, err := s.attendees(ctx, regs)
	if err != nil {
		return nil, err
	}

	listing := make([]*domain.RegistrationWithAttendee, 0, len(regs))
	for _, reg := range regs {
		listing = append(listing, &domain.RegistrationWithAttendee{
			Registration: reg,
			Attendee:     attendees[reg.UserID],
		})
	}

	return &domain.CheckInData{
		Event:          event,
		Statistics:     computeStatistics(regs),
		Timeline:       buildTimeline(regs, s.clock.Now()),
		RecentCheckIns: recentCheckIns(regs, attendees, recentCheckInsLimit),
		Registrations:  listing,
	}, nil
}

// computeStatistics aggregates check-in progress over the event's CONFIRMED
// registrations. Rates are integer percentages; an event with no confirmed
// registrations reports zero rates rather than dividing by zero.
func computeStatistics(regs []*domain.Registration) domain.CheckInStatistics {
	var stats domain.CheckInStatistics
	for _, reg := range regs {
		if reg.Status != domain.RegistrationConfirmed {
			continue
		}
		tickets := reg.TicketCount()
		stats.TotalRegistrations++
		stats.TotalTickets += tickets
		if reg.CheckedIn {
			stats.CheckedInCount++
			stats.CheckedInTickets += tickets
		}
	}
	stats.NotCheckedInCount = stats.TotalRegistrations - stats.CheckedInCount
	stats.NotCheckedInTickets = stats.TotalTickets - stats.CheckedInTickets
	if stats.TotalRegistrations > 0 {
		stats.CheckInRate = int(math.Round(float64(stats.CheckedInCount) / float64(stats.TotalRegistrations) * 100))
	}
	if stats.TotalTickets > 0 {
		stats.TicketCheckInRate = int(math.Round(float64(stats.CheckedInTickets) / float64(stats.TotalTickets) * 100))
	}
	return stats
}

// buildTimeline buckets check-ins from the trailing seven days by hour of day.
// All 24 buckets are present; hours without check-ins report zero. The hour is
// taken from the stored timestamp's zone so dashboard and storage agree.
func buildTimeline(regs []*domain.Registration, now time.Time) []domain.TimelineBucket {
	buckets := make([]domain.TimelineBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	windowStart := now.Add(-timelineWindow)
	for _, reg := range regs {
		if reg.Status != domain.RegistrationConfirmed || !reg.CheckedIn || reg.CheckedInAt == nil {
			continue
		}
		at := *reg.CheckedInAt
		if at.Before(windowStart) || at.After(now) {
			continue
		}
		buckets[at.Hour()].Count++
	}
	return buckets
}

// recentCheckIns returns the latest checked-in registrations, newest first.
func recentCheckIns(regs []*domain.Registration, attendees map[string]*domain.User, limit int) []domain.RecentCheckIn {
	checked := make([]*domain.Registration, 0)
	for _, reg := range regs {
		if reg.Status == domain.RegistrationConfirmed && reg.CheckedIn && reg.CheckedInAt != nil {
			checked = append(checked, reg)
		}
	}
	sort.Slice(checked, func(i, j int) bool {
		return checked[i].CheckedInAt.After(*checked[j].CheckedInAt)
	})
	if len(checked) > limit {
		checked = checked[:limit]
	}

	recent := make([]domain.RecentCheckIn, 0, len(checked))
	for _, reg := range checked {
		entry := domain.RecentCheckIn{
			RegistrationID: reg.ID,
			TicketNumber:   reg.TicketNumber,
			Quantity:       reg.TicketCount(),
			CheckedInAt:    *reg.CheckedInAt,
		}
		if u := attendees[reg.UserID]; u != nil {
			entry.AttendeeName = u.FullName()
			entry.AttendeeEmail = u.Email
		}
		recent = append(recent, entry)
	}
	return recent
}

var exportHeader = []string{"registration_id", "attendee_name", "attendee_email", "ticket_number", "status", "checked_in", "checked_in_at", "quantity"}

func (s *reportService) Export(ctx context.Context, eventID, actorID string, format domain.ExportFormat) ([]byte, string, error) {
	if format != domain.ExportCSV && format != domain.ExportJSON {
		return nil, "", domain.ErrInvalidInput
	}
	if _, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID); err != nil {
		return nil, "", err
	}

	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, "", fmt.Errorf("list registrations: %w", err)
	}
	attendees, err := s.attendees(ctx, regs)
	if err != nil {
		return nil, "", err
	}

	rows := make([]domain.ExportRow, 0, len(regs))
	for _, reg := range regs {
		row := domain.ExportRow{
			RegistrationID: reg.ID,
			TicketNumber:   reg.TicketNumber,
			Status:         string(reg.Status),
			CheckedIn:      reg.CheckedIn,
			Quantity:       reg.TicketCount(),
		}
		if reg.CheckedInAt != nil {
			row.CheckedInAt = reg.CheckedInAt.Format(time.RFC3339)
		}
		if u := attendees[reg.UserID]; u != nil {
			row.AttendeeName = u.FullName()
			row.AttendeeEmail = u.Email
		}
		rows = append(rows, row)
	}

	if format == domain.ExportJSON {
		body, err := json.Marshal(rows)
		if err != nil {
			return nil, "", fmt.Errorf("encode export: %w", err)
		}
		return body, "application/json", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, "", fmt.Errorf("write export header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.RegistrationID,
			row.AttendeeName,
			row.AttendeeEmail,
			row.TicketNumber,
			row.Status,
			strconv.FormatBool(row.CheckedIn),
			row.CheckedInAt,
			strconv.Itoa(row.Quantity),
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), "text/csv", nil
}

func (s *reportService) ListActivity(ctx context.Context, eventID, actorID string, p domain.PaginationParams) ([]*domain.Activity, int, error) {
	if _, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.activityRepo.ListByEventID(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	if list == nil {
		list = []*domain.Activity{}
	}
	return list, total, nil
}

// attendees fetches each distinct registrant once. A registrant that was
// deleted after registering is skipped rather than failing the whole view.
func (s *reportService) attendees(ctx context.Context, regs []*domain.Registration) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User)
	for _, reg := range regs {
		if _, ok := users[reg.UserID]; ok {
			continue
		}
		u, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get attendee: %w", err)
		}
		users[reg.UserID] = u
	}
	return users, nil
}
