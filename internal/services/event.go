package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doorlist/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	clock     domain.Clock
}

// NewEventService creates an EventService with the given repository.
func NewEventService(eventRepo domain.EventRepository, clock domain.Clock) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		clock:     clock,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if event.OrganizerID == "" {
		return fmt.Errorf("event organizer is required")
	}
	if strings.TrimSpace(event.Title) == "" {
		return domain.ErrInvalidInput
	}
	if event.Capacity < 1 {
		return domain.ErrInvalidInput
	}
	if event.EndDate.Before(event.StartDate) {
		return domain.ErrInvalidInput
	}

	now := s.clock.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
