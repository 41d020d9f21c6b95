package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"doorlist/internal/domain"
)

func TestEventService_CreateEvent(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 2, 0)
	end := start.AddDate(0, 0, 2)

	tests := []struct {
		name    string
		event   *domain.Event
		wantErr bool
	}{
		{
			name:  "valid event",
			event: domain.NewEvent("GopherCon", 500, start, end, "org1", now, now),
		},
		{
			name:    "missing organizer",
			event:   domain.NewEvent("GopherCon", 500, start, end, "", now, now),
			wantErr: true,
		},
		{
			name:    "blank title",
			event:   domain.NewEvent("   ", 500, start, end, "org1", now, now),
			wantErr: true,
		},
		{
			name:    "zero capacity",
			event:   domain.NewEvent("GopherCon", 0, start, end, "org1", now, now),
			wantErr: true,
		},
		{
			name:    "end before start",
			event:   domain.NewEvent("GopherCon", 500, end, start, "org1", now, now),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockEventRepository{events: map[string]*domain.Event{}}
			svc := &eventService{eventRepo: repo, clock: fixedClock{now: now}}

			err := svc.CreateEvent(context.Background(), tt.event)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil {
				if tt.event.ID == "" {
					t.Fatal("event ID not set on create")
				}
				if !tt.event.CreatedAt.Equal(now) || !tt.event.UpdatedAt.Equal(now) {
					t.Fatal("timestamps not taken from the clock")
				}
			}
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	repo := &mockEventRepository{
		events: map[string]*domain.Event{
			"e1": {ID: "e1", Title: "GopherCon", OrganizerID: "org1"},
		},
	}
	svc := &eventService{eventRepo: repo, clock: fixedClock{now: time.Now()}}

	ev, err := svc.GetEvent(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Title != "GopherCon" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if _, err := svc.GetEvent(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventService_ListMyEvents(t *testing.T) {
	repo := &mockEventRepository{
		events: map[string]*domain.Event{
			"e1": {ID: "e1", OrganizerID: "org1"},
			"e2": {ID: "e2", OrganizerID: "org2"},
		},
	}
	svc := &eventService{eventRepo: repo, clock: fixedClock{now: time.Now()}}

	events, err := svc.ListMyEvents(context.Background(), "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "e1" {
		t.Fatalf("unexpected events %+v", events)
	}

	none, err := svc.ListMyEvents(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", none)
	}
}
