package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"doorlist/internal/domain"
)

type checkInService struct {
	eventRepo    domain.EventRepository
	regRepo      domain.RegistrationRepository
	userRepo     domain.UserRepository
	roleRepo     domain.RoleRepository
	activityRepo domain.ActivityRepository
	logger       *slog.Logger
	clock        domain.Clock
}

// NewCheckInService creates a CheckInService with the given repositories.
func NewCheckInService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	activityRepo domain.ActivityRepository,
	logger *slog.Logger,
	clock domain.Clock,
) domain.CheckInService {
	return &checkInService{
		eventRepo:    eventRepo,
		regRepo:      regRepo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		activityRepo: activityRepo,
		logger:       logger,
		clock:        clock,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, eventID, registrationID, actorID, notes string) (*domain.CheckInResult, error) {
	event, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}
	return s.checkInOne(ctx, event, registrationID, actorID, notes)
}

// checkInOne applies the single-registration state machine; authorization for
// the event has already happened.
func (s *checkInService) checkInOne(ctx context.Context, event *domain.Event, registrationID, actorID, notes string) (*domain.CheckInResult, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != event.ID {
		return nil, domain.ErrNotFound
	}
	if reg.Status != domain.RegistrationConfirmed {
		return nil, domain.ErrInvalidState
	}
	if reg.CheckedIn {
		// Informational no-op: nothing is mutated, the repeat notes are
		// discarded, and no history or activity entry is written.
		return &domain.CheckInResult{
			Registration:     reg,
			AlreadyCheckedIn: true,
			CheckedInAt:      *reg.CheckedInAt,
		}, nil
	}

	now := s.clock.Now()
	meta := domain.AppendHistory(reg.Metadata, domain.CheckInRecord{
		Action:    domain.ActionCheckIn,
		Timestamp: now,
		ActorID:   actorID,
		ActorName: s.actorName(ctx, actorID),
		Notes:     notes,
	})
	applied, err := s.regRepo.SetCheckedIn(ctx, reg.ID, now, actorID, meta)
	if err != nil {
		return nil, fmt.Errorf("set checked in: %w", err)
	}
	if !applied {
		// Lost a race against a concurrent check-in; re-read to report the
		// winning call's timestamp.
		current, err := s.regRepo.GetByID(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("get registration after conflict: %w", err)
		}
		if current.CheckedIn {
			return &domain.CheckInResult{
				Registration:     current,
				AlreadyCheckedIn: true,
				CheckedInAt:      *current.CheckedInAt,
			}, nil
		}
		return nil, domain.ErrInvalidState
	}

	reg.CheckedIn = true
	reg.CheckedInAt = &now
	reg.CheckedInBy = &actorID
	reg.Metadata = meta
	reg.UpdatedAt = now

	s.recordActivity(ctx, domain.ActivityCheckIn, actorID, event.ID, reg.ID, notes)

	return &domain.CheckInResult{
		Registration:     reg,
		AlreadyCheckedIn: false,
		CheckedInAt:      now,
	}, nil
}

func (s *checkInService) UndoCheckIn(ctx context.Context, eventID, registrationID, actorID, reason string) (*domain.Registration, error) {
	event, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != event.ID {
		return nil, domain.ErrNotFound
	}
	if !reg.CheckedIn {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	meta := domain.AppendHistory(reg.Metadata, domain.CheckInRecord{
		Action:    domain.ActionCheckInUndo,
		Timestamp: now,
		ActorID:   actorID,
		ActorName: s.actorName(ctx, actorID),
		Reason:    reason,
	})
	applied, err := s.regRepo.ClearCheckedIn(ctx, reg.ID, now, meta)
	if err != nil {
		return nil, fmt.Errorf("clear checked in: %w", err)
	}
	if !applied {
		// Someone undid it first; there is nothing left to undo.
		return nil, domain.ErrInvalidState
	}

	reg.CheckedIn = false
	reg.CheckedInAt = nil
	reg.CheckedInBy = nil
	reg.Metadata = meta
	reg.UpdatedAt = now

	s.recordActivity(ctx, domain.ActivityCheckInUndo, actorID, event.ID, reg.ID, reason)
	return reg, nil
}

func (s *checkInService) BulkCheckIn(ctx context.Context, eventID string, registrationIDs []string, actorID, notes string) (*domain.BulkCheckInResult, error) {
	if len(registrationIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	event, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}

	result := &domain.BulkCheckInResult{
		Results: make([]domain.BulkCheckInItem, 0, len(registrationIDs)),
	}
	for _, id := range registrationIDs {
		if id == "" {
			result.Summary.Failed++
			result.Results = append(result.Results, domain.BulkCheckInItem{
				Status: domain.BulkFailed,
				Error:  "missing registration id",
			})
			continue
		}
		item := domain.BulkCheckInItem{RegistrationID: id}
		res, err := s.checkInOne(ctx, event, id, actorID, notes)
		switch {
		case err != nil:
			item.Status = domain.BulkFailed
			item.Error = err.Error()
			result.Summary.Failed++
		case res.AlreadyCheckedIn:
			item.Status = domain.BulkAlreadyCheckedIn
			result.Summary.AlreadyCheckedIn++
		default:
			item.Status = domain.BulkCheckedIn
			result.Summary.Successful++
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

// actorName resolves the acting user's display name for history entries.
// Best-effort: an unknown actor yields an empty name, not a failure.
func (s *checkInService) actorName(ctx context.Context, actorID string) string {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return ""
	}
	return user.FullName()
}

// recordActivity writes the system-wide audit entry after the state mutation
// has committed. A failure here is downgraded to a warning: the check-in
// itself already happened and must not be reported as failed.
func (s *checkInService) recordActivity(ctx context.Context, activityType, actorID, eventID, registrationID, detail string) {
	activity := &domain.Activity{
		Type:           activityType,
		ActorID:        actorID,
		EventID:        eventID,
		RegistrationID: &registrationID,
		Detail:         detail,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.activityRepo.Record(ctx, activity); err != nil {
		s.logger.WarnContext(ctx, "activity log write failed",
			"type", activityType,
			"event_id", eventID,
			"registration_id", registrationID,
			"err", err,
		)
	}
}
