package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"doorlist/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	roleRepo       domain.RoleRepository
	ticketTypeRepo domain.TicketTypeRepository
	activityRepo   domain.ActivityRepository
	logger         *slog.Logger
	clock          domain.Clock
}

// NewRegistrationService creates a RegistrationService with the given repositories.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	roleRepo domain.RoleRepository,
	ticketTypeRepo domain.TicketTypeRepository,
	activityRepo domain.ActivityRepository,
	logger *slog.Logger,
	clock domain.Clock,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		roleRepo:       roleRepo,
		ticketTypeRepo: ticketTypeRepo,
		activityRepo:   activityRepo,
		logger:         logger,
		clock:          clock,
	}
}

func (s *registrationService) Create(ctx context.Context, params domain.CreateRegistrationParams) (*domain.Registration, error) {
	if params.EventID == "" || params.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	quantity := params.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, params.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Capacity is enforced here only; later ticket purchases and check-ins
	// never re-validate it.
	regs, err := s.regRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	used := 0
	for _, reg := range regs {
		if reg.Status == domain.RegistrationCancelled {
			continue
		}
		used += reg.TicketCount()
	}
	if used+quantity > event.Capacity {
		return nil, domain.ErrSoldOut
	}

	now := s.clock.Now()
	reg := &domain.Registration{
		EventID:   event.ID,
		UserID:    params.UserID,
		Status:    domain.RegistrationPending,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.Confirm {
		reg.Status = domain.RegistrationConfirmed
		reg.TicketNumber = newTicketNumber()
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.recordActivity(ctx, domain.ActivityRegistrationCreated, params.UserID, event.ID, reg.ID, "")
	if params.Confirm {
		s.recordActivity(ctx, domain.ActivityRegistrationConfirmed, params.UserID, event.ID, reg.ID, "")
	}
	return reg, nil
}

func (s *registrationService) Confirm(ctx context.Context, registrationID, actorID string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if _, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, reg.EventID, actorID); err != nil {
		return nil, err
	}
	if reg.Status != domain.RegistrationPending {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	ticketNumber := newTicketNumber()
	applied, err := s.regRepo.Confirm(ctx, reg.ID, ticketNumber, now)
	if err != nil {
		return nil, fmt.Errorf("confirm registration: %w", err)
	}
	if !applied {
		return nil, domain.ErrInvalidState
	}

	reg.Status = domain.RegistrationConfirmed
	reg.TicketNumber = ticketNumber
	reg.UpdatedAt = now

	s.recordActivity(ctx, domain.ActivityRegistrationConfirmed, actorID, reg.EventID, reg.ID, "")
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, registrationID, actorID, reason string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if err := s.authorizeRegistrationActor(ctx, reg, actorID); err != nil {
		return nil, err
	}
	if reg.Status == domain.RegistrationCancelled {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	applied, err := s.regRepo.Cancel(ctx, reg.ID, now)
	if err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	if !applied {
		return nil, domain.ErrInvalidState
	}

	// Return the cancelled units to the ledger. The cancellation itself has
	// committed; a release failure is surfaced as a warning only.
	for _, p := range reg.Purchases {
		if err := s.ticketTypeRepo.Release(ctx, p.TicketTypeID, p.Quantity); err != nil {
			s.logger.WarnContext(ctx, "ticket release failed",
				"registration_id", reg.ID,
				"ticket_type_id", p.TicketTypeID,
				"quantity", p.Quantity,
				"err", err,
			)
		}
	}

	reg.Status = domain.RegistrationCancelled
	reg.UpdatedAt = now

	s.recordActivity(ctx, domain.ActivityRegistrationCancelled, actorID, reg.EventID, reg.ID, reason)
	return reg, nil
}

func (s *registrationService) Get(ctx context.Context, registrationID, actorID string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if err := s.authorizeRegistrationActor(ctx, reg, actorID); err != nil {
		return nil, err
	}
	return reg, nil
}

// authorizeRegistrationActor allows the registrant themselves, the event's
// organizer, or an admin.
func (s *registrationService) authorizeRegistrationActor(ctx context.Context, reg *domain.Registration, actorID string) error {
	if reg.UserID == actorID {
		return nil
	}
	_, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, reg.EventID, actorID)
	return err
}

func (s *registrationService) recordActivity(ctx context.Context, activityType, actorID, eventID, registrationID, detail string) {
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

// newTicketNumber produces the opaque identifier encoded into attendee QR
// codes, e.g. TKT-9F3A0C21B4D7.
func newTicketNumber() string {
	id := uuid.New()
	return "TKT-" + strings.ToUpper(hex.EncodeToString(id[:6]))
}
