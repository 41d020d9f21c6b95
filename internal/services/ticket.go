package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"doorlist/internal/domain"
)

type ticketService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	ticketTypeRepo domain.TicketTypeRepository
	purchaseRepo   domain.TicketPurchaseRepository
	roleRepo       domain.RoleRepository
	activityRepo   domain.ActivityRepository
	logger         *slog.Logger
	clock          domain.Clock
}

// NewTicketService creates a TicketService with the given repositories.
func NewTicketService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	ticketTypeRepo domain.TicketTypeRepository,
	purchaseRepo domain.TicketPurchaseRepository,
	roleRepo domain.RoleRepository,
	activityRepo domain.ActivityRepository,
	logger *slog.Logger,
	clock domain.Clock,
) domain.TicketService {
	return &ticketService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		ticketTypeRepo: ticketTypeRepo,
		purchaseRepo:   purchaseRepo,
		roleRepo:       roleRepo,
		activityRepo:   activityRepo,
		logger:         logger,
		clock:          clock,
	}
}

func (s *ticketService) CreateTicketType(ctx context.Context, tt *domain.TicketType, actorID string) error {
	if strings.TrimSpace(tt.Name) == "" || tt.Price < 0 || tt.Quantity < 1 {
		return domain.ErrInvalidInput
	}
	if tt.EarlyBirdPrice != nil && (tt.EarlyBirdEndDate == nil || *tt.EarlyBirdPrice < 0) {
		return domain.ErrInvalidInput
	}
	if _, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, tt.EventID, actorID); err != nil {
		return err
	}

	now := s.clock.Now()
	tt.CreatedAt = now
	tt.UpdatedAt = now
	if err := s.ticketTypeRepo.Create(ctx, tt); err != nil {
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

func (s *ticketService) ListAvailability(ctx context.Context, eventID string) ([]*domain.TicketAvailability, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	types, err := s.ticketTypeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}

	now := s.clock.Now()
	availability := make([]*domain.TicketAvailability, 0, len(types))
	for _, tt := range types {
		availability = append(availability, &domain.TicketAvailability{
			TicketType:   tt,
			Available:    tt.Available(),
			CurrentPrice: tt.CurrentPrice(now),
		})
	}
	return availability, nil
}

func (s *ticketService) Purchase(ctx context.Context, registrationID, ticketTypeID string, quantity int, actorID string) (*domain.TicketPurchase, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidInput
	}
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != actorID {
		if _, err := requireEventActor(ctx, s.eventRepo, s.roleRepo, reg.EventID, actorID); err != nil {
			return nil, err
		}
	}
	if reg.Status == domain.RegistrationCancelled {
		return nil, domain.ErrInvalidState
	}

	tt, err := s.ticketTypeRepo.GetByID(ctx, ticketTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket type: %w", err)
	}
	if tt.EventID != reg.EventID {
		return nil, domain.ErrInvalidInput
	}

	// The conditional reserve is the oversell guard: it only succeeds while
	// quantity_sold + quantity stays within the type's quantity.
	reserved, err := s.ticketTypeRepo.Reserve(ctx, tt.ID, quantity)
	if err != nil {
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}
	if !reserved {
		return nil, domain.ErrSoldOut
	}

	now := s.clock.Now()
	purchase := &domain.TicketPurchase{
		RegistrationID: reg.ID,
		TicketTypeID:   tt.ID,
		Quantity:       quantity,
		UnitPrice:      tt.CurrentPrice(now),
		CreatedAt:      now,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		// Hand the reserved units back before failing.
		if relErr := s.ticketTypeRepo.Release(ctx, tt.ID, quantity); relErr != nil {
			s.logger.WarnContext(ctx, "ticket release after failed purchase",
				"ticket_type_id", tt.ID,
				"quantity", quantity,
				"err", relErr,
			)
		}
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	activity := &domain.Activity{
		Type:           domain.ActivityTicketsPurchased,
		ActorID:        actorID,
		EventID:        reg.EventID,
		RegistrationID: &reg.ID,
		Detail:         fmt.Sprintf("%d x %s", quantity, tt.Name),
		CreatedAt:      now,
	}
	if err := s.activityRepo.Record(ctx, activity); err != nil {
		s.logger.WarnContext(ctx, "activity log write failed",
			"type", domain.ActivityTicketsPurchased,
			"registration_id", reg.ID,
			"err", err,
		)
	}
	return purchase, nil
}
