package services

import (
	"context"
	"errors"
	"fmt"

	"doorlist/internal/domain"
)

// requireEventActor loads the event and verifies the actor may manage it:
// the event's organizer, or any user holding the admin role.
func requireEventActor(ctx context.Context, eventRepo domain.EventRepository, roleRepo domain.RoleRepository, eventID, actorID string) (*domain.Event, error) {
	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID == actorID {
		return event, nil
	}
	isAdmin, err := hasRole(ctx, roleRepo, actorID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func hasRole(ctx context.Context, roleRepo domain.RoleRepository, userID, code string) (bool, error) {
	roles, err := roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.Code == code {
			return true, nil
		}
	}
	return false, nil
}
