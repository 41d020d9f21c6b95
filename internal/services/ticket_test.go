package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"doorlist/internal/domain"
)

func newTicketFixture(now time.Time) (*ticketService, *mockRegistrationRepository, *mockTicketTypeRepository, *mockTicketPurchaseRepository) {
	eventRepo := &mockEventRepository{
		events: map[string]*domain.Event{
			"e1": {ID: "e1", Title: "GopherCon", Capacity: 100, OrganizerID: "org1"},
		},
	}
	regRepo := &mockRegistrationRepository{regs: map[string]*domain.Registration{}}
	ticketTypeRepo := &mockTicketTypeRepository{types: map[string]*domain.TicketType{}}
	purchaseRepo := &mockTicketPurchaseRepository{}
	svc := &ticketService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		ticketTypeRepo: ticketTypeRepo,
		purchaseRepo:   purchaseRepo,
		roleRepo:       &mockRoleRepository{},
		activityRepo:   &mockActivityRepository{},
		logger:         testLogger(),
		clock:          fixedClock{now: now},
	}
	return svc, regRepo, ticketTypeRepo, purchaseRepo
}

func TestTicketService_CreateTicketType(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	earlyPrice := int64(3500)
	cutoff := now.AddDate(0, 1, 0)

	tests := []struct {
		name    string
		tt      *domain.TicketType
		actorID string
		wantErr error
	}{
		{
			name:    "valid type",
			tt:      &domain.TicketType{EventID: "e1", Name: "GA", Price: 5000, Quantity: 50},
			actorID: "org1",
		},
		{
			name: "valid early bird",
			tt: &domain.TicketType{
				EventID: "e1", Name: "GA", Price: 5000, Quantity: 50,
				EarlyBirdPrice: &earlyPrice, EarlyBirdEndDate: &cutoff,
			},
			actorID: "org1",
		},
		{
			name:    "blank name",
			tt:      &domain.TicketType{EventID: "e1", Name: "  ", Price: 5000, Quantity: 50},
			actorID: "org1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative price",
			tt:      &domain.TicketType{EventID: "e1", Name: "GA", Price: -1, Quantity: 50},
			actorID: "org1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "zero quantity",
			tt:      &domain.TicketType{EventID: "e1", Name: "GA", Price: 5000, Quantity: 0},
			actorID: "org1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "early bird price without end date",
			tt: &domain.TicketType{
				EventID: "e1", Name: "GA", Price: 5000, Quantity: 50,
				EarlyBirdPrice: &earlyPrice,
			},
			actorID: "org1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "non-organizer",
			tt:      &domain.TicketType{EventID: "e1", Name: "GA", Price: 5000, Quantity: 50},
			actorID: "stranger",
			wantErr: domain.ErrForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newTicketFixture(now)
			err := svc.CreateTicketType(context.Background(), tt.tt, tt.actorID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTicketService_Purchase(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	seed := func(regRepo *mockRegistrationRepository, ticketTypeRepo *mockTicketTypeRepository) {
		regRepo.regs["r1"] = &domain.Registration{
			ID: "r1", EventID: "e1", UserID: "att1",
			Status: domain.RegistrationConfirmed, Quantity: 1,
		}
		ticketTypeRepo.types["tt1"] = &domain.TicketType{
			ID: "tt1", EventID: "e1", Name: "GA", Price: 5000, Quantity: 10, QuantitySold: 8,
		}
	}

	t.Run("purchase freezes the current price", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, purchaseRepo := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)
		earlyPrice := int64(3500)
		cutoff := now.Add(24 * time.Hour)
		ticketTypeRepo.types["tt1"].EarlyBirdPrice = &earlyPrice
		ticketTypeRepo.types["tt1"].EarlyBirdEndDate = &cutoff

		p, err := svc.Purchase(context.Background(), "r1", "tt1", 2, "att1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.UnitPrice != earlyPrice {
			t.Fatalf("expected early-bird price %d, got %d", earlyPrice, p.UnitPrice)
		}
		if p.Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", p.Quantity)
		}
		if len(purchaseRepo.purchases) != 1 {
			t.Fatalf("expected 1 stored purchase, got %d", len(purchaseRepo.purchases))
		}
		if ticketTypeRepo.types["tt1"].QuantitySold != 10 {
			t.Fatalf("expected 10 sold, got %d", ticketTypeRepo.types["tt1"].QuantitySold)
		}
	})

	t.Run("regular price after the early-bird cutoff", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, _ := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)
		earlyPrice := int64(3500)
		cutoff := now.Add(-time.Hour)
		ticketTypeRepo.types["tt1"].EarlyBirdPrice = &earlyPrice
		ticketTypeRepo.types["tt1"].EarlyBirdEndDate = &cutoff

		p, err := svc.Purchase(context.Background(), "r1", "tt1", 1, "att1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.UnitPrice != 5000 {
			t.Fatalf("expected regular price 5000, got %d", p.UnitPrice)
		}
	})

	t.Run("oversell is rejected", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, purchaseRepo := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)

		_, err := svc.Purchase(context.Background(), "r1", "tt1", 3, "att1")
		if !errors.Is(err, domain.ErrSoldOut) {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
		if len(purchaseRepo.purchases) != 0 {
			t.Fatal("oversell created a purchase line")
		}
		if ticketTypeRepo.types["tt1"].QuantitySold != 8 {
			t.Fatalf("oversell moved the ledger: %d", ticketTypeRepo.types["tt1"].QuantitySold)
		}
	})

	t.Run("failed purchase write releases the reservation", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, purchaseRepo := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)
		purchaseRepo.err = errors.New("db down")

		_, err := svc.Purchase(context.Background(), "r1", "tt1", 2, "att1")
		if err == nil {
			t.Fatal("expected error")
		}
		if ticketTypeRepo.released["tt1"] != 2 {
			t.Fatalf("expected 2 released units, got %d", ticketTypeRepo.released["tt1"])
		}
	})

	t.Run("cancelled registration cannot purchase", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, _ := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)
		regRepo.regs["r1"].Status = domain.RegistrationCancelled

		_, err := svc.Purchase(context.Background(), "r1", "tt1", 1, "att1")
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("ticket type of another event", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, _ := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)
		ticketTypeRepo.types["tt1"].EventID = "e2"

		_, err := svc.Purchase(context.Background(), "r1", "tt1", 1, "att1")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unrelated actor is forbidden", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, _ := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)

		_, err := svc.Purchase(context.Background(), "r1", "tt1", 1, "stranger")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("organizer may purchase on behalf of the registrant", func(t *testing.T) {
		svc, regRepo, ticketTypeRepo, _ := newTicketFixture(now)
		seed(regRepo, ticketTypeRepo)

		if _, err := svc.Purchase(context.Background(), "r1", "tt1", 1, "org1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTicketService_ListAvailability(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	svc, _, ticketTypeRepo, _ := newTicketFixture(now)
	earlyPrice := int64(3500)
	cutoff := now.Add(24 * time.Hour)
	ticketTypeRepo.types["tt1"] = &domain.TicketType{
		ID: "tt1", EventID: "e1", Name: "GA", Price: 5000, Quantity: 10, QuantitySold: 7,
		EarlyBirdPrice: &earlyPrice, EarlyBirdEndDate: &cutoff,
	}

	got, err := svc.ListAvailability(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Available != 3 {
		t.Fatalf("expected 3 available, got %d", got[0].Available)
	}
	if got[0].CurrentPrice != earlyPrice {
		t.Fatalf("expected current price %d, got %d", earlyPrice, got[0].CurrentPrice)
	}

	if _, err := svc.ListAvailability(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
