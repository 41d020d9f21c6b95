package domain

import (
	"context"
	"time"
)

// TicketType is one priced ticket tier of an event. QuantitySold never
// exceeds Quantity; the repository enforces this on reservation.
// swagger:model TicketType
type TicketType struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	Name             string     `json:"name"`
	Price            int64      `json:"price"`
	Quantity         int        `json:"quantity"`
	QuantitySold     int        `json:"quantity_sold"`
	EarlyBirdPrice   *int64     `json:"early_bird_price,omitempty"`
	EarlyBirdEndDate *time.Time `json:"early_bird_end_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CurrentPrice returns the price in effect at now: the early-bird price while
// now is strictly before EarlyBirdEndDate, the regular price otherwise.
func (t *TicketType) CurrentPrice(now time.Time) int64 {
	if t.EarlyBirdPrice != nil && t.EarlyBirdEndDate != nil && now.Before(*t.EarlyBirdEndDate) {
		return *t.EarlyBirdPrice
	}
	return t.Price
}

// Available returns the number of unsold units.
func (t *TicketType) Available() int {
	return t.Quantity - t.QuantitySold
}

// TicketPurchase is one purchase line binding a registration to a ticket type.
// UnitPrice is frozen at purchase time.
// swagger:model TicketPurchase
type TicketPurchase struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	TicketTypeID   string    `json:"ticket_type_id"`
	Quantity       int       `json:"quantity"`
	UnitPrice      int64     `json:"unit_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// TicketTypeRepository defines storage for ticket types and the allocation
// ledger. Reserve is a conditional write: it only increments quantity_sold
// when the result stays within quantity, and reports whether it did.
type TicketTypeRepository interface {
	Create(ctx context.Context, tt *TicketType) error
	GetByID(ctx context.Context, id string) (*TicketType, error)
	ListByEventID(ctx context.Context, eventID string) ([]*TicketType, error)
	Reserve(ctx context.Context, id string, quantity int) (bool, error)
	Release(ctx context.Context, id string, quantity int) error
}

// TicketPurchaseRepository defines storage for purchase lines.
type TicketPurchaseRepository interface {
	Create(ctx context.Context, p *TicketPurchase) error
	ListByRegistrationID(ctx context.Context, registrationID string) ([]*TicketPurchase, error)
}

// TicketAvailability pairs a ticket type with its derived availability view.
type TicketAvailability struct {
	TicketType   *TicketType `json:"ticket_type"`
	Available    int         `json:"available"`
	CurrentPrice int64       `json:"current_price"`
}

// TicketService is the allocation ledger: availability queries and
// oversell-safe purchases. Check-in never writes through this service.
type TicketService interface {
	CreateTicketType(ctx context.Context, tt *TicketType, actorID string) error
	ListAvailability(ctx context.Context, eventID string) ([]*TicketAvailability, error)
	Purchase(ctx context.Context, registrationID, ticketTypeID string, quantity int, actorID string) (*TicketPurchase, error)
}
