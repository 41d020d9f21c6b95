package postgres

import (
	"context"
	"database/sql"

	"doorlist/internal/domain"
)

type ticketPurchaseRepository struct {
	DB *sql.DB
}

func NewTicketPurchaseRepository(db *sql.DB) domain.TicketPurchaseRepository {
	return &ticketPurchaseRepository{
		DB: db,
	}
}

func (r *ticketPurchaseRepository) Create(ctx context.Context, p *domain.TicketPurchase) error {
	query := `
		INSERT INTO ticket_purchases (registration_id, ticket_type_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.RegistrationID, p.TicketTypeID, p.Quantity, p.UnitPrice, p.CreatedAt).Scan(&p.ID)
}

func (r *ticketPurchaseRepository) ListByRegistrationID(ctx context.Context, registrationID string) ([]*domain.TicketPurchase, error) {
	query := `
		SELECT id, registration_id, ticket_type_id, quantity, unit_price, created_at
		FROM ticket_purchases
		WHERE registration_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]*domain.TicketPurchase, 0)
	for rows.Next() {
		p := &domain.TicketPurchase{}
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.TicketTypeID, &p.Quantity, &p.UnitPrice, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
