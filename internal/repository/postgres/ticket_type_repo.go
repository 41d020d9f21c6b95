package postgres

import (
	"context"
	"database/sql"
	"errors"

	"doorlist/internal/domain"
)

type ticketTypeRepository struct {
	DB *sql.DB
}

func NewTicketTypeRepository(db *sql.DB) domain.TicketTypeRepository {
	return &ticketTypeRepository{
		DB: db,
	}
}

func (r *ticketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	query := `
		INSERT INTO ticket_types (event_id, name, price, quantity, quantity_sold, early_bird_price, early_bird_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		tt.EventID, tt.Name, tt.Price, tt.Quantity, tt.EarlyBirdPrice, tt.EarlyBirdEndDate, tt.CreatedAt, tt.UpdatedAt,
	).Scan(&tt.ID)
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, quantity_sold, early_bird_price, early_bird_end_date, created_at, updated_at
		FROM ticket_types
		WHERE id = $1
	`
	tt, err := scanTicketType(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return tt, nil
}

func scanTicketType(row interface{ Scan(...any) error }) (*domain.TicketType, error) {
	tt := &domain.TicketType{}
	var earlyPrice sql.NullInt64
	var earlyEnd sql.NullTime
	err := row.Scan(
		&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quantity, &tt.QuantitySold,
		&earlyPrice, &earlyEnd, &tt.CreatedAt, &tt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if earlyPrice.Valid {
		tt.EarlyBirdPrice = &earlyPrice.Int64
	}
	if earlyEnd.Valid {
		tt.EarlyBirdEndDate = &earlyEnd.Time
	}
	return tt, nil
}

func (r *ticketTypeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, quantity_sold, early_bird_price, early_bird_end_date, created_at, updated_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.TicketType, 0)
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// Reserve increments quantity_sold only while the result stays within
// quantity. A false return means the requested units would oversell.
func (r *ticketTypeRepository) Reserve(ctx context.Context, id string, quantity int) (bool, error) {
	query := `
		UPDATE ticket_types
		SET quantity_sold = quantity_sold + $2, updated_at = NOW()
		WHERE id = $1 AND quantity_sold + $2 <= quantity
	`
	result, err := r.DB.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *ticketTypeRepository) Release(ctx context.Context, id string, quantity int) error {
	query := `
		UPDATE ticket_types
		SET quantity_sold = GREATEST(quantity_sold - $2, 0), updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
