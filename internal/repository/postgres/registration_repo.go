package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"doorlist/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, event_id, user_id, status, quantity, ticket_number, checked_in, checked_in_at, checked_in_by, metadata, created_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var ticketNumber sql.NullString
	var checkedInAt sql.NullTime
	var checkedInBy sql.NullString
	var metadata []byte
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.Quantity,
		&ticketNumber, &reg.CheckedIn, &checkedInAt, &checkedInBy, &metadata,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ticketNumber.Valid {
		reg.TicketNumber = ticketNumber.String
	}
	if checkedInAt.Valid {
		reg.CheckedInAt = &checkedInAt.Time
	}
	if checkedInBy.Valid {
		reg.CheckedInBy = &checkedInBy.String
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &reg.Metadata); err != nil {
			return nil, fmt.Errorf("decode registration metadata: %w", err)
		}
	}
	return reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	meta, err := json.Marshal(reg.Metadata)
	if err != nil {
		return fmt.Errorf("encode registration metadata: %w", err)
	}
	query := `
		INSERT INTO registrations (event_id, user_id, status, quantity, ticket_number, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.Status, reg.Quantity, reg.TicketNumber, meta, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPurchases(ctx, []*domain.Registration{reg}); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadPurchases(ctx, regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// loadPurchases attaches ticket purchase lines to the given registrations in
// one query, so TicketCount sees the same data everywhere.
func (r *registrationRepository) loadPurchases(ctx context.Context, regs []*domain.Registration) error {
	if len(regs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Registration, len(regs))
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		byID[reg.ID] = reg
		ids = append(ids, reg.ID)
	}
	query := `
		SELECT id, registration_id, ticket_type_id, quantity, unit_price, created_at
		FROM ticket_purchases
		WHERE registration_id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &domain.TicketPurchase{}
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.TicketTypeID, &p.Quantity, &p.UnitPrice, &p.CreatedAt); err != nil {
			return err
		}
		if reg, ok := byID[p.RegistrationID]; ok {
			reg.Purchases = append(reg.Purchases, p)
		}
	}
	return rows.Err()
}

func (r *registrationRepository) Confirm(ctx context.Context, id, ticketNumber string, at time.Time) (bool, error) {
	query := `
		UPDATE registrations
		SET status = $2, ticket_number = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`
	result, err := r.DB.ExecContext(ctx, query, id, domain.RegistrationConfirmed, ticketNumber, at, domain.RegistrationPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE registrations
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status <> $2
	`
	result, err := r.DB.ExecContext(ctx, query, id, domain.RegistrationCancelled, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetCheckedIn is the compare-and-set behind check-in: the WHERE clause on
// checked_in guarantees that of two concurrent calls only one mutates the row
// and appends history. Metadata is written whole from the caller's merged copy.
func (r *registrationRepository) SetCheckedIn(ctx context.Context, id string, at time.Time, by string, meta domain.RegistrationMetadata) (bool, error) {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return false, fmt.Errorf("encode registration metadata: %w", err)
	}
	query := `
		UPDATE registrations
		SET checked_in = TRUE, checked_in_at = $2, checked_in_by = $3, metadata = $4, updated_at = $2
		WHERE id = $1 AND checked_in = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, id, at, by, encoded)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) ClearCheckedIn(ctx context.Context, id string, at time.Time, meta domain.RegistrationMetadata) (bool, error) {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return false, fmt.Errorf("encode registration metadata: %w", err)
	}
	query := `
		UPDATE registrations
		SET checked_in = FALSE, checked_in_at = NULL, checked_in_by = NULL, metadata = $3, updated_at = $2
		WHERE id = $1 AND checked_in = TRUE
	`
	result, err := r.DB.ExecContext(ctx, query, id, at, encoded)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
