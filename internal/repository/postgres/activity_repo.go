package postgres

import (
	"context"
	"database/sql"

	"doorlist/internal/domain"
)

type activityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) domain.ActivityRepository {
	return &activityRepository{
		DB: db,
	}
}

func (r *activityRepository) Record(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (type, actor_id, event_id, registration_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, a.Type, a.ActorID, a.EventID, a.RegistrationID, a.Detail, a.CreatedAt).Scan(&a.ID)
}

func (r *activityRepository) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Activity, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, type, actor_id, event_id, registration_id, detail, created_at
		FROM activities
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		a := &domain.Activity{}
		var regID sql.NullString
		if err := rows.Scan(&a.ID, &a.Type, &a.ActorID, &a.EventID, &regID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		if regID.Valid {
			a.RegistrationID = &regID.String
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}
