package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"doorlist/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var registrationCols = []string{
	"id", "event_id", "user_id", "status", "quantity", "ticket_number",
	"checked_in", "checked_in_at", "checked_in_by", "metadata", "created_at", "updated_at",
}

func TestRegistrationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	checkedInAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	meta := domain.RegistrationMetadata{
		CheckInNotes: "vip",
		CheckInHistory: []domain.CheckInRecord{
			{Action: domain.ActionCheckIn, Timestamp: checkedInAt, ActorID: "staff-1", Notes: "vip"},
		},
	}
	metaJSON, err := json.Marshal(meta)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		check   func(t *testing.T, reg *domain.Registration)
		wantErr error
	}{
		{
			name: "checked-in registration with metadata and purchases",
			id:   "reg-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM registrations`).
					WithArgs("reg-1").
					WillReturnRows(sqlmock.NewRows(registrationCols).AddRow(
						"reg-1", "ev-1", "u-1", "CONFIRMED", 1, "TKT-AB12",
						true, checkedInAt, "staff-1", metaJSON, createdAt, checkedInAt,
					))
				mock.ExpectQuery(`SELECT (.+) FROM ticket_purchases`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "registration_id", "ticket_type_id", "quantity", "unit_price", "created_at"}).
						AddRow("pur-1", "reg-1", "tt-1", 2, int64(2500), createdAt))
			},
			check: func(t *testing.T, reg *domain.Registration) {
				require.True(t, reg.CheckedIn)
				require.NotNil(t, reg.CheckedInAt)
				require.Equal(t, checkedInAt, *reg.CheckedInAt)
				require.NotNil(t, reg.CheckedInBy)
				require.Equal(t, "staff-1", *reg.CheckedInBy)
				require.Equal(t, "vip", reg.Metadata.CheckInNotes)
				require.Len(t, reg.Metadata.CheckInHistory, 1)
				require.Equal(t, 2, reg.TicketCount())
			},
		},
		{
			name: "plain registration without metadata",
			id:   "reg-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM registrations`).
					WithArgs("reg-2").
					WillReturnRows(sqlmock.NewRows(registrationCols).AddRow(
						"reg-2", "ev-1", "u-2", "PENDING", 1, nil,
						false, nil, nil, []byte(`{}`), createdAt, createdAt,
					))
				mock.ExpectQuery(`SELECT (.+) FROM ticket_purchases`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "registration_id", "ticket_type_id", "quantity", "unit_price", "created_at"}))
			},
			check: func(t *testing.T, reg *domain.Registration) {
				require.False(t, reg.CheckedIn)
				require.Nil(t, reg.CheckedInAt)
				require.Nil(t, reg.CheckedInBy)
				require.Empty(t, reg.Metadata.CheckInHistory)
				require.Equal(t, 1, reg.TicketCount())
			},
		},
		{
			name: "not found",
			id:   "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM registrations`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, reg)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_SetCheckedIn(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	meta := domain.RegistrationMetadata{
		CheckInHistory: []domain.CheckInRecord{
			{Action: domain.ActionCheckIn, Timestamp: at, ActorID: "staff-1"},
		},
	}

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantApplied bool
		wantErr     bool
	}{
		{
			name: "applies when not checked in",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE registrations`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantApplied: true,
		},
		{
			name: "no-op when already checked in",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE registrations`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantApplied: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE registrations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			applied, err := repo.SetCheckedIn(ctx, "reg-1", at, "staff-1", meta)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantApplied, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ClearCheckedIn(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("no-op when not checked in", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE registrations`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(db)
		applied, err := repo.ClearCheckedIn(ctx, "reg-1", at, domain.RegistrationMetadata{})
		require.NoError(t, err)
		require.False(t, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_Confirm(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantApplied bool
	}{
		{
			name: "confirms pending registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE registrations`).
					WithArgs("reg-1", string(domain.RegistrationConfirmed), "TKT-AB12", at, string(domain.RegistrationPending)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantApplied: true,
		},
		{
			name: "no-op when not pending",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE registrations`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantApplied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			applied, err := repo.Confirm(ctx, "reg-1", "TKT-AB12", at)
			require.NoError(t, err)
			require.Equal(t, tt.wantApplied, applied)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
