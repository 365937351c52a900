package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var appointmentColumns = []string{
	"id", "org_id", "unit_id", "professional_id", "service_id",
	"customer_phone", "customer_name", "starts_at", "ends_at",
	"status", "hold_expires_at", "deposit_amount_cents",
	"created_at", "updated_at",
}

func TestAppointmentRepository_CreateHold(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	orgID := uuid.New()
	id := uuid.New()
	profID := uuid.New()
	svcID := uuid.New()
	starts := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	ends := starts.Add(30 * time.Minute)
	expiry := time.Now().Add(10 * time.Minute)

	rows := sqlmock.NewRows(appointmentColumns).AddRow(
		id, orgID, nil, profID, svcID,
		"5511988887777", nil, starts, ends,
		"hold", expiry, 2000,
		time.Now(), time.Now(),
	)
	mock.ExpectQuery("FROM create_hold_appointment").
		WithArgs(orgID, "5511988887777", svcID, profID, nil, starts, nil).
		WillReturnRows(rows)

	apt, err := repo.CreateHold(context.Background(), &repository.HoldParams{
		OrgID:          orgID,
		Phone:          "5511988887777",
		ServiceID:      svcID,
		ProfessionalID: profID,
		StartsAt:       starts,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusHold, apt.Status)
	assert.Equal(t, int64(2000), apt.DepositAmountCents)
	require.NotNil(t, apt.HoldExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_CreateHold_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "procedure raises slot_unavailable",
			dbErr:    &pq.Error{Code: "P0001", Message: "slot_unavailable"},
			wantCode: apperrors.ErrSlotUnavailable,
		},
		{
			name:     "serialization failure",
			dbErr:    &pq.Error{Code: "40001", Message: "could not serialize access"},
			wantCode: apperrors.ErrSlotUnavailable,
		},
		{
			name:     "exclusion constraint",
			dbErr:    &pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"},
			wantCode: apperrors.ErrSlotUnavailable,
		},
		{
			name:     "unknown service",
			dbErr:    &pq.Error{Code: "P0001", Message: "service_not_found"},
			wantCode: apperrors.ErrNotFound,
		},
		{
			name:     "unknown professional",
			dbErr:    &pq.Error{Code: "P0001", Message: "professional_not_found"},
			wantCode: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewAppointmentRepository(db)

			mock.ExpectQuery("FROM create_hold_appointment").
				WillReturnError(tt.dbErr)

			_, err := repo.CreateHold(context.Background(), &repository.HoldParams{
				OrgID:          uuid.New(),
				Phone:          "5511988887777",
				ServiceID:      uuid.New(),
				ProfessionalID: uuid.New(),
				StartsAt:       time.Now(),
			})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestAppointmentRepository_TransitionStatus(t *testing.T) {
	orgID := uuid.New()
	id := uuid.New()

	t.Run("transitions when status matches source set", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		mock.ExpectExec("UPDATE appointments").
			WithArgs(model.AppointmentStatusConfirmed, true, orgID, id,
				pq.Array([]string{"hold", "pending_payment"})).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.TransitionStatus(context.Background(), orgID, id,
			[]model.AppointmentStatus{model.AppointmentStatusHold, model.AppointmentStatusPendingPayment},
			model.AppointmentStatusConfirmed, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reports false when no row matches", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		mock.ExpectExec("UPDATE appointments").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.TransitionStatus(context.Background(), orgID, id,
			[]model.AppointmentStatus{model.AppointmentStatusHold},
			model.AppointmentStatusCanceled, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects empty source set", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewAppointmentRepository(db)

		_, err := repo.TransitionStatus(context.Background(), orgID, id,
			nil, model.AppointmentStatusCanceled, false)
		assert.Error(t, err)
	})
}

func TestAppointmentRepository_ExpireStaleHolds(t *testing.T) {
	now := time.Now()

	t.Run("expires matching rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		mock.ExpectExec("UPDATE appointments").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.ExpireStaleHolds(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("second sweep matches nothing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAppointmentRepository(db)

		mock.ExpectExec("UPDATE appointments").
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		count, err := repo.ExpireStaleHolds(context.Background(), now)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestAppointmentRepository_GetBlocking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	orgID := uuid.New()
	profID := uuid.New()
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	to := from.Add(10 * time.Hour)
	starts := from.Add(time.Hour)
	expiry := time.Now().Add(5 * time.Minute)

	rows := sqlmock.NewRows(appointmentColumns).AddRow(
		uuid.New(), orgID, nil, profID, uuid.New(),
		"5511988887777", nil, starts, starts.Add(30*time.Minute),
		"hold", expiry, 2000,
		time.Now(), time.Now(),
	)
	mock.ExpectQuery("FROM appointments").
		WithArgs(orgID, profID, from, to).
		WillReturnRows(rows)

	blocking, err := repo.GetBlocking(context.Background(), orgID, profID, from, to)
	require.NoError(t, err)
	require.Len(t, blocking, 1)
	assert.Equal(t, model.AppointmentStatusHold, blocking[0].Status)
}
